// Package memory provides in-memory implementations of driven ports.
//
// Store is the observable client cache used at runtime. ConfigStore is a
// map-backed configuration store used by tests and by callers that do not
// want a config file.
package memory
