// Package file provides a TOML-backed implementation of driven.ConfigStore.
//
// Settings live in ~/.duediligence/config.toml as nested tables
// ([backend], [tracker], ...). Any key can be overridden for a single run
// with a DD_ environment variable: "backend.base_url" reads
// DD_BACKEND_BASE_URL first.
package file
