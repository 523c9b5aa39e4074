// Package redis provides a Redis implementation of driven.SnapshotArchive
// for clients that share one cache across machines.
//
// Snapshots are stored as JSON strings under "<prefix>project:<id>" and
// "<prefix>request:<id>" with an optional TTL. Listing scans by prefix, so
// expired snapshots simply disappear.
package redis
