// Package shard maps cache keys onto a fixed number of logical buckets.
package shard

import "github.com/cespare/xxhash/v2"

// Default is used when a caller passes n <= 0.
const Default = 16

// Of returns the bucket of key in [0, n). It is pure: the same key and n
// always yield the same bucket, across processes and restarts.
func Of(key string, n int) int {
	if n <= 0 {
		n = Default
	}
	return int(xxhash.Sum64String(key) % uint64(n))
}
