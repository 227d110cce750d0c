package ingest

import (
	"runtime"

	"github.com/japaniel/dictload/pkg/dictionary"
)

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Partition splits keys round-robin into exactly workers groups: key i goes to
// group i mod workers. Groups differ in size by at most one, are disjoint and
// together hold every key. A worker count below 1 is treated as 1.
// The second result is the total number of keys.
func Partition(keys []dictionary.Key, workers int) ([][]dictionary.Key, int) {
	if workers < 1 {
		workers = 1
	}
	parts := make([][]dictionary.Key, workers)
	per := len(keys)/workers + 1
	for i := range parts {
		parts[i] = make([]dictionary.Key, 0, per)
	}
	for i, k := range keys {
		parts[i%workers] = append(parts[i%workers], k)
	}
	return parts, len(keys)
}
