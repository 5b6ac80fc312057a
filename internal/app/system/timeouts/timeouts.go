// internal/app/system/timeouts/timeouts.go

// Package timeouts centralizes the context deadlines used for store and
// engine operations.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads and conditional writes (lock CAS)
//   - Medium: pool reads, group creation transactions
//   - Batch: the weekly matching pass and the lifecycle sweeps
package timeouts

import "time"

const (
	// Ping bounds health-check probes.
	Ping = 2 * time.Second
	// Short bounds single-document operations.
	Short = 5 * time.Second
	// Medium bounds multi-document transactions on the interactive path.
	// It must stay comfortably under the lock TTL so a slow holder times
	// out before its lock can be reclaimed.
	Medium = 10 * time.Second
	// Batch bounds whole-pool scheduled passes.
	Batch = 60 * time.Second
)
