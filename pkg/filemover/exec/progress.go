package exec

import (
	"sync"
	"time"

	"filemover/pkg/filemover/core"
)

// Progress is one sample delivered on the executor's progress channel
// (spec §4.5 Per-node protocol step 4, spec §6 Engine-to-shell surface).
type Progress struct {
	CompletedOps  int
	TotalOps      int
	BytesProcessed int64
	TotalBytes     int64
	CurrentItem    string
	CurrentNodeID  core.NodeID
	Speed          float64 // bytes/sec, rolling
	ETA            time.Duration
}

// progressLimiter is a token-bucket rate limiter bounding how often the
// executor pushes onto the progress channel, so a plan with thousands of
// small operations doesn't exceed the ≤10Hz bound the engine-to-shell
// surface promises (spec §6; SPEC_FULL.md Progress export supplement).
type progressLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func newProgressLimiter(hz float64) *progressLimiter {
	return &progressLimiter{interval: time.Duration(float64(time.Second) / hz)}
}

// allow reports whether enough time has elapsed since the last allowed
// sample; force bypasses the limiter for terminal samples (the final
// 100% update must never be dropped).
func (l *progressLimiter) allow(force bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if force || now.Sub(l.last) >= l.interval {
		l.last = now
		return true
	}
	return false
}
