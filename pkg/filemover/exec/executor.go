package exec

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/plan"
)

// retry schedule (spec §4.5 Retries): base 200ms, factor 2, capped at 5
// attempts or 15s cumulative, whichever comes first. Hand-rolled rather
// than an ecosystem backoff library because the spec mandates these
// exact numbers with no jitter.
const (
	retryBase     = 200 * time.Millisecond
	retryFactor   = 2
	retryMaxTries = 5
	retryCap      = 15 * time.Second
)

// Options configures a single Executor.Run call (spec §4.5 Contract,
// §5 Scheduling model).
type Options struct {
	JournalPath     string
	ParallelThreads int // defaults to min(8, GOMAXPROCS) when zero
	ProgressHz      float64 // defaults to 10 (spec §6 Engine-to-shell surface: ≤10Hz)
	Progress        chan<- Progress
}

// Executor applies a MovePlan's nodes to a filesystem (spec §4.5).
type Executor struct {
	fs     fsx.FileSystem
	logger zerolog.Logger
}

// New builds an Executor bound to a filesystem.
func New(fs fsx.FileSystem, logger zerolog.Logger) *Executor {
	return &Executor{fs: fs, logger: logger}
}

// Run executes every non-excluded node of mp, journaling each attempt
// before it mutates anything (spec §4.5 Per-node protocol).
func (e *Executor) Run(ctx context.Context, mp *plan.MovePlan, opts Options) (*ExecResult, error) {
	if opts.ParallelThreads <= 0 {
		opts.ParallelThreads = min(8, runtime.GOMAXPROCS(0))
	}
	if opts.ProgressHz <= 0 {
		opts.ProgressHz = 10
	}

	journal, err := CreateJournal(opts.JournalPath)
	if err != nil {
		return &ExecResult{Status: StatusFatal, JournalPath: opts.JournalPath}, err
	}
	defer journal.Close()

	start := time.Now()
	result := &ExecResult{JournalPath: opts.JournalPath}

	var totalBytes int64
	for _, n := range mp.Nodes {
		if n.Kind == plan.KindNone {
			continue
		}
		if n.Size != nil {
			totalBytes += *n.Size
		}
	}

	var resultsMu sync.Mutex
	var completedOps, failedOps, skippedOps int
	var bytesProcessed int64

	limiter := newProgressLimiter(opts.ProgressHz)
	report := func(current string, nodeID core.NodeID, force bool, completed int) {
		if opts.Progress == nil || !limiter.allow(force) {
			return
		}
		elapsed := time.Since(start).Seconds()
		var speed float64
		if elapsed > 0 {
			speed = float64(atomic.LoadInt64(&bytesProcessed)) / elapsed
		}
		var eta time.Duration
		if speed > 0 {
			remaining := totalBytes - atomic.LoadInt64(&bytesProcessed)
			if remaining > 0 {
				eta = time.Duration(float64(remaining)/speed) * time.Second
			}
		}
		p := Progress{
			CompletedOps:   completed,
			TotalOps:       int(countExecutable(mp)),
			BytesProcessed: atomic.LoadInt64(&bytesProcessed),
			TotalBytes:     totalBytes,
			CurrentItem:    current,
			CurrentNodeID:  nodeID,
			Speed:          speed,
			ETA:            eta,
		}
		select {
		case opts.Progress <- p:
		default:
		}
	}

	// Skip nodes have no filesystem effect but are still a first-class
	// journaled outcome (spec §7 User-visible behavior). Even a Skip's
	// attempt record must be written before it's reported, same as any
	// other node — a journal that can't be written is fatal.
	for _, n := range mp.Nodes {
		if n.Kind != plan.KindSkip {
			continue
		}
		if err := journal.Append(Entry{WhenUTC: time.Now().UTC(), Source: n.PathBefore, Dest: n.PathAfter, Op: n.Kind, Result: ResultPending}); err != nil {
			result.Status = StatusFatal
			result.Duration = time.Since(start)
			return result, fmt.Errorf("write journal attempt record: %w", err)
		}
		_ = journal.Append(Entry{WhenUTC: time.Now().UTC(), Source: n.PathBefore, Dest: n.PathAfter, Op: n.Kind, Result: ResultSkip})
		skippedOps++
		result.Nodes = append(result.Nodes, NodeResult{NodeID: n.ID, Result: ResultSkip})
	}

	ranks, err := buildRanks(mp)
	if err != nil {
		result.Status = StatusFatal
		result.Duration = time.Since(start)
		return result, err
	}

	sem := semaphore.NewWeighted(int64(opts.ParallelThreads))
	cancelled := false
	var fatalErr error

rankLoop:
	for _, r := range ranks {
		if ctx.Err() != nil {
			cancelled = true
			break rankLoop
		}
		resultsMu.Lock()
		fatal := fatalErr != nil
		resultsMu.Unlock()
		if fatal {
			break rankLoop
		}

		var wg sync.WaitGroup
		for _, node := range r {
			if err := sem.Acquire(ctx, 1); err != nil {
				cancelled = true
				break
			}
			wg.Add(1)
			go func(n *plan.PlanNode) {
				defer wg.Done()
				defer sem.Release(1)

				nr, journalErr := e.executeNode(ctx, journal, n)

				resultsMu.Lock()
				result.Nodes = append(result.Nodes, nr)
				switch nr.Result {
				case ResultOk:
					completedOps++
					if n.Size != nil {
						atomic.AddInt64(&bytesProcessed, *n.Size)
					}
				case ResultFailed:
					failedOps++
				case ResultSkip:
					skippedOps++
				}
				if journalErr != nil && fatalErr == nil {
					fatalErr = journalErr
				}
				completedSnapshot := completedOps
				resultsMu.Unlock()

				report(n.PathBefore, n.ID, false, completedSnapshot)
			}(node)
		}
		wg.Wait()
	}

	resultsMu.Lock()
	finalCompleted := completedOps
	resultsMu.Unlock()
	report("", 0, true, finalCompleted)

	result.CompletedOps = completedOps
	result.FailedOps = failedOps
	result.SkippedOps = skippedOps
	result.Duration = time.Since(start)

	switch {
	case fatalErr != nil:
		result.Status = StatusFatal
		return result, fmt.Errorf("write journal attempt record: %w", fatalErr)
	case cancelled:
		result.Status = StatusCancelled
	case failedOps > 0:
		result.Status = StatusPartial
	default:
		result.Status = StatusOk
	}
	return result, nil
}

func countExecutable(mp *plan.MovePlan) int {
	n := 0
	for _, node := range mp.Nodes {
		if node.Kind != plan.KindNone {
			n++
		}
	}
	return n
}

// executeNode runs one node's per-node protocol end to end, retrying
// transient failures with the mandated backoff schedule (spec §4.5
// Per-node protocol, Retries). The attempt record must be written and
// flushed before perform ever touches the filesystem (spec §3
// Invariants, §5 "fsync of A's attempt record happens-before any
// filesystem change caused by A"); if the journal itself can't be
// written, the node is never performed and the run is fatal.
func (e *Executor) executeNode(ctx context.Context, journal *Journal, n *plan.PlanNode) (NodeResult, error) {
	started := time.Now()
	if err := journal.Append(Entry{WhenUTC: started.UTC(), Source: n.PathBefore, Dest: n.PathAfter, Op: n.Kind, Result: ResultPending}); err != nil {
		return NodeResult{NodeID: n.ID, Result: ResultFailed, Message: err.Error()}, err
	}

	var lastErr error
	attempts := 0
	delay := retryBase
	var elapsed time.Duration

	for attempts < retryMaxTries {
		attempts++
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		lastErr = e.perform(n)
		if lastErr == nil {
			break
		}

		kind := classifyOSError(lastErr)
		if !core.IsTransient(kind) {
			break
		}
		if elapsed+delay > retryCap {
			break
		}
		e.logger.Warn().Str("node_path", n.PathBefore).Int("attempt", attempts).Dur("delay", delay).Msg("retrying transient execution failure")
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
			attempts = retryMaxTries
		}
		elapsed += delay
		delay *= retryFactor
	}

	nr := NodeResult{NodeID: n.ID, Duration: time.Since(started), Attempts: attempts}
	if lastErr == nil {
		nr.Result = ResultOk
		_ = journal.Append(Entry{WhenUTC: time.Now().UTC(), Source: n.PathBefore, Dest: n.PathAfter, Op: n.Kind, Result: ResultOk})
		return nr, nil
	}

	nr.Result = ResultFailed
	nr.Message = lastErr.Error()
	_ = journal.Append(Entry{WhenUTC: time.Now().UTC(), Source: n.PathBefore, Dest: n.PathAfter, Op: n.Kind, Result: ResultFailed, Message: lastErr.Error()})
	return nr, nil
}

// perform invokes the OS operation for a node's Kind (spec §4.5
// Per-node protocol step 2; ACL/timestamp preservation and platform
// undo-stack registration are handled by the underlying fsx.FileSystem
// implementation, not here).
func (e *Executor) perform(n *plan.PlanNode) error {
	switch n.Kind {
	case plan.KindRename, plan.KindMove:
		if err := e.fs.MkdirAll(filepath.Dir(n.PathAfter), 0o755); err != nil {
			return fmt.Errorf("prepare destination: %w", err)
		}
		return e.fs.Rename(n.PathBefore, n.PathAfter)
	case plan.KindCopyDelete:
		if err := copyTree(e.fs, n.PathBefore, n.PathAfter); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		return e.fs.RemoveAll(n.PathBefore)
	default:
		return nil
	}
}
