package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/match"
	"filemover/pkg/filemover/normalize"

	"github.com/rs/zerolog"
)

// job is one unit of walk work: a directory to enumerate at a given
// depth, tracking the ancestor chain for junction-cycle detection.
type job struct {
	path     string
	depth    int
	ancestry []string
}

// queue is a mutex-protected work-stealing deque. Workers pull from the
// front and push newly discovered subdirectories back onto it; the
// scan is complete when the queue is empty and every in-flight job has
// finished (spec §4.3 "work-stealing parallelism").
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []job
	pending int // jobs pushed but not yet marked done
	closed  bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(j job) {
	q.mu.Lock()
	q.items = append(q.items, j)
	q.pending++
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *queue) pop() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return job{}, false
	}
	j := q.items[0]
	q.items = q.items[1:]
	return j, true
}

func (q *queue) done() {
	q.mu.Lock()
	q.pending--
	if q.pending == 0 {
		q.closed = true
		q.cond.Broadcast()
	}
	q.mu.Unlock()
}

// Scanner enumerates roots in parallel, annotating each visited
// directory with a Matcher verdict (spec §4.3).
type Scanner struct {
	opts     Options
	rules    *match.CompiledRuleSet
	fs       fsx.FileSystem
	logger   zerolog.Logger
	asOf     time.Time
}

// New builds a Scanner. The time New is called (UTC) is the timestamp
// used for destination preview template expansion (see
// match.TemplateMeta).
func New(opts Options, rules *match.CompiledRuleSet, fs fsx.FileSystem, logger zerolog.Logger) *Scanner {
	return &Scanner{opts: opts, rules: rules, fs: fs, logger: logger, asOf: time.Now().UTC()}
}

// Scan walks every root and returns the complete, unordered hit stream
// (spec §4.3 Contract). Scan errors annotate individual hits; only a
// canceled context aborts the scan early.
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]FolderHit, error) {
	q := newQueue()
	var mu sync.Mutex
	var hits []FolderHit

	threads := s.opts.ParallelThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
		if threads > 8 {
			threads = 8
		}
		if threads < 1 {
			threads = 1
		}
	}

	for _, r := range roots {
		q.push(job{path: r, depth: 0, ancestry: []string{r}})
	}
	if len(roots) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for {
				j, ok := q.pop()
				if !ok {
					return nil
				}
				if gctx.Err() != nil {
					q.done()
					continue
				}
				emitted := s.visit(gctx, j, q)
				if len(emitted) > 0 {
					mu.Lock()
					hits = append(hits, emitted...)
					mu.Unlock()
				}
				q.done()
			}
		})
	}

	if err := g.Wait(); err != nil {
		return hits, err
	}
	return hits, ctx.Err()
}

// visit processes one directory: refusal checks, matcher consultation,
// hit emission, and scheduling of child directories.
func (s *Scanner) visit(ctx context.Context, j job, q *queue) []FolderHit {
	if s.isRefused(j.path) {
		return nil
	}

	entries, err := s.fs.ReadDir(j.path)
	if err != nil {
		parent := filepath.Dir(j.path)
		hit := FolderHit{SourcePath: parent, FolderName: filepath.Base(parent)}
		hit.addWarning(WarningAccessDenied)
		s.logger.Debug().Str("path", j.path).Err(err).Msg("directory could not be opened")
		return []FolderHit{hit}
	}

	var out []FolderHit
	name := filepath.Base(j.path)
	normName := normalize.Normalize(name, s.opts.Normalize)
	verdict := s.rules.Evaluate(normName)

	if verdict.Kind == match.VerdictMatched {
		hit := FolderHit{SourcePath: j.path, FolderName: name, MatchedRule: verdict.RuleID}
		s.attachWarnings(&hit, j.path)
		if rule, ok := s.rules.Rule(verdict.RuleID); ok {
			if dest, err := match.ExpandTemplate(rule, match.TemplateMeta{Name: name, SourcePath: j.path, AsOf: s.asOf}); err == nil {
				hit.DestPreview = dest
				if srcVol, err := s.fs.VolumeID(j.path); err == nil {
					if destVol, err := s.fs.VolumeID(dest); err == nil && srcVol != destVol {
						hit.addWarning(WarningCrossVolume)
					}
				}
			} else {
				s.logger.Warn().Str("rule", verdict.RuleID).Err(err).Msg("template expansion failed")
			}
		}
		out = append(out, hit)
	}
	// Excluded or NoRule: no hit emitted, but descent continues.

	if s.opts.MaxDepth > 0 && j.depth >= s.opts.MaxDepth {
		return out
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		childPath := filepath.Join(j.path, entry.Name())

		info, err := s.fs.Lstat(childPath)
		if err == nil && info.Mode()&fs.ModeSymlink != 0 {
			if !s.opts.FollowJunctions {
				continue
			}
			target, terr := s.resolveReparse(childPath)
			if terr == nil && s.isAncestor(target, j.ancestry) {
				hit := FolderHit{SourcePath: childPath, FolderName: entry.Name()}
				hit.addWarning(WarningJunction)
				out = append(out, hit)
				continue
			}
		}

		q.push(job{path: childPath, depth: j.depth + 1, ancestry: append(append([]string{}, j.ancestry...), childPath)})
	}

	return out
}

func (s *Scanner) resolveReparse(path string) (string, error) {
	target, err := s.fs.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

func (s *Scanner) isAncestor(target string, ancestry []string) bool {
	target = filepath.Clean(target)
	for _, a := range ancestry {
		if filepath.Clean(a) == target {
			return true
		}
	}
	return false
}

func (s *Scanner) attachWarnings(hit *FolderHit, path string) {
	if utf8.RuneCountInString(path) > longPathThreshold {
		hit.addWarning(WarningLongPath)
	}
	if isOneDriveOffline(path) {
		hit.addWarning(WarningOffline)
	}
}

// isOneDriveOffline is a best-effort heuristic for cloud-sync placeholder
// folders that look present but have no local content: a OneDrive path
// under a Personal or Business sync root. It cannot see the actual
// FILE_ATTRIBUTE_OFFLINE/RECALL_ON_DATA_ACCESS bit through fsx's portable
// StatFS, so it matches on the path shape instead.
func isOneDriveOffline(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "onedrive") &&
		(strings.Contains(lower, "personal") || strings.Contains(lower, "business"))
}

func (s *Scanner) isRefused(path string) bool {
	if s.opts.SystemProtections {
		for _, prefix := range DefaultExcludedPrefixes {
			switch prefix {
			case `%TEMP%`:
				prefix = os.TempDir()
			case `$Recycle.Bin`:
				for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
					if strings.EqualFold(part, prefix) {
						return true
					}
				}
				continue
			}
			if hasPathPrefix(path, prefix) {
				return true
			}
		}
	}
	for _, prefix := range s.opts.ExcludedPaths {
		if hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	path = strings.ToLower(filepath.Clean(path))
	prefix = strings.ToLower(filepath.Clean(prefix))
	return path == prefix || strings.HasPrefix(path, prefix+string(filepath.Separator))
}
