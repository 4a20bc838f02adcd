package scan

import "filemover/pkg/filemover/normalize"

// Options controls how a scan walks its roots (spec §3 ScanOptions).
type Options struct {
	Normalize normalize.Flags

	FollowJunctions   bool
	SystemProtections bool
	MaxDepth          int // 0 means unlimited
	ExcludedPaths     []string
	ParallelThreads   int // 0 means min(8, NumCPU)
}

// DefaultExcludedPrefixes are the always-excluded locations when
// SystemProtections is on (spec §6 System protections). `$Recycle.Bin`
// matches a path component at any depth; `%TEMP%` stands for the
// user's temporary directory (os.TempDir).
var DefaultExcludedPrefixes = []string{
	`C:\Windows`,
	`C:\Program Files`,
	`C:\Program Files (x86)`,
	`$Recycle.Bin`,
	`%TEMP%`,
}
