//go:build !windows

package exec

import "filemover/pkg/filemover/core"

// classifyOSError has no sharing-violation/network-hiccup equivalent to
// detect outside Windows syscalls; everything funnels through the
// generic classification (spec §7's Windows-specific kinds are simply
// never produced on this platform).
func classifyOSError(err error) core.ErrorKind {
	return classifyGenericError(err)
}
