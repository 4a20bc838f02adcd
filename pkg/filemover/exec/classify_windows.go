//go:build windows

package exec

import (
	"errors"
	"syscall"

	"filemover/pkg/filemover/core"
)

// Windows error codes relevant to execution retries (spec §7 Execution:
// Transient). Values from the Win32 System Error Codes list.
const (
	errSharingViolation = syscall.Errno(32)
	errNetNameDeleted    = syscall.Errno(64)
	errNetworkBusy       = syscall.Errno(54)
)

func classifyOSError(err error) core.ErrorKind {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case errSharingViolation:
			return core.KindSharingViolation
		case errNetNameDeleted, errNetworkBusy:
			return core.KindNetworkHiccup
		case syscall.ENOSPC:
			return core.KindNoSpace
		case syscall.EACCES, syscall.EPERM:
			return core.KindAccessDenied
		}
	}
	return classifyGenericError(err)
}
