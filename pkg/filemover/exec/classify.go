package exec

import (
	"errors"
	"io/fs"
	"os"

	"filemover/pkg/filemover/core"
)

// classifyGenericError maps an I/O error to a stable ErrorKind using
// only portable io/fs and os predicates (spec §7 Error kinds).
func classifyGenericError(err error) core.ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission), os.IsPermission(err):
		return core.KindAccessDenied
	case errors.Is(err, fs.ErrNotExist), os.IsNotExist(err):
		return core.KindInvalidName
	default:
		return core.KindIoFailure
	}
}
