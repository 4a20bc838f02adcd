//go:build windows

package fsx

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// FreeSpace reports free bytes on the volume containing path, via
// GetDiskFreeSpaceEx. Used by the planner's NoSpace conflict check for
// CopyDelete-classified moves.
func (o *OSFileSystem) FreeSpace(path string) (uint64, error) {
	root := filepath.VolumeName(path) + `\`
	ptr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return 0, err
	}
	var freeBytes, totalBytes, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &freeBytes, &totalBytes, &totalFree); err != nil {
		return 0, err
	}
	return freeBytes, nil
}
