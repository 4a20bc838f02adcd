//go:build !windows

package fsx

import "syscall"

// FreeSpace reports free bytes on the volume containing path. FileMover
// targets Windows hosts; this Statfs-based fallback keeps the engine and
// its tests runnable on the developer's non-Windows machine.
func (o *OSFileSystem) FreeSpace(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Bfree) * uint64(stat.Bsize), nil
}
