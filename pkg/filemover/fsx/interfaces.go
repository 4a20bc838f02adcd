// Package fsx defines the filesystem abstraction the rest of the engine
// operates against. Every subsystem (scanner, planner, executor) takes a
// fsx.FileSystem rather than touching os.* directly, so tests can swap in
// an in-memory double and the real Windows path handling lives in one place.
package fsx

import "io/fs"

// ReadFS is a read-only filesystem, compatible with io/fs.
type ReadFS = fs.FS

// StatFS extends ReadFS with Stat and directory listing.
type StatFS interface {
	ReadFS
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Lstat(name string) (fs.FileInfo, error)
}

// WriteFS is the mutation surface the executor drives.
type WriteFS interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error
	Rename(oldpath, newpath string) error
	Readlink(name string) (string, error)
}

// FileSystem is the full surface the engine depends on.
type FileSystem interface {
	StatFS
	WriteFS

	// VolumeID identifies the volume a path resides on (drive letter on
	// Windows). Two paths on the same volume can be Renamed atomically;
	// otherwise a move must fall back to CopyDelete.
	VolumeID(path string) (string, error)

	// FreeSpace reports free bytes on the volume containing path.
	FreeSpace(path string) (uint64, error)
}
