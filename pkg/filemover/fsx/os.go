package fsx

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// longPathPrefix is the Windows extended-length path prefix. It bypasses
// MAX_PATH but must never leak into a value the caller can see (FolderHit
// paths, journal display, etc.) — only the syscalls issued from this file
// ever see a prefixed path.
const longPathPrefix = `\\?\`

// OSFileSystem implements FileSystem against the real OS filesystem, using
// the \\?\-prefixed form internally on Windows so long paths don't fail.
type OSFileSystem struct{}

// NewOSFileSystem returns a FileSystem backed by the host OS.
func NewOSFileSystem() *OSFileSystem { return &OSFileSystem{} }

func extendedPath(name string) string {
	if strings.HasPrefix(name, longPathPrefix) {
		return name
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return name
	}
	if os.PathSeparator == '\\' {
		return longPathPrefix + abs
	}
	return abs
}

func (o *OSFileSystem) Open(name string) (fs.File, error) {
	return os.Open(extendedPath(name))
}

func (o *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(extendedPath(name))
}

func (o *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(extendedPath(name))
}

func (o *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(extendedPath(name))
}

func (o *OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(extendedPath(name), data, perm)
}

func (o *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(extendedPath(path), perm)
}

func (o *OSFileSystem) Remove(name string) error {
	return os.Remove(extendedPath(name))
}

func (o *OSFileSystem) RemoveAll(name string) error {
	return os.RemoveAll(extendedPath(name))
}

func (o *OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(extendedPath(oldpath), extendedPath(newpath))
}

func (o *OSFileSystem) Readlink(name string) (string, error) {
	return os.Readlink(extendedPath(name))
}

func (o *OSFileSystem) VolumeID(path string) (string, error) {
	vol := filepath.VolumeName(path)
	if vol == "" {
		return "/", nil
	}
	return strings.ToUpper(vol), nil
}
