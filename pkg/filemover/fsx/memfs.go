package fsx

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"testing/fstest"
	"time"
)

// MemFileSystem is an in-memory FileSystem double for scanner/planner/
// executor tests, adapted from fstest.MapFS the way the teacher's
// filesystem.TestFileSystem wraps it — but extended with directory
// bookkeeping and a fake per-root volume so cross-volume behavior
// (CopyDelete, NoSpace) is exercisable without a real second drive.
type MemFileSystem struct {
	fstest.MapFS
	volumes map[string]string // path prefix -> volume id
	free    map[string]uint64 // volume id -> free bytes
}

// NewMemFileSystem returns an empty in-memory filesystem.
func NewMemFileSystem() *MemFileSystem {
	return &MemFileSystem{
		MapFS:   make(fstest.MapFS),
		volumes: make(map[string]string),
		free:    make(map[string]uint64),
	}
}

// SetVolume declares that every path under prefix belongs to volume id,
// with the given free space in bytes.
func (m *MemFileSystem) SetVolume(prefix, id string, freeBytes uint64) {
	m.volumes[clean(prefix)] = id
	m.free[id] = freeBytes
}

func clean(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	return path.Clean(p)
}

// MkdirAll records a directory entry for path and all of its ancestors.
func (m *MemFileSystem) MkdirAll(p string, perm fs.FileMode) error {
	p = clean(p)
	for cur := p; cur != "." && cur != ""; cur = path.Dir(cur) {
		if _, exists := m.MapFS[cur]; !exists {
			m.MapFS[cur] = &fstest.MapFile{Mode: perm | fs.ModeDir, ModTime: time.Now()}
		}
		if path.Dir(cur) == cur {
			break
		}
	}
	return nil
}

// WriteFile stores file content, creating parent directories.
func (m *MemFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	name = clean(name)
	if err := m.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	m.MapFS[name] = &fstest.MapFile{Data: data, Mode: perm, ModTime: time.Now()}
	return nil
}

// Remove deletes a single entry.
func (m *MemFileSystem) Remove(name string) error {
	name = clean(name)
	if _, exists := m.MapFS[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.MapFS, name)
	return nil
}

// RemoveAll deletes name and everything nested under it.
func (m *MemFileSystem) RemoveAll(name string) error {
	name = clean(name)
	for p := range m.MapFS {
		if p == name || strings.HasPrefix(p, name+"/") {
			delete(m.MapFS, p)
		}
	}
	return nil
}

// Rename moves an entry and its descendants to a new path.
func (m *MemFileSystem) Rename(oldpath, newpath string) error {
	oldpath, newpath = clean(oldpath), clean(newpath)
	if _, exists := m.MapFS[oldpath]; !exists {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	if err := m.MkdirAll(path.Dir(newpath), 0o755); err != nil {
		return err
	}
	moved := map[string]*fstest.MapFile{}
	for p, f := range m.MapFS {
		if p == oldpath {
			moved[newpath] = f
			continue
		}
		if strings.HasPrefix(p, oldpath+"/") {
			moved[newpath+strings.TrimPrefix(p, oldpath)] = f
			continue
		}
		moved[p] = f
	}
	m.MapFS = moved
	return nil
}

func (m *MemFileSystem) Readlink(name string) (string, error) {
	name = clean(name)
	f, exists := m.MapFS[name]
	if !exists || f.Mode&fs.ModeSymlink == 0 {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return string(f.Data), nil
}

func (m *MemFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return m.Stat(name)
}

func (m *MemFileSystem) VolumeID(p string) (string, error) {
	p = clean(p)
	best := ""
	bestLen := -1
	for prefix, id := range m.volumes {
		if (p == prefix || strings.HasPrefix(p, prefix+"/")) && len(prefix) > bestLen {
			best, bestLen = id, len(prefix)
		}
	}
	if best == "" {
		return "C", nil
	}
	return best, nil
}

func (m *MemFileSystem) FreeSpace(p string) (uint64, error) {
	id, _ := m.VolumeID(p)
	if free, ok := m.free[id]; ok {
		return free, nil
	}
	return 1 << 40, nil
}

var _ FileSystem = (*MemFileSystem)(nil)

// sortedPaths returns the map's keys sorted, used by tests that need
// deterministic iteration over a MemFileSystem's contents.
func sortedPaths(m *MemFileSystem) []string {
	paths := make([]string, 0, len(m.MapFS))
	for p := range m.MapFS {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
