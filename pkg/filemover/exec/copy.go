package exec

import (
	"io/fs"
	"path/filepath"
	"strings"

	"filemover/pkg/filemover/fsx"
)

// copyTree copies src (file or directory) to dst on the given
// filesystem, used by CopyDelete nodes whose source and destination
// live on different volumes and so cannot be Renamed atomically (spec
// §4.4 Operation classification: CopyDelete).
func copyTree(fsys fsx.FileSystem, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(fsys, src, dst, info.Mode())
	}

	if err := fsys.MkdirAll(dst, info.Mode()|0o700); err != nil {
		return err
	}
	return fs.WalkDir(fsys, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == src {
			return nil
		}
		rel := strings.TrimPrefix(p, src+"/")
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if d.IsDir() {
			di, err := d.Info()
			if err != nil {
				return err
			}
			return fsys.MkdirAll(target, di.Mode()|0o700)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(fsys, p, target, fi.Mode())
	})
}

func copyFile(fsys fsx.FileSystem, src, dst string, mode fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return err
	}
	return fsys.WriteFile(dst, data, mode)
}
