package scan

import (
	"context"
	"path/filepath"

	"filemover/pkg/filemover/fsx"
)

// ComputeSize walks path and sums file sizes, checking ctx between
// directories so a caller computing sizes for many hits can cancel
// cleanly (spec §4.3 "must be cancellation-safe"). Size aggregation is
// lazy by design: callers only invoke this for hits they actually need
// a size for.
func ComputeSize(ctx context.Context, fs fsx.FileSystem, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := fs.ReadDir(path)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		childPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			sub, err := ComputeSize(ctx, fs, childPath)
			total += sub
			if err != nil {
				return total, err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
