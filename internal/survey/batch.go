package survey

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Batch output naming.
const (
	DefaultOutputDirName = "converted"
	ConvertedSuffix      = "_converted.csv"
	MergedFileName       = "merged_all.csv"

	outputDirPermissions = 0750
)

var supportedExtensions = []string{".kml", ".kmz", ".csv", ".xml", ".netxml", ".gpsxml", ".txt", ".ns1", ".nss"}

// SupportedExtensions lists the file extensions a folder conversion picks up.
func SupportedExtensions() []string {
	return slices.Clone(supportedExtensions)
}

// BatchOptions configures ConvertFolder.
type BatchOptions struct {
	// OutputDir receives the tables. Defaults to <folder>/converted.
	OutputDir string

	// Merge writes one merged_all.csv instead of a table per file.
	Merge bool

	// Recursive descends into subfolders, skipping OutputDir.
	Recursive bool
}

// ConvertFolder converts every supported file in folder, one at a time.
// A file that fails is listed in BatchResult.Failed and the batch goes on;
// use BatchResult.OK to tell whether anything converted. The context is
// checked between files.
func (c *Converter) ConvertFolder(ctx context.Context, folder string, opts BatchOptions) (*BatchResult, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, folder)
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = filepath.Join(folder, DefaultOutputDirName)
	}

	batch := &BatchResult{Folder: folder, OutputDir: outDir}

	files, err := findSupportedFiles(folder, outDir, opts.Recursive)
	if err != nil {
		return batch, err
	}
	if len(files) == 0 {
		return batch, fmt.Errorf("%w in %s (supported: %s)", ErrNoSupportedFiles, folder, strings.Join(supportedExtensions, ", "))
	}
	batch.Files = files

	if err := os.MkdirAll(outDir, outputDirPermissions); err != nil {
		return batch, fmt.Errorf("%w: creating output folder: %w", ErrWriteFailed, err)
	}

	c.logger.Info("batch conversion started",
		"folder", folder, "output_dir", outDir, "files", len(files),
		"merge", opts.Merge, "recursive", opts.Recursive)

	var merged []Record
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		name := filepath.Base(path)
		c.logger.Info("processing file", "index", i+1, "total", len(files), "file", name)

		var res *Result
		if opts.Merge {
			res, err = c.Convert(ctx, path)
			if err == nil {
				merged = append(merged, res.Records...)
			}
		} else {
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			res, err = c.ConvertFile(ctx, path, filepath.Join(outDir, stem+ConvertedSuffix))
		}

		batch.Results = append(batch.Results, res)
		if err != nil {
			c.logger.Warn("file failed", "file", name, "error", err)
			batch.Failed = append(batch.Failed, name)
			continue
		}
		batch.Succeeded = append(batch.Succeeded, name)
	}

	if opts.Merge && len(merged) > 0 {
		out := filepath.Join(outDir, MergedFileName)
		if err := WriteFile(out, merged, c.table); err != nil {
			return batch, err
		}
		batch.MergedOutput = out
	}

	c.logger.Info("batch conversion complete",
		"succeeded", len(batch.Succeeded), "failed", len(batch.Failed), "output_dir", outDir)
	for _, name := range batch.Failed {
		c.logger.Warn("failed file", "file", name)
	}
	return batch, nil
}

// findSupportedFiles returns matching regular files in lexical order.
// When recursing, outDir and everything below it are skipped.
func findSupportedFiles(folder, outDir string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("reading folder: %w", err)
		}
		var files []string
		for _, e := range entries {
			if e.Type().IsRegular() && isSupported(e.Name()) {
				files = append(files, filepath.Join(folder, e.Name()))
			}
		}
		return files, nil
	}

	skip := absPath(outDir)
	var files []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != folder && absPath(path) == skip {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && isSupported(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking folder: %w", err)
	}
	return files, nil
}

func isSupported(name string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(name)))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
