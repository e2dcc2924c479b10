package api

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DirStats counts what a directory run did with each entry.
type DirStats struct {
	Processed int // files transformed
	Copied    int // files matching a keep pattern, copied unchanged
	Skipped   int // entries matching a skip pattern, symlinks and other non-regular files
}

// ObfuscateDirectory obfuscates every file under inputDir into outputDir,
// preserving the directory structure.
//
// The function will:
// 1. Create the output directory if it doesn't exist
// 2. Skip entries that match the configured skip patterns, and symlinks
// 3. Copy files that match the keep patterns unchanged
// 4. Obfuscate all other regular files, in parallel
//
// With abort_on_error disabled, failing entries are logged and their errors
// returned together once the walk completes.
func (o *Obfuscator) ObfuscateDirectory(ctx context.Context, inputDir, outputDir string) (DirStats, error) {
	return o.processDirectory(ctx, "obfuscate", inputDir, outputDir, o.engine.Obfuscate)
}

// DisentangleDirectory is the inverse of ObfuscateDirectory.
func (o *Obfuscator) DisentangleDirectory(ctx context.Context, inputDir, outputDir string) (DirStats, error) {
	return o.processDirectory(ctx, "disentangle", inputDir, outputDir, o.engine.Disentangle)
}

func (o *Obfuscator) processDirectory(ctx context.Context, op, inputDir, outputDir string, fn func(string) string) (DirStats, error) {
	var stats DirStats

	inputInfo, err := os.Stat(inputDir)
	if err != nil {
		return stats, fmt.Errorf("failed to stat input directory %s: %w", inputDir, err)
	}
	if !inputInfo.IsDir() {
		return stats, fmt.Errorf("input path %s is not a directory", inputDir)
	}
	if err := CheckNested(inputDir, outputDir); err != nil {
		return stats, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	var (
		mu        sync.Mutex
		collected error
	)
	// record aborts the run or keeps the error for the final result.
	record := func(err error) error {
		if o.abortOnError {
			return err
		}
		o.log.Warn("skipping entry", zap.Error(err))
		mu.Lock()
		collected = multierr.Append(collected, err)
		mu.Unlock()
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	walkErr := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return record(fmt.Errorf("error accessing path %q: %w", path, err))
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return record(fmt.Errorf("error calculating relative path for %q: %w", path, err))
		}
		if relPath == "." {
			return nil
		}
		targetPath := filepath.Join(outputDir, relPath)

		if matchAny(relPath, o.skipPaths) {
			stats.Skipped++
			o.log.Debug("skipping path (matches skiplist)", zap.String("path", relPath))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return record(fmt.Errorf("failed to create output directory %s: %w", targetPath, err))
			}
			return nil
		}
		if !d.Type().IsRegular() {
			stats.Skipped++
			o.log.Debug("skipping non-regular file", zap.String("path", relPath))
			return nil
		}

		transform := fn
		if matchAny(relPath, o.keepPaths) {
			stats.Copied++
			transform = func(s string) string { return s }
		} else {
			stats.Processed++
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := transformFile(path, targetPath, transform); err != nil {
				return record(err)
			}
			return nil
		})
		return nil
	})

	if err := multierr.Combine(walkErr, g.Wait()); err != nil {
		return stats, fmt.Errorf("failed to %s directory %s: %w", op, inputDir, err)
	}

	o.log.Info("directory processed",
		zap.String("operation", op),
		zap.String("input", inputDir),
		zap.String("output", outputDir),
		zap.Int("processed", stats.Processed),
		zap.Int("copied", stats.Copied),
		zap.Int("skipped", stats.Skipped))
	return stats, collected
}

// matchAny reports whether the relative path or its base name matches a pattern.
// Patterns are checked when the configuration is validated.
func matchAny(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// CheckNested refuses an output directory inside (or equal to) the input
// directory, which the walk would otherwise descend into.
func CheckNested(inputDir, outputDir string) error {
	absIn, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("error resolving input directory %s: %w", inputDir, err)
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("error resolving output directory %s: %w", outputDir, err)
	}
	if within(absIn, absOut) {
		return fmt.Errorf("output directory %s must not be inside input directory %s", outputDir, inputDir)
	}
	return nil
}

// within reports whether the absolute path target is dir or lies below it.
func within(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// CheckCleanable refuses to clean a target directory that is, or contains,
// the input directory.
func CheckCleanable(inputDir, targetDir string) error {
	absIn, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("error resolving input directory %s: %w", inputDir, err)
	}
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("error resolving target directory %s: %w", targetDir, err)
	}
	if within(absTarget, absIn) {
		return fmt.Errorf("refusing to clean %s: it contains input directory %s", targetDir, inputDir)
	}
	return nil
}
