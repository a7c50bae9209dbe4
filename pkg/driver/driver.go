// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package driver implements the concurrent file-parsing front end: given a
// list of paths and a worker count, it detects each file's language,
// parses it via the factory cache, and extracts its declaration set into a
// slicer.SourceFile model. Individual file failures are collected, never
// fatal to the batch.
package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/slicer"
	"github.com/kraklabs/slicer/pkg/slicer/errs"
)

// ProgressCallback reports batch progress: current/total files processed
// and the current phase name.
type ProgressCallback func(current, total int64, phase string)

// FileFailure pairs a path with the error parsing it produced.
type FileFailure struct {
	Path string
	Err  error
}

// Stats summarizes one batch run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
}

// BatchResult is the driver's output: successfully parsed models, per-file
// failures, and summary stats. Never aborts the batch on individual
// failures.
type BatchResult struct {
	Successes []*slicer.SourceFile
	Failures  []FileFailure
	Stats     Stats
}

// ReadFile loads file content from disk. Abstracted so callers (and tests)
// can source bytes from a VCS snapshot instead of the live working tree.
type ReadFile func(path string) ([]byte, error)

// Driver owns the parser factory and drives parallel parsing of a file
// batch. One Driver may be reused across many ParseBatch calls.
type Driver struct {
	factory *lang.Factory
	read    ReadFile
	logger  *slog.Logger

	onProgress ProgressCallback
}

// New constructs a Driver. logger defaults to slog.Default() when nil.
func New(factory *lang.Factory, read ReadFile, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{factory: factory, read: read, logger: logger}
}

// SetProgressCallback installs an optional progress reporter.
func (d *Driver) SetProgressCallback(cb ProgressCallback) {
	d.onProgress = cb
}

func (d *Driver) reportProgress(current, total int64, phase string) {
	if d.onProgress != nil {
		d.onProgress(current, total, phase)
	}
}

// DetectLanguage maps path to a registered language tag, if any.
func (d *Driver) DetectLanguage(path string) (lang.Tag, bool) {
	return d.factory.Detect(path)
}

// ParseBatch parses paths in parallel using numWorkers goroutines (default:
// host core count when numWorkers <= 0), falling back to sequential
// parsing for small batches where pool setup would dominate. ctx is
// checked between work units; an in-flight parse always runs to
// completion.
func (d *Driver) ParseBatch(ctx context.Context, paths []string, numWorkers int) BatchResult {
	if len(paths) == 0 {
		return BatchResult{}
	}
	if numWorkers <= 0 {
		numWorkers = defaultWorkers()
	}
	if len(paths) < 10 || numWorkers <= 1 {
		return d.parseSequential(ctx, paths)
	}
	return d.parseParallel(ctx, paths, numWorkers)
}

func (d *Driver) parseOne(ctx context.Context, path string) (*slicer.SourceFile, error) {
	tag, ok := d.DetectLanguage(path)
	if !ok {
		return nil, errs.New(errs.UnsupportedLanguage, path, "no registered language for file suffix")
	}

	text, err := d.read(path)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, path, "reading source file", err)
	}

	adapter, err := d.factory.Acquire(tag)
	if err != nil {
		return nil, errs.Wrap(errs.InternalInvariant, path, "acquiring parser adapter", err)
	}
	defer d.factory.Release(adapter)

	tree, err := adapter.Parse(ctx, text)
	if err != nil {
		return nil, errs.Wrap(errs.ParseFailure, path, "parsing source", err)
	}

	extractor, ok := d.factory.Extractor(tag)
	if !ok {
		return nil, errs.New(errs.InternalInvariant, path, "no extractor registered for detected language")
	}

	decls, err := extractor.Extract(tree, text, path)
	if err != nil {
		return nil, errs.Wrap(errs.ExtractionWarning, path, "extracting declarations", err)
	}

	return &slicer.SourceFile{
		Path:  path,
		Text:  text,
		Tree:  tree,
		Lang:  tag,
		Decls: decls,
	}, nil
}

func (d *Driver) parseSequential(ctx context.Context, paths []string) BatchResult {
	var result BatchResult
	total := int64(len(paths))

	for i, path := range paths {
		select {
		case <-ctx.Done():
			result.Stats.Total = len(paths)
			result.Stats.Failed = len(paths) - len(result.Successes)
			return result
		default:
		}

		file, err := d.parseOne(ctx, path)
		if err != nil {
			d.logger.Warn("driver.parse_file.error", "path", path, "err", err)
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err})
		} else {
			result.Successes = append(result.Successes, file)
		}
		d.reportProgress(int64(i+1), total, "parsing")
	}

	result.Stats = Stats{Total: len(paths), Succeeded: len(result.Successes), Failed: len(result.Failures)}
	return result
}

func (d *Driver) parseParallel(ctx context.Context, paths []string, numWorkers int) BatchResult {
	jobs := make(chan int, len(paths))

	type fileResult struct {
		index int
		file  *slicer.SourceFile
		err   error
		path  string
	}
	resultsChan := make(chan fileResult, len(paths))

	totalFiles := int64(len(paths))
	var progressCount int64

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				path := paths[i]
				file, err := d.parseOne(ctx, path)
				if err != nil {
					d.logger.Warn("driver.parse_file.error", "path", path, "err", err)
				}
				resultsChan <- fileResult{index: i, file: file, err: err, path: path}
				current := atomic.AddInt64(&progressCount, 1)
				d.reportProgress(current, totalFiles, "parsing")
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	files := make([]*slicer.SourceFile, len(paths))
	failures := make([]FileFailure, len(paths))
	failed := make([]bool, len(paths))

	for fr := range resultsChan {
		if fr.err != nil {
			failures[fr.index] = FileFailure{Path: fr.path, Err: fr.err}
			failed[fr.index] = true
			continue
		}
		files[fr.index] = fr.file
	}

	var result BatchResult
	for i, f := range files {
		if failed[i] {
			result.Failures = append(result.Failures, failures[i])
			continue
		}
		if f != nil {
			result.Successes = append(result.Successes, f)
		}
	}
	result.Stats = Stats{Total: len(paths), Succeeded: len(result.Successes), Failed: len(result.Failures)}
	return result
}
