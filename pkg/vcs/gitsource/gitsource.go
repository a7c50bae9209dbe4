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

// Package gitsource implements vcs.ChangeSource against a local git
// checkout by shelling out to the git binary, the way pkg/tools/git.go
// talks to git for read-only history queries.
package gitsource

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kraklabs/slicer/pkg/slicer"
	"github.com/kraklabs/slicer/pkg/slicer/errs"
	"github.com/kraklabs/slicer/pkg/vcs"
)

// GitRunner executes one git subcommand and returns its stdout. Mockable
// for tests.
type GitRunner interface {
	Run(ctx context.Context, args ...string) (string, error)
	RepoPath() string
}

// Executor is the default GitRunner, shelling out to the system git
// binary rooted at a discovered repository root.
type Executor struct {
	repoPath string
}

// NewExecutor discovers the repository root containing startPath and
// returns an Executor rooted there.
func NewExecutor(startPath string) (*Executor, error) {
	if startPath == "" {
		return nil, fmt.Errorf("startPath cannot be empty")
	}
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absPath
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("not a git repository: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git not found or not installed: %w", err)
	}

	repoPath := strings.TrimSpace(string(output))
	if repoPath == "" {
		return nil, fmt.Errorf("could not determine git repository root")
	}
	return &Executor{repoPath: repoPath}, nil
}

// RepoPath returns the absolute path to the repository root.
func (e *Executor) RepoPath() string { return e.repoPath }

// Run executes git with args in the repository root, returning stdout.
func (e *Executor) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("no git command specified")
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git command timed out or canceled: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s failed: %s", args[0], msg)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return stdout.String(), nil
}

// Source is a vcs.ChangeSource backed by a GitRunner. One Source per
// repository.
type Source struct {
	git GitRunner
}

// New builds a Source over the given GitRunner.
func New(git GitRunner) *Source {
	return &Source{git: git}
}

// Changes runs `git diff -U0 <commit>^ <commit>` and parses the unified
// diff into per-file line-range hunks. The empty-tree SHA is substituted
// for the parent of a commit with none (the repository's first commit),
// mirroring the delta detector's initial-ingestion handling.
func (s *Source) Changes(ctx context.Context, commitID string) ([]vcs.FileChange, error) {
	parent, err := s.resolveParent(ctx, commitID)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, commitID, "resolving parent commit", err)
	}

	out, err := s.git.Run(ctx, "diff", "-U0", "--no-color", parent, commitID)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, commitID, "running git diff", err)
	}

	return parseUnifiedDiff(out), nil
}

const emptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func (s *Source) resolveParent(ctx context.Context, commitID string) (string, error) {
	out, err := s.git.Run(ctx, "rev-parse", commitID+"^")
	if err != nil {
		return emptyTreeSHA, nil
	}
	return strings.TrimSpace(out), nil
}

// parseUnifiedDiff walks `git diff -U0` output, grouping hunks under the
// "+++ b/path" file header that precedes them and parsing each "@@ -a,b
// +c,d @@" header plus its following added/removed/context lines.
func parseUnifiedDiff(diff string) []vcs.FileChange {
	var changes []vcs.FileChange
	var cur *vcs.FileChange
	var hunk *slicer.Hunk

	flushHunk := func() {
		if cur != nil && hunk != nil {
			cur.Hunks = append(cur.Hunks, *hunk)
		}
		hunk = nil
	}
	flushFile := func() {
		flushHunk()
		if cur != nil {
			changes = append(changes, *cur)
		}
		cur = nil
	}

	lines := strings.Split(diff, "\n")
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flushFile()
		case strings.HasPrefix(line, "+++ "):
			path := strings.TrimPrefix(line, "+++ ")
			path = strings.TrimPrefix(path, "b/")
			if path == "/dev/null" {
				cur = nil
				continue
			}
			cur = &vcs.FileChange{Path: path}
		case strings.HasPrefix(line, "@@ "):
			if cur == nil {
				continue
			}
			flushHunk()
			h, ok := parseHunkHeader(line)
			if ok {
				hunk = &h
			}
		case hunk != nil && len(line) > 0 && line[0] == '+':
			hunk.Lines = append(hunk.Lines, slicer.HunkLine{Tag: slicer.LineAdded, Text: line[1:]})
		case hunk != nil && len(line) > 0 && line[0] == '-':
			hunk.Lines = append(hunk.Lines, slicer.HunkLine{Tag: slicer.LineRemoved, Text: line[1:]})
		case hunk != nil && strings.HasPrefix(line, " "):
			hunk.Lines = append(hunk.Lines, slicer.HunkLine{Tag: slicer.LineContext, Text: line[1:]})
		}
	}
	flushFile()

	return changes
}

// parseHunkHeader parses "@@ -a[,b] +c[,d] @@..." into a Hunk with
// half-open 1-based ranges. A missing count defaults to 1 (unified diff
// convention for single-line ranges).
func parseHunkHeader(line string) (slicer.Hunk, bool) {
	end := strings.Index(line[3:], " @@")
	if end < 0 {
		return slicer.Hunk{}, false
	}
	body := line[3 : 3+end]
	parts := strings.Fields(body)
	if len(parts) != 2 {
		return slicer.Hunk{}, false
	}

	oldStart, oldCount, ok1 := parseRange(parts[0])
	newStart, newCount, ok2 := parseRange(parts[1])
	if !ok1 || !ok2 {
		return slicer.Hunk{}, false
	}

	return slicer.Hunk{
		OldStart: oldStart,
		OldEnd:   oldStart + oldCount,
		NewStart: newStart,
		NewEnd:   newStart + newCount,
	}, true
}

// parseRange parses "-a,b" or "+c" into (start, count).
func parseRange(token string) (start, count int, ok bool) {
	token = strings.TrimLeft(token, "+-")
	numPart, countPart, hasComma := strings.Cut(token, ",")
	count = 1
	if hasComma {
		if _, err := fmt.Sscanf(countPart, "%d", &count); err != nil {
			return 0, 0, false
		}
	}
	if _, err := fmt.Sscanf(numPart, "%d", &start); err != nil {
		return 0, 0, false
	}
	return start, count, true
}
