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

// Package vcs defines the input contract the core consumes from a version
// control system: for a repository and commit, a sequence of changed files
// with their line-range hunks. The core neither opens a repository nor
// parses diffs itself — concrete VCS access lives in a sibling package
// (e.g. pkg/vcs/gitsource) implementing ChangeSource.
package vcs

import (
	"context"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/slicer"
)

// FileChange is one changed file within a commit: its repository-relative
// path, an optional language hint (when the caller already knows it, e.g.
// from a rename), and its hunks.
type FileChange struct {
	Path         string
	LanguageHint *lang.Tag
	Hunks        []slicer.Hunk
}

// ChangeSource yields the FileChanges for one commit identifier. path is
// relative to the repository root.
type ChangeSource interface {
	Changes(ctx context.Context, commitID string) ([]FileChange, error)
}
