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

// Package slicer implements the semantic code slicing engine: locating the
// construct enclosing a changed line, resolving its transitive first-party
// dependency closure, and rendering the result as a self-contained text
// artifact.
package slicer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/slicer/pkg/lang"
)

// SourceFile is the durable record of one parsed file: an immutable value
// shared read-only by every downstream stage once constructed. The parse
// tree's lifetime is tied to Text — Tree must not outlive this SourceFile.
type SourceFile struct {
	Path  string // path relative to the repository root, as supplied by the VCS collaborator
	Text  []byte
	Tree  *sitter.Tree
	Lang  lang.Tag
	Decls lang.DeclarationSet
}

// LineTag classifies one line of a Hunk.
type LineTag int

const (
	LineContext LineTag = iota
	LineAdded
	LineRemoved
)

// HunkLine is one line entry within a Hunk's change, tagged added/removed/
// context.
type HunkLine struct {
	Tag  LineTag
	Text string
}

// Hunk is a contiguous block of line changes: old range [OldStart,OldEnd)
// and new range [NewStart,NewEnd), both half-open and 1-based.
type Hunk struct {
	OldStart, OldEnd int
	NewStart, NewEnd int
	Lines            []HunkLine
}

// NewRangeContains reports whether line (1-based) falls in the hunk's new
// range.
func (h Hunk) NewRangeContains(line int) bool {
	return line >= h.NewStart && line < h.NewEnd
}

// AnyNewRangeContains reports whether line falls within any hunk's new
// range.
func AnyNewRangeContains(hunks []Hunk, line int) bool {
	for _, h := range hunks {
		if h.NewRangeContains(line) {
			return true
		}
	}
	return false
}

// UnresolvedRef is a reference that could not be resolved to a first-party
// declaration: recorded on the context, non-fatal.
type UnresolvedRef struct {
	Name     string
	FilePath string
	Line     int
}

// ResolvedDecl pairs a Declaration with the file that owns it — the
// back-reference every resolved declaration carries per the spec's
// back-reference design note.
type ResolvedDecl struct {
	Decl lang.Declaration
	File *SourceFile
}

// DeclEdge records one "uses" edge discovered during resolution: From
// refers to To. Both ends are declKey-formatted. The renderer topologically
// sorts each block by this relation.
type DeclEdge struct {
	From, To string
}

// declKey gives a declaration a stable identity within one semantic
// context: its owning file path, name, and kind. Matches the resolver's
// visitKey.
func declKey(d lang.Declaration, filePath string) string {
	return filePath + "\x00" + d.Name + "\x00" + d.Kind.String()
}

// SemanticContext is the resolved closure for one seed: the enclosing
// declaration plus related type definitions, dependent functions/methods,
// referenced constants, and the minimal set of imports used by any member.
type SemanticContext struct {
	Seed       ResolvedDecl
	Types      []ResolvedDecl
	Functions  []ResolvedDecl
	Constants  []ResolvedDecl
	Imports    []lang.Import
	Unresolved []UnresolvedRef
	Edges      []DeclEdge

	DepthTruncated bool
}
