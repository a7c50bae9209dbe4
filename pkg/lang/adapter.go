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

package lang

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Adapter wraps a generated CST parser for one language and exposes
// language-neutral node/tree operations. Instances are not required to be
// thread-safe; the Factory pool and the driver serialize access per
// instance.
type Adapter interface {
	// Parse returns a CST whose root spans the full input. Lossy recovery
	// is acceptable: a partial tree (tree.RootNode().HasError()) is
	// returned rather than an error as long as a root node is produced.
	Parse(ctx context.Context, source []byte) (*sitter.Tree, error)

	// NodeAt returns the deepest node whose byte span contains the point
	// (0-based line and column). Returns nil if the point is out of the
	// tree's line bounds.
	NodeAt(tree *sitter.Tree, line, column uint32) *sitter.Node

	// TextOf returns the substring of source given by the node's byte
	// range. Total when tree was produced from source.
	TextOf(node *sitter.Node, source []byte) string

	// Walk performs a pre-order traversal from root, visiting each node
	// exactly once. Traversal stops early if visit returns false.
	Walk(root *sitter.Node, visit func(*sitter.Node) bool)

	// Tag identifies the language this adapter parses.
	Tag() Tag
}

// Extractor is the Language info extractor for one language: a single-pass
// CST walk yielding a tagged bag of declarations. It is purely structural —
// it never resolves identifiers across files.
type Extractor interface {
	Extract(tree *sitter.Tree, source []byte, filePath string) (DeclarationSet, error)
	Tag() Tag
}

// Reference is one candidate identifier reference found while scanning a
// declaration's body span: a type reference in a signature or body, a
// function/method call target, or a constant read. Qualified references
// carry a nonempty Qualifier (the package alias, or — for receiver-method
// calls x.Foo — the receiver expression's leftmost name); unqualified
// references leave it empty.
type Reference struct {
	Qualifier string
	Name      string
	Line      int
	IsCall    bool
}

// Scanner enumerates candidate identifier references within one byte span
// of a parse tree, for the resolver to attempt resolution against. It is
// purely structural, like Extractor: it never itself decides first-party
// vs. third-party, that is the resolver's job.
type Scanner interface {
	ScanReferences(tree *sitter.Tree, source []byte, startByte, endByte uint32) []Reference
	Tag() Tag
}

// NewAdapterFunc constructs a fresh, unshared Adapter instance. Factory
// pools call this on a pool miss.
type NewAdapterFunc func() Adapter

// Registry binds a Tag to the constructor, extractor, and scanner used for
// it. The CLI and library entry points populate a Registry once at
// startup; plugging in a new language means adding one Registration, not
// touching the slicer, the resolver, or the renderer.
type Registration struct {
	Tag        Tag
	NewAdapter NewAdapterFunc
	Extractor  Extractor
	Scanner    Scanner
}
