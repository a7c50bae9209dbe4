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

// Package golang implements the Lang-G parser adapter and language info
// extractor: a tree-sitter Go grammar wrapped to the pkg/lang contracts.
package golang

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/slicer/pkg/lang"
)

// Adapter wraps one *sitter.Parser configured with the Go grammar. Not
// thread-safe: callers must hold exclusive ownership (via lang.Factory)
// while parsing.
type Adapter struct {
	parser *sitter.Parser
}

// NewAdapter constructs a fresh Go parser adapter. Intended as a
// lang.NewAdapterFunc passed to lang.Registration.
func NewAdapter() lang.Adapter {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	return &Adapter{parser: parser}
}

func (a *Adapter) Tag() lang.Tag { return lang.Go }

func (a *Adapter) Parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	return a.parser.ParseCtx(ctx, nil, source)
}

func (a *Adapter) NodeAt(tree *sitter.Tree, line, column uint32) *sitter.Node {
	if tree == nil {
		return nil
	}
	return findNodeAt(tree.RootNode(), line, column)
}

func (a *Adapter) TextOf(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func (a *Adapter) Walk(root *sitter.Node, visit func(*sitter.Node) bool) {
	walk(root, visit)
}

func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

// findNodeAt returns the deepest node whose span contains (line, column),
// both 0-based. Mirrors the point-containment test the driver uses for
// change-hunk lookups against non-Go languages in the teacher corpus.
func findNodeAt(node *sitter.Node, row, col uint32) *sitter.Node {
	if node == nil {
		return nil
	}

	startRow, startCol := node.StartPoint().Row, node.StartPoint().Column
	endRow, endCol := node.EndPoint().Row, node.EndPoint().Column

	inNode := false
	switch {
	case row > startRow && row < endRow:
		inNode = true
	case row == startRow && row == endRow:
		inNode = col >= startCol && col <= endCol
	case row == startRow:
		inNode = col >= startCol
	case row == endRow:
		inNode = col <= endCol
	}
	if !inNode {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findNodeAt(node.Child(i), row, col); found != nil {
			return found
		}
	}
	return node
}

// countErrors counts ERROR nodes in the tree, used to decide whether a
// ParseFailure should be reported even though tree-sitter produced a root.
func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrors(node.Child(i))
	}
	return count
}
