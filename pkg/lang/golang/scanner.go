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

package golang

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/slicer/pkg/lang"
)

// Scanner enumerates candidate identifier references within a declaration's
// source span: type references (type_identifier, qualified_type), call
// targets (call_expression), and bare identifier reads that may name a
// constant. It never decides first-party vs. third-party — that is the
// resolver's job once it has the full model set.
type Scanner struct{}

// NewScanner constructs the Go reference scanner.
func NewScanner() lang.Scanner { return &Scanner{} }

func (s *Scanner) Tag() lang.Tag { return lang.Go }

func (s *Scanner) ScanReferences(tree *sitter.Tree, source []byte, startByte, endByte uint32) []lang.Reference {
	if tree == nil {
		return nil
	}
	var refs []lang.Reference
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		if node == nil || node.EndByte() <= startByte || node.StartByte() >= endByte {
			return
		}

		switch node.Type() {
		case "call_expression":
			if fn := node.ChildByFieldName("function"); fn != nil {
				if ref, ok := callReference(fn, source); ok {
					ref.Line = int(node.StartPoint().Row) + 1
					refs = append(refs, ref)
				}
			}
		case "type_identifier":
			refs = append(refs, lang.Reference{
				Name: nodeText(node, source),
				Line: int(node.StartPoint().Row) + 1,
			})
		case "qualified_type":
			if ref, ok := qualifiedTypeReference(node, source); ok {
				refs = append(refs, ref)
			}
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i))
		}
	}
	visit(tree.RootNode())
	return refs
}

// callReference classifies a call_expression's function child: a plain
// identifier is an unqualified call; a selector_expression "x.Foo" yields
// a qualified reference whose Qualifier is x's leftmost name, whether x is
// a package alias or a receiver-typed variable — the resolver decides
// which by checking first-party package names before falling back to
// receiver-method dispatch.
func callReference(fn *sitter.Node, source []byte) (lang.Reference, bool) {
	switch fn.Type() {
	case "identifier":
		return lang.Reference{Name: nodeText(fn, source), IsCall: true}, true
	case "selector_expression":
		operand := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		if field == nil {
			return lang.Reference{}, false
		}
		qualifier := ""
		if operand != nil {
			qualifier = leftmostName(operand, source)
		}
		return lang.Reference{Qualifier: qualifier, Name: nodeText(field, source), IsCall: true}, true
	case "index_expression":
		if operand := fn.ChildByFieldName("operand"); operand != nil {
			return callReference(operand, source)
		}
	}
	return lang.Reference{}, false
}

// qualifiedTypeReference turns pkg.Type into a Reference{Qualifier:"pkg",
// Name:"Type"}.
func qualifiedTypeReference(node *sitter.Node, source []byte) (lang.Reference, bool) {
	var pkgName, typeName *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "package_identifier":
			pkgName = child
		case "type_identifier":
			typeName = child
		}
	}
	if typeName == nil {
		return lang.Reference{}, false
	}
	qualifier := ""
	if pkgName != nil {
		qualifier = nodeText(pkgName, source)
	}
	return lang.Reference{
		Qualifier: qualifier,
		Name:      nodeText(typeName, source),
		Line:      int(node.StartPoint().Row) + 1,
	}, true
}

// leftmostName returns the leftmost identifier of a (possibly chained)
// selector expression, e.g. "a.b.c" -> "a". Used to find the root variable
// or package a receiver-method call or field chain is rooted at.
func leftmostName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "package_identifier":
			return nodeText(node, source)
		case "selector_expression":
			node = node.ChildByFieldName("operand")
		default:
			return nodeText(node, source)
		}
	}
	return ""
}
