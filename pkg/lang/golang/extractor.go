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
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/sigparse"
)

// Extractor walks a Go CST once and yields a language-tagged bag of
// declarations. It is purely structural: it never resolves an identifier
// against another file.
type Extractor struct{}

// NewExtractor constructs the Go language info extractor.
func NewExtractor() lang.Extractor { return &Extractor{} }

func (e *Extractor) Tag() lang.Tag { return lang.Go }

func (e *Extractor) Extract(tree *sitter.Tree, source []byte, filePath string) (lang.DeclarationSet, error) {
	if tree == nil {
		return lang.DeclarationSet{}, fmt.Errorf("golang: nil parse tree for %s", filePath)
	}
	root := tree.RootNode()

	set := lang.DeclarationSet{
		PackageName: extractPackageName(root, source),
	}

	set.Imports = extractImports(root, source)

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_declaration":
			if d, err := extractFunction(child, source, filePath); err != nil {
				set.Warnings = append(set.Warnings, err.Error())
			} else if d != nil {
				set.Declarations = append(set.Declarations, *d)
			}
		case "method_declaration":
			if d, err := extractMethod(child, source, filePath); err != nil {
				set.Warnings = append(set.Warnings, err.Error())
			} else if d != nil {
				set.Declarations = append(set.Declarations, *d)
			}
		case "type_declaration":
			set.Declarations = append(set.Declarations, extractTypeDeclaration(child, source, filePath)...)
		case "const_declaration":
			set.Declarations = append(set.Declarations, extractConstOrVar(child, source, filePath, lang.KindConstant)...)
		case "var_declaration":
			set.Declarations = append(set.Declarations, extractConstOrVar(child, source, filePath, lang.KindVariable)...)
		}
	}

	return set, nil
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func lineSpan(node *sitter.Node) (start, end int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}

func extractPackageName(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "package_clause" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			return nodeText(name, source)
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			if gc := child.Child(j); gc.Type() == "package_identifier" {
				return nodeText(gc, source)
			}
		}
	}
	return ""
}

func extractImports(root *sitter.Node, source []byte) []lang.Import {
	var out []lang.Import
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "import_declaration" {
			continue
		}
		out = append(out, extractImportDeclaration(child, source)...)
	}
	return out
}

func extractImportDeclaration(node *sitter.Node, source []byte) []lang.Import {
	var out []lang.Import
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			if imp := extractImportSpec(child, source); imp != nil {
				out = append(out, *imp)
			}
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				if spec := child.Child(j); spec.Type() == "import_spec" {
					if imp := extractImportSpec(spec, source); imp != nil {
						out = append(out, *imp)
					}
				}
			}
		}
	}
	return out
}

func extractImportSpec(node *sitter.Node, source []byte) *lang.Import {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return nil
	}
	path := strings.Trim(nodeText(pathNode, source), `"`)

	kind := lang.AliasNone
	alias := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		alias = nodeText(nameNode, source)
		kind = lang.AliasNamed
	} else {
		for i := 0; i < int(node.ChildCount()); i++ {
			switch node.Child(i).Type() {
			case "dot", ".":
				alias, kind = ".", lang.AliasDot
			case "blank_identifier":
				alias, kind = "_", lang.AliasBlank
			case "package_identifier":
				alias = nodeText(node.Child(i), source)
				kind = lang.AliasNamed
			}
		}
	}

	return &lang.Import{
		Path:      path,
		Alias:     alias,
		AliasKind: kind,
		StartLine: int(node.StartPoint().Row) + 1,
	}
}

// extractFunction extracts a top-level func declaration: func Name[T](...)
// result. Generic parameter lists are carried verbatim in TypeParams.
func extractFunction(node *sitter.Node, source []byte, filePath string) (*lang.Declaration, error) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, fmt.Errorf("golang: function_declaration without a name at %s:%d", filePath, node.StartPoint().Row+1)
	}
	name := nodeText(nameNode, source)

	typeParams := nodeText(node.ChildByFieldName("type_parameters"), source)
	paramsNode := node.ChildByFieldName("parameters")
	params := nodeText(paramsNode, source)
	results := nodeText(node.ChildByFieldName("result"), source)

	signature := buildSignature("func "+name, typeParams, params, results)
	start, end := lineSpan(node)

	d := &lang.Declaration{
		Kind:        lang.KindFunction,
		Name:        name,
		FilePath:    filePath,
		StartLine:   start,
		EndLine:     end,
		StartByte:   node.StartByte(),
		EndByte:     node.EndByte(),
		Signature:   signature,
		Params:      sigparse.ParseGoParams(signature),
		Results:     results,
		TypeParams:  typeParams,
	}
	setBodySpan(d, node)
	return d, nil
}

// extractMethod extracts func (r *Type) Name(...) result. The receiver
// type string is normalized (leading "*" and generic brackets stripped)
// for later symbol lookup by the resolver.
func extractMethod(node *sitter.Node, source []byte, filePath string) (*lang.Declaration, error) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, fmt.Errorf("golang: method_declaration without a name at %s:%d", filePath, node.StartPoint().Row+1)
	}
	methodName := nodeText(nameNode, source)

	receiverNode := node.ChildByFieldName("receiver")
	receiverText := nodeText(receiverNode, source)
	receiverName, receiverType, pointer := extractReceiver(receiverNode, source)

	typeParams := nodeText(node.ChildByFieldName("type_parameters"), source)
	params := nodeText(node.ChildByFieldName("parameters"), source)
	results := nodeText(node.ChildByFieldName("result"), source)

	fullName := methodName
	if receiverType != "" {
		fullName = receiverType + "." + methodName
	}

	signature := buildSignature("func "+receiverText+" "+methodName, typeParams, params, results)
	start, end := lineSpan(node)

	d := &lang.Declaration{
		Kind:       lang.KindMethod,
		Name:       fullName,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    end,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
		Signature:  signature,
		Params:     sigparse.ParseGoParams(signature),
		Results:    results,
		TypeParams: typeParams,
		Receiver: &lang.Receiver{
			Name:    receiverName,
			Type:    receiverType,
			Pointer: pointer,
		},
	}
	setBodySpan(d, node)
	return d, nil
}

func buildSignature(head, typeParams, params, results string) string {
	var b strings.Builder
	b.WriteString(head)
	if typeParams != "" {
		b.WriteString(typeParams)
	}
	b.WriteString(params)
	if results != "" {
		b.WriteString(" ")
		b.WriteString(results)
	}
	return b.String()
}

func setBodySpan(d *lang.Declaration, node *sitter.Node) {
	if body := node.ChildByFieldName("body"); body != nil {
		d.BodyStart = int(body.StartPoint().Row) + 1
		d.BodyEnd = int(body.EndPoint().Row) + 1
		return
	}
	d.BodyStart, d.BodyEnd = d.StartLine, d.EndLine
}

// extractReceiver decomposes a method's receiver parameter into
// (name, type, pointer?). Structure: parameter_list > parameter_declaration
// > type.
func extractReceiver(receiverNode *sitter.Node, source []byte) (name, typ string, pointer bool) {
	if receiverNode == nil {
		return "", "", false
	}
	for i := 0; i < int(receiverNode.ChildCount()); i++ {
		child := receiverNode.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		if nameNode := child.ChildByFieldName("name"); nameNode != nil {
			name = nodeText(nameNode, source)
		}
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			pointer = typeNode.Type() == "pointer_type"
			typ = baseTypeName(typeNode, source)
		}
	}
	return name, typ, pointer
}

// baseTypeName extracts the base type name, unwrapping pointer, generic,
// and package-qualified type expressions: *Server -> Server, Server[T] ->
// Server, pkg.Server -> Server.
func baseTypeName(typeNode *sitter.Node, source []byte) string {
	if typeNode == nil {
		return ""
	}
	switch typeNode.Type() {
	case "pointer_type":
		for i := 0; i < int(typeNode.ChildCount()); i++ {
			if child := typeNode.Child(i); child.Type() != "*" {
				return baseTypeName(child, source)
			}
		}
	case "generic_type":
		if nameNode := typeNode.ChildByFieldName("type"); nameNode != nil {
			return nodeText(nameNode, source)
		}
	case "qualified_type":
		for i := 0; i < int(typeNode.ChildCount()); i++ {
			if child := typeNode.Child(i); child.Type() == "type_identifier" {
				return nodeText(child, source)
			}
		}
	case "type_identifier":
		return nodeText(typeNode, source)
	}

	name := nodeText(typeNode, source)
	name = strings.TrimPrefix(name, "*")
	if idx := strings.Index(name, "["); idx > 0 {
		name = name[:idx]
	}
	return name
}

func extractTypeDeclaration(node *sitter.Node, source []byte, filePath string) []lang.Declaration {
	var out []lang.Declaration
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_spec":
			if d := extractTypeSpec(child, source, filePath); d != nil {
				out = append(out, *d)
			}
		case "type_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				if spec := child.Child(j); spec.Type() == "type_spec" {
					if d := extractTypeSpec(spec, source, filePath); d != nil {
						out = append(out, *d)
					}
				}
			}
		}
	}
	return out
}

func extractTypeSpec(node *sitter.Node, source []byte, filePath string) *lang.Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "type_identifier" {
				nameNode = child
				break
			}
		}
	}
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, source)

	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "struct_type", "interface_type", "type_identifier", "pointer_type",
				"array_type", "slice_type", "map_type", "channel_type",
				"function_type", "generic_type":
				typeNode = child
			}
			if typeNode != nil {
				break
			}
		}
	}

	kind, ok := typeKind(typeNode)
	if !ok {
		return nil
	}

	start, end := lineSpan(node)
	d := &lang.Declaration{
		Kind:      lang.KindType,
		Name:      name,
		FilePath:  filePath,
		StartLine: start,
		EndLine:   end,
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
		TypeKind:  kind,
	}

	if kind == lang.TypeStruct && typeNode.Type() == "struct_type" {
		d.Fields = extractStructFields(typeNode, source)
	}
	if kind == lang.TypeInterface && typeNode.Type() == "interface_type" {
		d.Fields = extractInterfaceMethods(typeNode, source)
	}
	return d
}

func typeKind(typeNode *sitter.Node) (lang.TypeKind, bool) {
	if typeNode == nil {
		return 0, false
	}
	switch typeNode.Type() {
	case "struct_type":
		return lang.TypeStruct, true
	case "interface_type":
		return lang.TypeInterface, true
	case "type_identifier", "pointer_type", "array_type", "slice_type",
		"map_type", "channel_type", "function_type", "generic_type":
		return lang.TypeAlias, true
	default:
		return 0, false
	}
}

// extractStructFields yields named fields (embedded/anonymous fields are
// skipped: they have no field_identifier child).
func extractStructFields(structNode *sitter.Node, source []byte) []lang.Field {
	var fields []lang.Field
	for i := 0; i < int(structNode.ChildCount()); i++ {
		list := structNode.Child(i)
		if list.Type() != "field_declaration_list" {
			continue
		}
		for j := 0; j < int(list.ChildCount()); j++ {
			decl := list.Child(j)
			if decl.Type() != "field_declaration" {
				continue
			}
			if f := extractFieldDeclaration(decl, source); f != nil {
				fields = append(fields, *f)
			}
		}
	}
	return fields
}

func extractFieldDeclaration(node *sitter.Node, source []byte) *lang.Field {
	var fieldName string
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "field_identifier" {
			fieldName = nodeText(child, source)
			break
		}
	}
	if fieldName == "" {
		return nil
	}

	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "type_identifier", "pointer_type", "slice_type", "array_type",
				"generic_type", "qualified_type":
				typeNode = child
			}
			if typeNode != nil {
				break
			}
		}
	}
	if typeNode == nil {
		return nil
	}

	return &lang.Field{
		Name: fieldName,
		Type: baseTypeName(typeNode, source),
		Line: int(node.StartPoint().Row) + 1,
	}
}

func extractInterfaceMethods(ifaceNode *sitter.Node, source []byte) []lang.Field {
	var methods []lang.Field
	for i := 0; i < int(ifaceNode.ChildCount()); i++ {
		child := ifaceNode.Child(i)
		if child.Type() != "method_spec" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methods = append(methods, lang.Field{
			Name: nodeText(nameNode, source),
			Type: nodeText(child.ChildByFieldName("parameters"), source),
			Line: int(child.StartPoint().Row) + 1,
		})
	}
	return methods
}

// extractConstOrVar handles both "const Name = value" and "const ( ... )"
// blocks, and their var_declaration equivalents, using const_spec_list /
// var_spec_list the same way type_spec_list groups a type block.
func extractConstOrVar(node *sitter.Node, source []byte, filePath string, kind lang.Kind) []lang.Declaration {
	specType := "const_spec"
	listType := "const_spec_list"
	if kind == lang.KindVariable {
		specType, listType = "var_spec", "var_spec_list"
	}

	var out []lang.Declaration
	collect := func(spec *sitter.Node) {
		out = append(out, extractValueSpec(spec, source, filePath, kind)...)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case specType:
			collect(child)
		case listType:
			for j := 0; j < int(child.ChildCount()); j++ {
				if spec := child.Child(j); spec.Type() == specType {
					collect(spec)
				}
			}
		}
	}
	return out
}

// extractValueSpec handles grouped names in one spec: "a, b = 1, 2" yields
// two declarations, one per name, sharing the spec's declared type (if
// any) and a span over the whole spec (the initializer is not
// separable per-name at the CST level without type-checking).
func extractValueSpec(node *sitter.Node, source []byte, filePath string, kind lang.Kind) []lang.Declaration {
	var names []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "identifier" {
			names = append(names, child)
		}
	}
	if len(names) == 0 {
		return nil
	}

	valueType := ""
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		valueType = nodeText(typeNode, source)
	}

	start, end := lineSpan(node)
	out := make([]lang.Declaration, 0, len(names))
	for _, n := range names {
		out = append(out, lang.Declaration{
			Kind:      kind,
			Name:      nodeText(n, source),
			FilePath:  filePath,
			StartLine: start,
			EndLine:   end,
			StartByte: node.StartByte(),
			EndByte:   node.EndByte(),
			ValueType: valueType,
		})
	}
	return out
}
