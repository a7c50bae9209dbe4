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

// Kind discriminates the tagged union a Declaration carries. Downcasting on
// a Declaration is always a switch over Kind, never a Go type assertion.
type Kind int

const (
	KindFunction Kind = iota
	KindMethod
	KindType
	KindConstant
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindType:
		return "type"
	case KindConstant:
		return "constant"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// TypeKind further classifies a KindType declaration.
type TypeKind int

const (
	TypeStruct TypeKind = iota
	TypeInterface
	TypeAlias
	TypeEnumLike
)

// Param is a single parameter or field: a name and its type as written in
// source, never resolved to a declaration here.
type Param struct {
	Name string
	Type string
}

// Receiver binds the instance a method is invoked on. Lang-G specific.
type Receiver struct {
	Name    string
	Type    string // normalized: leading "*" stripped, generics stripped
	Pointer bool
}

// Field is a struct field or interface method signature, carried as a
// string type for later normalized-type matching.
type Field struct {
	Name string
	Type string
	Line int
}

// Declaration is a named top-level (or method-level) construct with a
// contiguous source span: the Go-native rendering of the spec's tagged
// union over {Function, Method, Type, Constant, Variable}. One struct, one
// Kind discriminant field, per-kind optional fields below left zero when
// inapplicable.
type Declaration struct {
	Kind Kind

	Name        string // simple name; for methods, "Receiver.Method"
	PackageName string
	FilePath    string

	StartLine, EndLine int // 1-based, inclusive
	StartByte, EndByte uint32

	// Function / Method fields.
	Signature    string
	Params       []Param
	Results      string
	TypeParams   string // generic parameter list, verbatim
	Receiver     *Receiver
	BodyStart    int
	BodyEnd      int

	// Type fields.
	TypeKind TypeKind
	Fields   []Field // struct fields or interface method set

	// Constant / Variable fields.
	ValueType string // declared type, empty if inferred
}

// Import is one entry of a Lang-G file's ordered import list.
type AliasKind int

const (
	AliasNone AliasKind = iota
	AliasNamed
	AliasBlank
	AliasDot
)

type Import struct {
	Path      string
	Alias     string
	AliasKind AliasKind
	StartLine int
}

// DeclarationSet is the bag of declarations a Language info extractor
// yields for one file, plus its package name and imports.
type DeclarationSet struct {
	PackageName  string
	Imports      []Import
	Declarations []Declaration
	Warnings     []string // ExtractionWarning messages for unparseable subtrees
}
