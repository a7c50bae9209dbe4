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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/slicer/pkg/lang"
)

const sampleSource = `package sample

import (
	"fmt"
	str "strings"
)

// Threshold bounds retry counts.
const Threshold = 3

var globalCount int

type Backend struct {
	db *DB
}

type DB struct{}

type Greeter interface {
	Greet(name string) string
}

func (d *DB) Query(sql string) string {
	return sql
}

func (b *Backend) Query(sql string) string {
	return b.db.Query(sql)
}

func Add(a, b int) int {
	return a + b
}

func Shout(name string) string {
	return str.ToUpper(fmt.Sprintf("hello %s", name))
}
`

func parseSample(t *testing.T) (*lang.DeclarationSet, []byte) {
	t.Helper()
	adapter := NewAdapter()
	tree, err := adapter.Parse(context.Background(), []byte(sampleSource))
	require.NoError(t, err)

	extractor := NewExtractor()
	decls, err := extractor.Extract(tree, []byte(sampleSource), "sample.go")
	require.NoError(t, err)
	return &decls, []byte(sampleSource)
}

func TestExtractor_PackageAndImports(t *testing.T) {
	decls, _ := parseSample(t)
	assert.Equal(t, "sample", decls.PackageName)
	require.Len(t, decls.Imports, 2)
	assert.Equal(t, "fmt", decls.Imports[0].Path)
	assert.Equal(t, lang.AliasNone, decls.Imports[0].AliasKind)
	assert.Equal(t, "strings", decls.Imports[1].Path)
	assert.Equal(t, "str", decls.Imports[1].Alias)
	assert.Equal(t, lang.AliasNamed, decls.Imports[1].AliasKind)
}

func TestExtractor_Functions(t *testing.T) {
	decls, _ := parseSample(t)
	var add *lang.Declaration
	for i := range decls.Declarations {
		if decls.Declarations[i].Kind == lang.KindFunction && decls.Declarations[i].Name == "Add" {
			add = &decls.Declarations[i]
		}
	}
	require.NotNil(t, add)
	require.Len(t, add.Params, 2)
	assert.Equal(t, "a", add.Params[0].Name)
	assert.Equal(t, "int", add.Params[0].Type)
	assert.Equal(t, "int", add.Results)
}

func TestExtractor_Methods(t *testing.T) {
	decls, _ := parseSample(t)
	var query *lang.Declaration
	for i := range decls.Declarations {
		d := decls.Declarations[i]
		if d.Kind == lang.KindMethod && d.Name == "Backend.Query" {
			query = &decls.Declarations[i]
		}
	}
	require.NotNil(t, query)
	require.NotNil(t, query.Receiver)
	assert.Equal(t, "b", query.Receiver.Name)
	assert.True(t, query.Receiver.Pointer)
	assert.Equal(t, "Backend", query.Receiver.Type)
}

func TestExtractor_TypesAndInterfaceMethods(t *testing.T) {
	decls, _ := parseSample(t)
	var backend, greeter *lang.Declaration
	for i := range decls.Declarations {
		d := &decls.Declarations[i]
		switch {
		case d.Kind == lang.KindType && d.Name == "Backend":
			backend = d
		case d.Kind == lang.KindType && d.Name == "Greeter":
			greeter = d
		}
	}
	require.NotNil(t, backend)
	assert.Equal(t, lang.TypeStruct, backend.TypeKind)
	require.Len(t, backend.Fields, 1)
	assert.Equal(t, "db", backend.Fields[0].Name)

	require.NotNil(t, greeter)
	assert.Equal(t, lang.TypeInterface, greeter.TypeKind)
	require.Len(t, greeter.Fields, 1)
	assert.Equal(t, "Greet", greeter.Fields[0].Name)
}

func TestExtractor_ConstAndVar(t *testing.T) {
	decls, _ := parseSample(t)
	var threshold, count *lang.Declaration
	for i := range decls.Declarations {
		d := &decls.Declarations[i]
		switch {
		case d.Kind == lang.KindConstant && d.Name == "Threshold":
			threshold = d
		case d.Kind == lang.KindVariable && d.Name == "globalCount":
			count = d
		}
	}
	require.NotNil(t, threshold)
	require.NotNil(t, count)
}
