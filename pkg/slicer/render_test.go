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

package slicer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/lang/golang"
)

func TestRender_HeaderImportsAndMarker(t *testing.T) {
	r, mainFile, _ := newTestResolver(t)

	handle := findDecl(mainFile, lang.KindMethod, "Backend.Handle")
	require.NotEmpty(t, handle.Name)

	ctx, err := r.Resolve(ResolvedDecl{Decl: handle, File: mainFile}, DefaultResolveConfig())
	require.NoError(t, err)

	line := lineOf(mainSource, "result := b.db.Query(sql)")
	hunks := []Hunk{{NewStart: line, NewEnd: line + 1}}

	out := Render(ctx, hunks, DefaultRenderOptions("abc123"))

	assert.Contains(t, out, "// Generated by slicer for commit abc123")
	assert.Contains(t, out, "Backend.Handle")
	assert.Contains(t, out, `"example.com/proj/util"`)
	assert.Contains(t, out, "result := b.db.Query(sql) // <-- changed")

	importsIdx := strings.Index(out, "import (")
	primaryIdx := strings.Index(out, "func (b *Backend) Handle")
	require.Greater(t, importsIdx, 0)
	require.Greater(t, primaryIdx, importsIdx)
}

func TestRender_CustomMarkerAndHeader(t *testing.T) {
	r, mainFile, _ := newTestResolver(t)
	report := findDecl(mainFile, lang.KindFunction, "Report")
	require.NotEmpty(t, report.Name)

	ctx, err := r.Resolve(ResolvedDecl{Decl: report, File: mainFile}, DefaultResolveConfig())
	require.NoError(t, err)

	line := lineOf(mainSource, `return fmt.Sprintf`)
	hunks := []Hunk{{NewStart: line, NewEnd: line + 1}}

	opts := RenderOptions{Marker: " // EDITED", Header: "// custom header\n"}
	out := Render(ctx, hunks, opts)

	assert.Contains(t, out, "// custom header")
	assert.NotContains(t, out, "Generated by slicer")
	assert.Contains(t, out, "// EDITED")
}

func TestRender_VerbatimByteContentOutsideMarker(t *testing.T) {
	file := buildSourceFile(t, "sample.go", locatorSource)

	factory := lang.NewFactory()
	factory.Register(lang.Registration{
		Tag:        lang.Go,
		NewAdapter: golang.NewAdapter,
		Extractor:  golang.NewExtractor(),
		Scanner:    golang.NewScanner(),
	})
	r := NewResolver(factory, []*SourceFile{file})

	add := findDecl(file, lang.KindFunction, "Add")
	ctx, err := r.Resolve(ResolvedDecl{Decl: add, File: file}, DefaultResolveConfig())
	require.NoError(t, err)

	out := Render(ctx, nil, DefaultRenderOptions("deadbeef"))
	assert.Contains(t, out, "func Add(a, b int) int {")
	assert.Contains(t, out, "\treturn a + b")
}

func TestTopoOrder_TypeBeforeDependentFunction(t *testing.T) {
	r, mainFile, _ := newTestResolver(t)
	handle := findDecl(mainFile, lang.KindMethod, "Backend.Handle")
	ctx, err := r.Resolve(ResolvedDecl{Decl: handle, File: mainFile}, DefaultResolveConfig())
	require.NoError(t, err)

	out := Render(ctx, nil, DefaultRenderOptions("abc"))
	dbTypeIdx := strings.Index(out, "type DB struct")
	dbQueryIdx := strings.Index(out, "func (d *DB) Query")
	require.GreaterOrEqual(t, dbTypeIdx, 0)
	require.GreaterOrEqual(t, dbQueryIdx, 0)
	assert.Less(t, dbTypeIdx, dbQueryIdx, "expected the DB type block to render before the function block")
}
