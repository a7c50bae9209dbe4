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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/lang/golang"
)

const locatorSource = `package sample

const Threshold = 3

type Config struct {
	Name string
}

func Add(a, b int) int {
	return a + b
}

func Sub(a, b int) int {
	return a - b
}
`

func buildSourceFile(t *testing.T, path, src string) *SourceFile {
	t.Helper()
	adapter := golang.NewAdapter()
	tree, err := adapter.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	extractor := golang.NewExtractor()
	decls, err := extractor.Extract(tree, []byte(src), path)
	require.NoError(t, err)

	return &SourceFile{
		Path:  path,
		Text:  []byte(src),
		Tree:  tree,
		Lang:  lang.Go,
		Decls: decls,
	}
}

func lineOf(src, needle string) int {
	line := 1
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			line++
		}
		if i+len(needle) <= len(src) && src[i:i+len(needle)] == needle {
			return line
		}
	}
	return 0
}

func TestLocateChanges_FunctionEdit(t *testing.T) {
	file := buildSourceFile(t, "sample.go", locatorSource)

	line := lineOf(locatorSource, "return a + b")
	hunks := []Hunk{{NewStart: line, NewEnd: line + 1}}

	functions, freeStanding := LocateChanges(file, hunks)
	require.Len(t, functions, 1)
	require.Empty(t, freeStanding)
	require.Equal(t, "Add", functions[0].Name)
}

func TestLocateChanges_FreeStandingEdit(t *testing.T) {
	file := buildSourceFile(t, "sample.go", locatorSource)

	line := lineOf(locatorSource, "const Threshold")
	hunks := []Hunk{{NewStart: line, NewEnd: line + 1}}

	functions, freeStanding := LocateChanges(file, hunks)
	require.Empty(t, functions)
	require.Len(t, freeStanding, 1)
	require.Equal(t, "Threshold", freeStanding[0].Decl.Name)
}

func TestLocateChanges_DedupBySpan(t *testing.T) {
	file := buildSourceFile(t, "sample.go", locatorSource)

	addLine := lineOf(locatorSource, "func Add")
	returnLine := lineOf(locatorSource, "return a + b")
	hunks := []Hunk{
		{NewStart: addLine, NewEnd: addLine + 1},
		{NewStart: returnLine, NewEnd: returnLine + 1},
	}

	functions, _ := LocateChanges(file, hunks)
	require.Len(t, functions, 1)
}

func TestLocateChanges_NoIntersection(t *testing.T) {
	file := buildSourceFile(t, "sample.go", locatorSource)

	hunks := []Hunk{{NewStart: 1000, NewEnd: 1001}}
	functions, freeStanding := LocateChanges(file, hunks)
	require.Empty(t, functions)
	require.Empty(t, freeStanding)
}
