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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/lang/golang"
)

const mainSource = `package main

import (
	"fmt"

	"example.com/proj/util"
)

const Retries = 3

type Backend struct {
	db *DB
}

type DB struct{}

func (d *DB) Query(sql string) string {
	return sql
}

func (b *Backend) Handle(sql string) string {
	result := b.db.Query(sql)
	return util.Format(result)
}

func Report() string {
	return fmt.Sprintf("retries=%d", Retries)
}
`

const utilSource = `package util

func Format(s string) string {
	return "[" + s + "]"
}
`

func newTestResolver(t *testing.T) (*Resolver, *SourceFile, *SourceFile) {
	t.Helper()
	mainFile := buildSourceFile(t, "main.go", mainSource)
	utilFile := buildSourceFile(t, "util/util.go", utilSource)

	factory := lang.NewFactory()
	factory.Register(lang.Registration{
		Tag:        lang.Go,
		NewAdapter: golang.NewAdapter,
		Extractor:  golang.NewExtractor(),
		Scanner:    golang.NewScanner(),
	})

	r := NewResolver(factory, []*SourceFile{mainFile, utilFile})
	return r, mainFile, utilFile
}

func findDecl(file *SourceFile, kind lang.Kind, name string) lang.Declaration {
	for _, d := range file.Decls.Declarations {
		if d.Kind == kind && d.Name == name {
			return d
		}
	}
	return lang.Declaration{}
}

func TestResolver_ReceiverMethodAndThirdPartyImportDrop(t *testing.T) {
	r, mainFile, _ := newTestResolver(t)

	handle := findDecl(mainFile, lang.KindMethod, "Backend.Handle")
	require.NotEmpty(t, handle.Name)

	ctx, err := r.Resolve(ResolvedDecl{Decl: handle, File: mainFile}, DefaultResolveConfig())
	require.NoError(t, err)

	var sawQuery, sawFormat bool
	for _, fn := range ctx.Functions {
		if fn.Decl.Name == "DB.Query" {
			sawQuery = true
		}
		if fn.Decl.Name == "Format" {
			sawFormat = true
		}
	}
	assert.True(t, sawQuery, "expected receiver-method dispatch to resolve DB.Query")
	assert.True(t, sawFormat, "expected cross-package call to resolve util.Format")

	var sawUtilImport bool
	for _, imp := range ctx.Imports {
		if imp.Path == "example.com/proj/util" {
			sawUtilImport = true
		}
	}
	assert.True(t, sawUtilImport, "expected the util import to surface even though its symbol resolved first-party")
}

func TestResolver_UnqualifiedConstant(t *testing.T) {
	r, mainFile, _ := newTestResolver(t)

	report := findDecl(mainFile, lang.KindFunction, "Report")
	require.NotEmpty(t, report.Name)

	ctx, err := r.Resolve(ResolvedDecl{Decl: report, File: mainFile}, DefaultResolveConfig())
	require.NoError(t, err)

	var sawRetries bool
	for _, c := range ctx.Constants {
		if c.Decl.Name == "Retries" {
			sawRetries = true
		}
	}
	assert.True(t, sawRetries, "expected unqualified reference to resolve the package constant")

	var sawFmtImport bool
	for _, imp := range ctx.Imports {
		if imp.Path == "fmt" {
			sawFmtImport = true
		}
	}
	assert.True(t, sawFmtImport, "expected fmt import to surface as touched even though it is third-party")
}

func TestResolver_DepthBoundTruncates(t *testing.T) {
	chainSrc := `package chain

func A() int {
	return B()
}

func B() int {
	return C()
}

func C() int {
	return D()
}

func D() int {
	return 1
}
`
	file := buildSourceFile(t, "chain.go", chainSrc)

	factory := lang.NewFactory()
	factory.Register(lang.Registration{
		Tag:        lang.Go,
		NewAdapter: golang.NewAdapter,
		Extractor:  golang.NewExtractor(),
		Scanner:    golang.NewScanner(),
	})
	r := NewResolver(factory, []*SourceFile{file})

	seed := findDecl(file, lang.KindFunction, "A")
	ctx, err := r.Resolve(ResolvedDecl{Decl: seed, File: file}, ResolveConfig{MaxDepth: 1, FirstPartyOnly: true})
	require.NoError(t, err)
	assert.True(t, ctx.DepthTruncated, "expected a chain longer than MaxDepth to be marked truncated")

	var sawB, sawC bool
	for _, fn := range ctx.Functions {
		if fn.Decl.Name == "B" {
			sawB = true
		}
		if fn.Decl.Name == "C" {
			sawC = true
		}
	}
	assert.True(t, sawB, "expected the first hop to resolve")
	assert.False(t, sawC, "expected the second hop to be cut off by the depth bound")
}

func TestResolver_CycleGuardTerminates(t *testing.T) {
	aSrc := `package cyc

func A() int {
	return B()
}
`
	bSrc := `package cyc

func B() int {
	return A()
}
`
	aFile := buildSourceFile(t, "a.go", aSrc)
	bFile := buildSourceFile(t, "b.go", bSrc)

	factory := lang.NewFactory()
	factory.Register(lang.Registration{
		Tag:        lang.Go,
		NewAdapter: golang.NewAdapter,
		Extractor:  golang.NewExtractor(),
		Scanner:    golang.NewScanner(),
	})

	r := NewResolver(factory, []*SourceFile{aFile, bFile})
	seed := findDecl(aFile, lang.KindFunction, "A")

	done := make(chan struct{})
	var ctx *SemanticContext
	var err error
	go func() {
		ctx, err = r.Resolve(ResolvedDecl{Decl: seed, File: aFile}, DefaultResolveConfig())
		close(done)
	}()
	<-done

	require.NoError(t, err)
	require.NotNil(t, ctx)

	var sawB bool
	for _, fn := range ctx.Functions {
		if fn.Decl.Name == "B" {
			sawB = true
		}
	}
	assert.True(t, sawB, "expected mutual recursion to resolve the other function exactly once")
}
