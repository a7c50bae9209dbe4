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
	"fmt"

	"github.com/kraklabs/slicer/pkg/lang"
	"github.com/kraklabs/slicer/pkg/slicer/errs"
)

// ResolveConfig mirrors the spec's flat runtime-options record: named
// fields, each with a documented default, no ambient/global state.
type ResolveConfig struct {
	// MaxDepth is the maximum length of any chain from the seed to a
	// resolved dependency. Default 5.
	MaxDepth int
	// FirstPartyOnly restricts resolution to packages present in the
	// model set; the spec names no other mode, but the field is kept
	// explicit rather than hardcoded so a future caller can observe the
	// default instead of guessing it.
	FirstPartyOnly bool
}

// DefaultResolveConfig returns the spec's documented defaults.
func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{MaxDepth: 5, FirstPartyOnly: true}
}

type declEntry struct {
	decl lang.Declaration
	file *SourceFile
}

// visitKey is the resolver's sole cycle guard: (file path, identifier,
// declaration kind).
type visitKey struct {
	filePath string
	name     string
	kind     lang.Kind
}

// Resolver computes, for one seed declaration at a time, the transitive
// first-party dependency closure across a fixed set of source-file
// models. One Resolver may be reused across many Resolve calls against the
// same model set; each call's visited set and queue are local to that
// call, per the spec's "thread-local to one resolution" sharing rule.
type Resolver struct {
	factory *lang.Factory
	files   []*SourceFile

	byPackage    map[string][]*SourceFile
	funcsByName  map[string][]declEntry // same-file and same-package are filtered from this at lookup time
	typesByName  map[string][]declEntry
	constsByName map[string][]declEntry
	methodSet    map[string]map[string][]declEntry // receiver type -> method name -> entries
}

// NewResolver builds the package/name indexes the resolution algorithm
// needs from a fixed set of source-file models. Grounded on the teacher's
// CallResolver.BuildIndex: one index build per run, read-only afterward.
func NewResolver(factory *lang.Factory, files []*SourceFile) *Resolver {
	r := &Resolver{
		factory:      factory,
		files:        files,
		byPackage:    make(map[string][]*SourceFile),
		funcsByName:  make(map[string][]declEntry),
		typesByName:  make(map[string][]declEntry),
		constsByName: make(map[string][]declEntry),
		methodSet:    make(map[string]map[string][]declEntry),
	}

	for _, f := range files {
		pkg := f.Decls.PackageName
		r.byPackage[pkg] = append(r.byPackage[pkg], f)

		for _, d := range f.Decls.Declarations {
			entry := declEntry{decl: d, file: f}
			switch d.Kind {
			case lang.KindFunction:
				r.funcsByName[d.Name] = append(r.funcsByName[d.Name], entry)
			case lang.KindMethod:
				if d.Receiver == nil {
					continue
				}
				simple := simpleMethodName(d.Name)
				if r.methodSet[d.Receiver.Type] == nil {
					r.methodSet[d.Receiver.Type] = make(map[string][]declEntry)
				}
				r.methodSet[d.Receiver.Type][simple] = append(r.methodSet[d.Receiver.Type][simple], entry)
			case lang.KindType:
				r.typesByName[d.Name] = append(r.typesByName[d.Name], entry)
			case lang.KindConstant, lang.KindVariable:
				r.constsByName[d.Name] = append(r.constsByName[d.Name], entry)
			}
		}
	}

	return r
}

func simpleMethodName(fullName string) string {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '.' {
			return fullName[i+1:]
		}
	}
	return fullName
}

// Resolve computes the semantic context for one seed. Algorithm per the
// dependency-resolution design: a worklist seeded at depth 0, a visited
// set keyed by (file, identifier, kind) as the sole cycle guard, bounded
// by cfg.MaxDepth.
func (r *Resolver) Resolve(seed ResolvedDecl, cfg ResolveConfig) (*SemanticContext, error) {
	if cfg.MaxDepth <= 0 {
		cfg = DefaultResolveConfig()
	}

	ctx := &SemanticContext{Seed: seed}
	visited := make(map[visitKey]bool)

	type queued struct {
		entry declEntry
		depth int
	}
	queue := []queued{{entry: declEntry{decl: seed.Decl, file: seed.File}, depth: 0}}

	usedImports := make(map[string]lang.Import) // dedup key -> import

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		key := visitKey{filePath: cur.entry.file.Path, name: cur.entry.decl.Name, kind: cur.entry.decl.Kind}
		if visited[key] {
			continue
		}
		visited[key] = true

		if cur.entry.decl.StartByte >= cur.entry.decl.EndByte || int(cur.entry.decl.EndByte) > len(cur.entry.file.Text) {
			return nil, &errs.Error{Kind: errs.InternalInvariant, Path: cur.entry.file.Path,
				Msg: fmt.Sprintf("declaration %q span out of bounds", cur.entry.decl.Name)}
		}

		if cur.entry.decl.Name != seed.Decl.Name || cur.entry.file.Path != seed.File.Path {
			bucket(ctx, cur.entry)
		}

		scanner, ok := r.factory.Scanner(cur.entry.file.Lang)
		if !ok {
			continue
		}
		refs := scanner.ScanReferences(cur.entry.file.Tree, cur.entry.file.Text, cur.entry.decl.StartByte, cur.entry.decl.EndByte)

		for _, ref := range refs {
			resolved, unresolved, touchedImport := r.resolveReference(ref, cur.entry)
			if touchedImport != nil {
				usedImports[touchedImport.Path+"|"+touchedImport.Alias] = *touchedImport
			}
			if unresolved != nil {
				ctx.Unresolved = append(ctx.Unresolved, *unresolved)
				continue
			}
			if resolved == nil {
				continue
			}
			ctx.Edges = append(ctx.Edges, DeclEdge{
				From: declKey(cur.entry.decl, cur.entry.file.Path),
				To:   declKey(resolved.decl, resolved.file.Path),
			})
			if cur.depth+1 > cfg.MaxDepth {
				ctx.DepthTruncated = true
				continue
			}
			nk := visitKey{filePath: resolved.file.Path, name: resolved.decl.Name, kind: resolved.decl.Kind}
			if visited[nk] {
				continue
			}
			queue = append(queue, queued{entry: *resolved, depth: cur.depth + 1})
		}
	}

	ctx.Imports = minimalImports(usedImports)
	return ctx, nil
}

func bucket(ctx *SemanticContext, entry declEntry) {
	rd := ResolvedDecl{Decl: entry.decl, File: entry.file}
	switch entry.decl.Kind {
	case lang.KindType:
		ctx.Types = append(ctx.Types, rd)
	case lang.KindFunction, lang.KindMethod:
		ctx.Functions = append(ctx.Functions, rd)
	case lang.KindConstant, lang.KindVariable:
		ctx.Constants = append(ctx.Constants, rd)
	}
}

// minimalImports flattens the set of imports actually touched while
// resolving references — by alias or package name within the collected
// declaration spans — into a slice. Deduplication is already guaranteed by
// the map key (path|alias); the renderer sorts the result for display.
func minimalImports(used map[string]lang.Import) []lang.Import {
	out := make([]lang.Import, 0, len(used))
	for _, imp := range used {
		out = append(out, imp)
	}
	return out
}
