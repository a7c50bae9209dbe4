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
	"sort"
	"strings"

	"github.com/kraklabs/slicer/pkg/lang"
)

// RenderOptions controls the slice renderer's cosmetic knobs; every field
// has a documented default so a caller can observe it rather than guess.
type RenderOptions struct {
	// Marker is appended to every line whose number falls in a hunk's new
	// range. Default " // <-- changed".
	Marker string
	// Header is a fixed-format template naming the tool, commit, and seed;
	// empty means DefaultHeader is used.
	Header string
	// CommitID is the source commit identifier supplied by the caller.
	CommitID string
}

// DefaultMarker is the marker token used when RenderOptions.Marker is
// empty.
const DefaultMarker = " // <-- changed"

// DefaultRenderOptions returns the spec's documented defaults for a given
// commit id.
func DefaultRenderOptions(commitID string) RenderOptions {
	return RenderOptions{Marker: DefaultMarker, CommitID: commitID}
}

// Render produces the final slice artifact: header comment, imports block,
// type block, constant block, helper-function block, primary-function
// block. Non-primary blocks are topologically sorted by the uses relation
// gathered during resolution; the primary function is emitted verbatim
// from its source span with changed lines marked.
func Render(ctx *SemanticContext, hunks []Hunk, opts RenderOptions) string {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}

	var sb strings.Builder

	writeHeader(&sb, ctx, opts)
	writeImports(&sb, ctx.Imports)

	order := topoOrder(ctx)

	writeDeclBlock(&sb, ctx.Types, order)
	writeDeclBlock(&sb, ctx.Constants, order)
	writeDeclBlock(&sb, ctx.Functions, order)

	writePrimary(&sb, ctx.Seed, hunks, opts.Marker)

	return sb.String()
}

func writeHeader(sb *strings.Builder, ctx *SemanticContext, opts RenderOptions) {
	if opts.Header != "" {
		sb.WriteString(opts.Header)
		if !strings.HasSuffix(opts.Header, "\n") {
			sb.WriteString("\n")
		}
		return
	}
	qualified := ctx.Seed.Decl.Name
	if ctx.Seed.Decl.Receiver != nil {
		qualified = ctx.Seed.Decl.Receiver.Type + "." + simpleMethodName(ctx.Seed.Decl.Name)
	}
	sb.WriteString(fmt.Sprintf("// Generated by slicer for commit %s\n", opts.CommitID))
	sb.WriteString(fmt.Sprintf("// Seed: %s (%s)\n\n", qualified, ctx.Seed.File.Path))
}

func writeImports(sb *strings.Builder, imports []lang.Import) {
	if len(imports) == 0 {
		return
	}
	sorted := make([]lang.Import, len(imports))
	copy(sorted, imports)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	sb.WriteString("import (\n")
	for _, imp := range sorted {
		switch imp.AliasKind {
		case lang.AliasNamed:
			sb.WriteString(fmt.Sprintf("\t%s %q\n", imp.Alias, imp.Path))
		case lang.AliasBlank:
			sb.WriteString(fmt.Sprintf("\t_ %q\n", imp.Path))
		case lang.AliasDot:
			sb.WriteString(fmt.Sprintf("\t. %q\n", imp.Path))
		default:
			sb.WriteString(fmt.Sprintf("\t%q\n", imp.Path))
		}
	}
	sb.WriteString(")\n\n")
}

// topoOrder returns a rank (smaller = earlier) per declKey, computed from
// ctx.Edges by Kahn's algorithm restricted to the nodes ctx actually
// collected. Nodes outside any edge, or involved in a cycle the visited
// set didn't fully unwind, fall back to rank 0 — ties within a rank are
// broken by (file path, start line) at write time, so an imprecise rank
// never produces nondeterministic output, only a coarser grouping.
func topoOrder(ctx *SemanticContext) map[string]int {
	nodes := make(map[string]bool)
	add := func(rd ResolvedDecl) { nodes[declKey(rd.Decl, rd.File.Path)] = true }
	for _, rd := range ctx.Types {
		add(rd)
	}
	for _, rd := range ctx.Functions {
		add(rd)
	}
	for _, rd := range ctx.Constants {
		add(rd)
	}

	indegree := make(map[string]int)
	adj := make(map[string][]string)
	for _, e := range ctx.Edges {
		if !nodes[e.From] || !nodes[e.To] {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		indegree[e.To]++
	}

	rank := make(map[string]int)
	var queue []string
	for n := range nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	level := 0
	for len(queue) > 0 {
		var next []string
		sort.Strings(queue)
		for _, n := range queue {
			rank[n] = level
			for _, to := range adj[n] {
				indegree[to]--
				if indegree[to] == 0 {
					next = append(next, to)
				}
			}
		}
		queue = next
		level++
	}
	for n := range nodes {
		if _, ok := rank[n]; !ok {
			rank[n] = 0
		}
	}
	return rank
}

func writeDeclBlock(sb *strings.Builder, decls []ResolvedDecl, order map[string]int) {
	if len(decls) == 0 {
		return
	}
	sorted := make([]ResolvedDecl, len(decls))
	copy(sorted, decls)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki := declKey(sorted[i].Decl, sorted[i].File.Path)
		kj := declKey(sorted[j].Decl, sorted[j].File.Path)
		ri, rj := order[ki], order[kj]
		if ri != rj {
			return ri < rj
		}
		if sorted[i].File.Path != sorted[j].File.Path {
			return sorted[i].File.Path < sorted[j].File.Path
		}
		return sorted[i].Decl.StartLine < sorted[j].Decl.StartLine
	})

	for _, rd := range sorted {
		writeSpan(sb, rd.File.Text, rd.Decl.StartByte, rd.Decl.EndByte, nil, "")
		sb.WriteString("\n")
	}
}

func writePrimary(sb *strings.Builder, seed ResolvedDecl, hunks []Hunk, marker string) {
	writeSpan(sb, seed.File.Text, seed.Decl.StartByte, seed.Decl.EndByte, hunks, marker)
}

// writeSpan emits source[start:end] verbatim, splitting on newlines so that
// lines intersecting any hunk's new range get marker appended. The byte
// span's line numbers are derived from the declaration's recorded
// StartLine, matched against hunks by that 1-based absolute line number —
// never reformatting the bytes themselves.
func writeSpan(sb *strings.Builder, text []byte, start, end uint32, hunks []Hunk, marker string) {
	if int(end) > len(text) || start >= end {
		return
	}
	span := string(text[start:end])
	lines := strings.Split(span, "\n")

	lineNo := byteOffsetToLine(text, int(start))
	for i, line := range lines {
		if hunks != nil && AnyNewRangeContains(hunks, lineNo+i) {
			sb.WriteString(line)
			sb.WriteString(marker)
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
}

func byteOffsetToLine(text []byte, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return 1 + strings.Count(string(text[:offset]), "\n")
}
