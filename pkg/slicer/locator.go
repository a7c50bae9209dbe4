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

import "github.com/kraklabs/slicer/pkg/lang"

// FreeStandingEdit marks a changed line that falls outside any function or
// method body — a top-level type, constant, or variable edit. It is fed
// into the resolver directly, as a seed, exactly like a function seed.
type FreeStandingEdit struct {
	Decl lang.Declaration
}

// LocateChanges returns the ordered list of function/method declarations
// in file whose [StartLine,EndLine] intersects the union of hunks' new
// ranges, deduplicated by span. Top-level changes outside any function
// produce a FreeStandingEdit instead (never silently dropped, never
// misattributed to a neighboring declaration).
func LocateChanges(file *SourceFile, hunks []Hunk) (functions []lang.Declaration, freeStanding []FreeStandingEdit) {
	covered := make(map[int]bool) // line -> claimed by some function span

	seen := make(map[[2]int]bool) // dedup by (StartLine, EndLine)
	for _, d := range file.Decls.Declarations {
		if d.Kind != lang.KindFunction && d.Kind != lang.KindMethod {
			continue
		}
		if !intersectsHunks(d.StartLine, d.EndLine, hunks) {
			continue
		}
		key := [2]int{d.StartLine, d.EndLine}
		if seen[key] {
			continue
		}
		seen[key] = true
		functions = append(functions, d)
		for l := d.StartLine; l <= d.EndLine; l++ {
			covered[l] = true
		}
	}

	for _, d := range file.Decls.Declarations {
		if d.Kind == lang.KindFunction || d.Kind == lang.KindMethod {
			continue
		}
		if !intersectsHunks(d.StartLine, d.EndLine, hunks) {
			continue
		}
		if lineRangeCovered(d.StartLine, d.EndLine, covered) {
			continue
		}
		freeStanding = append(freeStanding, FreeStandingEdit{Decl: d})
	}

	return functions, freeStanding
}

func intersectsHunks(start, end int, hunks []Hunk) bool {
	for line := start; line <= end; line++ {
		if AnyNewRangeContains(hunks, line) {
			return true
		}
	}
	return false
}

func lineRangeCovered(start, end int, covered map[int]bool) bool {
	for l := start; l <= end; l++ {
		if covered[l] {
			return true
		}
	}
	return false
}
