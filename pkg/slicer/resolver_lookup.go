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
	"sort"
	"strings"

	"github.com/kraklabs/slicer/pkg/lang"
)

// resolveReference attempts to resolve one candidate reference to a
// declaration in the model set. Returns (entry, nil, _) on success, (nil,
// unresolved, _) when the reference is recorded as a dangling reference, or
// (nil, nil, _) when the reference is silently dropped — third-party via a
// known import, a builtin, or a local binding this syntactic resolver
// cannot type (Non-goal: no type inference). The third return value is the
// import the reference's qualifier matched, if any — reported even when
// resolution within that import's package fails or the package turns out
// to be third-party, so the caller still surfaces the import.
func (r *Resolver) resolveReference(ref lang.Reference, caller declEntry) (*declEntry, *UnresolvedRef, *lang.Import) {
	if ref.Qualifier != "" {
		return r.resolveQualified(ref, caller)
	}
	return r.resolveUnqualified(ref, caller)
}

func (r *Resolver) resolveQualified(ref lang.Reference, caller declEntry) (*declEntry, *UnresolvedRef, *lang.Import) {
	imp, foundImport := findImport(caller.file.Decls.Imports, ref.Qualifier)

	if foundImport {
		if files, ok := r.byPackage[packageNameOf(imp.Path)]; ok && len(files) > 0 {
			if entry := r.lookupInPackage(packageNameOf(imp.Path), ref); entry != nil {
				return entry, nil, &imp
			}
			return nil, &UnresolvedRef{
				Name:     ref.Qualifier + "." + ref.Name,
				FilePath: caller.file.Path,
				Line:     ref.Line,
			}, &imp
		}
		// Known import, not present in the model set: third-party, drop
		// without recursing. It still surfaces in the rendered imports
		// block via the owning file's import list.
		return nil, nil, &imp
	}

	// Not an import alias: try receiver-method / parameter-typed dispatch.
	// x.Foo() where x is the method receiver or a parameter of caller.
	if ref.IsCall {
		if recvType, ok := callerBindingType(caller.decl, ref.Qualifier); ok {
			if methods, ok := r.methodSet[recvType]; ok {
				if cands := methods[ref.Name]; len(cands) > 0 {
					return pickDeterministic(cands, caller), nil, nil
				}
			}
			// Receiver type known but no such method in the model set:
			// ambiguous between "truly unresolved" and "method defined on
			// an embedded/external type" — conservatively drop, since a
			// false positive here is noisier than a missed true positive.
			return nil, nil, nil
		}
	}

	// Qualifier matches neither an import nor a known local binding:
	// genuinely unresolved (mirrors "ext.Foo" where ext is not in the
	// model set and was never even imported).
	return nil, &UnresolvedRef{
		Name:     ref.Qualifier + "." + ref.Name,
		FilePath: caller.file.Path,
		Line:     ref.Line,
	}, nil
}

func (r *Resolver) resolveUnqualified(ref lang.Reference, caller declEntry) (*declEntry, *UnresolvedRef, *lang.Import) {
	var candidates []declEntry
	if ref.IsCall {
		candidates = r.funcsByName[ref.Name]
	} else {
		candidates = append(candidates, r.typesByName[ref.Name]...)
		candidates = append(candidates, r.constsByName[ref.Name]...)
	}

	if len(candidates) == 0 {
		if ref.IsCall && !isBuiltinFunc(ref.Name) && ref.Name != caller.decl.Name {
			return nil, &UnresolvedRef{Name: ref.Name, FilePath: caller.file.Path, Line: ref.Line}, nil
		}
		return nil, nil, nil
	}

	return pickDeterministic(candidates, caller), nil, nil
}

// pickDeterministic applies the tie-break precedence: same file first,
// then other files of the same package, then other first-party packages;
// remaining ties broken by (package, file path, start line).
func pickDeterministic(candidates []declEntry, caller declEntry) *declEntry {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ra, rb := rank(a, caller), rank(b, caller)
		if ra != rb {
			return ra < rb
		}
		pa, pb := a.file.Decls.PackageName, b.file.Decls.PackageName
		if pa != pb {
			return pa < pb
		}
		if a.file.Path != b.file.Path {
			return a.file.Path < b.file.Path
		}
		return a.decl.StartLine < b.decl.StartLine
	})
	out := candidates[0]
	return &out
}

func rank(e declEntry, caller declEntry) int {
	switch {
	case e.file.Path == caller.file.Path:
		return 0
	case e.file.Decls.PackageName == caller.file.Decls.PackageName:
		return 1
	default:
		return 2
	}
}

func (r *Resolver) lookupInPackage(pkg string, ref lang.Reference) *declEntry {
	var candidates []declEntry
	if ref.IsCall {
		for _, e := range r.funcsByName[ref.Name] {
			if e.file.Decls.PackageName == pkg {
				candidates = append(candidates, e)
			}
		}
	} else {
		for _, e := range r.typesByName[ref.Name] {
			if e.file.Decls.PackageName == pkg {
				candidates = append(candidates, e)
			}
		}
		for _, e := range r.constsByName[ref.Name] {
			if e.file.Decls.PackageName == pkg {
				candidates = append(candidates, e)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].file.Path != candidates[j].file.Path {
			return candidates[i].file.Path < candidates[j].file.Path
		}
		return candidates[i].decl.StartLine < candidates[j].decl.StartLine
	})
	return &candidates[0]
}

// callerBindingType reports the normalized type of the local binding named
// qualifier within caller: its receiver, or one of its parameters. This is
// the full extent of "type inference" this syntactic resolver performs —
// anything beyond (locals introduced by :=, loop variables) is out of
// reach by design (Non-goal: type inference).
func callerBindingType(decl lang.Declaration, qualifier string) (string, bool) {
	if decl.Receiver != nil && decl.Receiver.Name == qualifier {
		return decl.Receiver.Type, true
	}
	for _, p := range decl.Params {
		if p.Name == qualifier {
			return p.Type, true
		}
	}
	return "", false
}

// findImport matches qualifier against a file's imports by alias first,
// then by the import path's final path component (the Go default package
// name when no alias is given).
func findImport(imports []lang.Import, qualifier string) (lang.Import, bool) {
	for _, imp := range imports {
		if imp.Alias != "" && imp.Alias == qualifier {
			return imp, true
		}
	}
	for _, imp := range imports {
		if imp.Alias == "" && packageNameOf(imp.Path) == qualifier {
			return imp, true
		}
	}
	return lang.Import{}, false
}

func packageNameOf(importPath string) string {
	if idx := strings.LastIndex(importPath, "/"); idx >= 0 {
		return importPath[idx+1:]
	}
	return importPath
}

var goBuiltinFuncs = map[string]bool{
	"make": true, "new": true, "append": true, "copy": true, "delete": true,
	"len": true, "cap": true, "close": true, "panic": true, "recover": true,
	"print": true, "println": true, "complex": true, "real": true, "imag": true,
	"min": true, "max": true, "clear": true,
}

func isBuiltinFunc(name string) bool { return goBuiltinFuncs[name] }
