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

package gitsource

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitRunner struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeGitRunner) RepoPath() string { return "/repo" }

func (f *fakeGitRunner) Run(ctx context.Context, args ...string) (string, error) {
	key := fmt.Sprint(args)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.responses[key], nil
}

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -10,2 +10,3 @@ func Handle() {
-	old line
+	new line one
+	new line two
diff --git a/util.go b/util.go
index 3333333..4444444 100644
--- a/util.go
+++ b/util.go
@@ -5 +5 @@ func Format() {
-old
+new
`

func TestParseUnifiedDiff_MultipleFilesAndHunks(t *testing.T) {
	changes := parseUnifiedDiff(sampleDiff)
	require.Len(t, changes, 2)

	assert.Equal(t, "main.go", changes[0].Path)
	require.Len(t, changes[0].Hunks, 1)
	h := changes[0].Hunks[0]
	assert.Equal(t, 10, h.OldStart)
	assert.Equal(t, 12, h.OldEnd)
	assert.Equal(t, 10, h.NewStart)
	assert.Equal(t, 13, h.NewEnd)

	assert.Equal(t, "util.go", changes[1].Path)
	require.Len(t, changes[1].Hunks, 1)
	h2 := changes[1].Hunks[0]
	assert.Equal(t, 5, h2.OldStart)
	assert.Equal(t, 6, h2.OldEnd)
	assert.Equal(t, 5, h2.NewStart)
	assert.Equal(t, 6, h2.NewEnd)
}

func TestParseUnifiedDiff_DeletedFileSkipped(t *testing.T) {
	diff := `diff --git a/removed.go b/removed.go
deleted file mode 100644
index 1111111..0000000
--- a/removed.go
+++ /dev/null
@@ -1,2 +0,0 @@
-line one
-line two
`
	changes := parseUnifiedDiff(diff)
	assert.Empty(t, changes)
}

func TestParseHunkHeader_DefaultsCountToOne(t *testing.T) {
	h, ok := parseHunkHeader("@@ -5 +5 @@ func Format() {")
	require.True(t, ok)
	assert.Equal(t, 5, h.OldStart)
	assert.Equal(t, 6, h.OldEnd)
	assert.Equal(t, 5, h.NewStart)
	assert.Equal(t, 6, h.NewEnd)
}

func TestParseHunkHeader_Malformed(t *testing.T) {
	_, ok := parseHunkHeader("not a hunk header")
	assert.False(t, ok)
}

func TestParseRange(t *testing.T) {
	start, count, ok := parseRange("-10,2")
	require.True(t, ok)
	assert.Equal(t, 10, start)
	assert.Equal(t, 2, count)

	start, count, ok = parseRange("+7")
	require.True(t, ok)
	assert.Equal(t, 7, start)
	assert.Equal(t, 1, count)

	_, _, ok = parseRange("garbage")
	assert.False(t, ok)
}

func TestSource_Changes_FallsBackToEmptyTreeForFirstCommit(t *testing.T) {
	runner := &fakeGitRunner{
		responses: map[string]string{},
		errs: map[string]error{
			"[rev-parse abc123^]": fmt.Errorf("unknown revision"),
		},
	}
	runner.responses["[diff -U0 --no-color "+emptyTreeSHA+" abc123]"] = sampleDiff

	src := New(runner)
	changes, err := src.Changes(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, changes, 2)
}

func TestSource_Changes_UsesResolvedParent(t *testing.T) {
	runner := &fakeGitRunner{
		responses: map[string]string{
			"[rev-parse def456^]": "parent789\n",
		},
		errs: map[string]error{},
	}
	runner.responses["[diff -U0 --no-color parent789 def456]"] = sampleDiff

	src := New(runner)
	changes, err := src.Changes(context.Background(), "def456")
	require.NoError(t, err)
	require.Len(t, changes, 2)
}
