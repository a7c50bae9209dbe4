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
)

func TestScanner_CallAndTypeReferences(t *testing.T) {
	adapter := NewAdapter()
	src := []byte(sampleSource)
	tree, err := adapter.Parse(context.Background(), src)
	require.NoError(t, err)

	scanner := NewScanner()
	refs := scanner.ScanReferences(tree, src, 0, uint32(len(src)))

	var sawAdd, sawQualifiedCall, sawReceiverCall bool
	for _, r := range refs {
		switch {
		case r.Name == "Sprintf" && r.Qualifier == "fmt":
			sawAdd = true
		case r.Name == "ToUpper" && r.Qualifier == "str":
			sawQualifiedCall = true
		case r.Name == "Query" && r.Qualifier == "b" && r.IsCall:
			sawReceiverCall = true
		}
	}
	assert.True(t, sawAdd, "expected fmt.Sprintf call reference")
	assert.True(t, sawQualifiedCall, "expected str.ToUpper call reference (aliased import)")
	assert.True(t, sawReceiverCall, "expected b.db.Query call reference rooted at its leftmost identifier")
}

func TestScanner_BoundedBySpan(t *testing.T) {
	adapter := NewAdapter()
	src := []byte(sampleSource)
	tree, err := adapter.Parse(context.Background(), src)
	require.NoError(t, err)

	scanner := NewScanner()
	refs := scanner.ScanReferences(tree, src, 0, 1)
	assert.Empty(t, refs)
}
