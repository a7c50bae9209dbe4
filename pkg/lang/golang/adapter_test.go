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

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/slicer/pkg/lang"
)

func TestAdapter_ParseAndTag(t *testing.T) {
	adapter := NewAdapter()
	assert.Equal(t, lang.Go, adapter.Tag())

	tree, err := adapter.Parse(context.Background(), []byte(sampleSource))
	require.NoError(t, err)
	require.NotNil(t, tree.RootNode())
	assert.False(t, tree.RootNode().HasError())
}

func TestAdapter_NodeAtAndTextOf(t *testing.T) {
	adapter := NewAdapter()
	tree, err := adapter.Parse(context.Background(), []byte(sampleSource))
	require.NoError(t, err)

	node := adapter.NodeAt(tree, 0, 0)
	require.NotNil(t, node)
	assert.NotEmpty(t, adapter.TextOf(node, []byte(sampleSource)))
}

func TestAdapter_Walk(t *testing.T) {
	adapter := NewAdapter()
	tree, err := adapter.Parse(context.Background(), []byte(sampleSource))
	require.NoError(t, err)

	count := 0
	adapter.Walk(tree.RootNode(), func(n *sitter.Node) bool {
		count++
		return true
	})
	assert.Greater(t, count, 0)
}
