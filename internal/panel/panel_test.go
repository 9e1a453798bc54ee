/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/canvas"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
)

type rig struct {
	b       *bus.Bus
	c       *canvas.Controller
	h       *undo.Manager
	props   *Properties
	layers  *Layers
	notices []bus.Notice
}

func newRig(t *testing.T) *rig {
	t.Helper()
	quiet := slog.New(slog.DiscardHandler)
	r := &rig{b: bus.New(quiet), h: undo.NewManager(undo.Config{})}
	c, err := canvas.New(r.b, r.h, canvas.Options{Logger: quiet})
	require.NoError(t, err)
	r.c = c
	r.props = NewProperties(r.b, quiet)
	r.layers = NewLayers(r.b)
	bus.Subscribe(r.b, func(n bus.Notice) { r.notices = append(r.notices, n) })
	return r
}

func TestSetStyleKeepsCSSColourForms(t *testing.T) {
	r := newRig(t)
	id, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Text", Kind: "text"}, "", nil)

	cases := map[string]string{
		"Red":                "red",
		"rgba(0, 0, 0, 0.5)": "rgba(0, 0, 0, 0.5)",
		"#FFFFFF80":          "#ffffff80",
		"hsl(0, 100%, 50%)":  "hsl(0, 100%, 50%)",
		"#ABC":               "#aabbcc",
	}
	for in, want := range cases {
		require.NoError(t, r.props.SetStyle(domain.FieldColor, in, true), in)
		n, _ := tree.Find(r.c.Document(), id)
		assert.Equal(t, want, n.Style.Color, in)
	}
	assert.Empty(t, r.notices)
}

func TestPropertiesFollowsSelection(t *testing.T) {
	r := newRig(t)
	id, err := r.c.HandleDrop(canvas.DropPayload{Name: "Text", Kind: "text"}, "", nil)
	require.NoError(t, err)
	sel, ok := r.props.Selected()
	require.True(t, ok)
	assert.Equal(t, id, sel.ID)

	require.NoError(t, r.c.HandleRemove(id))
	_, ok = r.props.Selected()
	assert.False(t, ok, "removal should drop the stale selection")
}

func TestSetStyleUpdatesCanvas(t *testing.T) {
	r := newRig(t)
	id, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Button", Kind: "button"}, "", nil)
	before := r.h.Len()

	require.NoError(t, r.props.SetStyle(domain.FieldBackgroundColor, "#F00", false))
	require.NoError(t, r.props.SetStyle(domain.FieldFontSize, "20px", true))

	n, _ := tree.Find(r.c.Document(), id)
	assert.Equal(t, "#ff0000", n.Style.BackgroundColor)
	assert.Equal(t, "20px", n.Style.FontSize)
	assert.Equal(t, before+1, r.h.Len(), "two edits with one commit make one entry")

	sel, _ := r.props.Selected()
	assert.Equal(t, "20px", sel.Style.FontSize)
}

func TestSetStyleRejectsBadColour(t *testing.T) {
	r := newRig(t)
	id, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Text", Kind: "text"}, "", nil)
	err := r.props.SetStyle(domain.FieldColor, "not-a-colour", true)
	assert.ErrorIs(t, err, domain.ErrValidation)
	n, _ := tree.Find(r.c.Document(), id)
	assert.Equal(t, "#000000", n.Style.Color)
	require.Len(t, r.notices, 1)
	assert.Equal(t, bus.CodeValidation, r.notices[0].Code)
}

func TestEditWithoutSelection(t *testing.T) {
	r := newRig(t)
	err := r.props.SetContent("hello", true)
	assert.ErrorIs(t, err, domain.ErrSelectionMissing)
	require.Len(t, r.notices, 1)
	assert.Equal(t, bus.CodeSelectionMissing, r.notices[0].Code)

	r.b.Publish(bus.StylesPanelRequested{Tab: TabSettings})
	assert.Equal(t, TabSettings, r.props.Tab())
	assert.Len(t, r.notices, 2)
}

func TestContentNameAndAttributes(t *testing.T) {
	r := newRig(t)
	id, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Link", Kind: "link"}, "", nil)
	require.NoError(t, r.props.SetContent("Docs", false))
	require.NoError(t, r.props.SetName("Docs link", false))
	require.NoError(t, r.props.SetAttribute("href", "https://example.org", false))
	require.NoError(t, r.props.SetAttribute("class", "nav", true))
	require.NoError(t, r.props.SetAttribute("class", "", true))
	n, _ := tree.Find(r.c.Document(), id)
	assert.Equal(t, "Docs", n.Content)
	assert.Equal(t, "Docs link", n.Name)
	assert.Equal(t, map[string]string{"href": "https://example.org"}, n.Attributes)
	assert.Equal(t, "Docs link", r.layers.Entries()[0].Name)
	assert.Error(t, r.props.SetTab("code"))
}

func TestLayersNumberingFilterAndSelect(t *testing.T) {
	r := newRig(t)
	s, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Section", Kind: "section"}, "", nil)
	row, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Row", Kind: "row"}, s, nil)
	_, _ = r.c.HandleDrop(canvas.DropPayload{Name: "Column", Kind: "column"}, row, nil)
	col2, _ := r.c.HandleDrop(canvas.DropPayload{Name: "Sidebar", Kind: "column"}, row, nil)
	_, _ = r.c.HandleDrop(canvas.DropPayload{Name: "Footer", Kind: "section"}, "", nil)

	rows := r.layers.Entries()
	require.Len(t, rows, 5)
	nums := make([]string, len(rows))
	for i, row := range rows {
		nums[i] = row.Number
	}
	assert.Equal(t, []string{"1", "1.1", "1.1.1", "1.1.2", "2"}, nums)
	assert.Equal(t, "Section > Row > Sidebar", rows[3].Path)

	hits := r.layers.Filter("sdbr")
	require.Len(t, hits, 1)
	assert.Equal(t, col2, hits[0].ID)
	assert.Len(t, r.layers.Filter("row"), 3, "path matches include descendants")

	require.NoError(t, r.layers.Select(s))
	assert.Equal(t, s, r.c.Selection())
	assert.ErrorIs(t, r.layers.Select("ghost"), domain.ErrValidation)
}
