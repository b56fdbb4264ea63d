package history

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repstress/internal/analysis"
	"repstress/internal/storage"
)

func records() []storage.Record {
	return []storage.Record{
		{
			ID:        "run-2",
			Timestamp: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
			Config:    storage.RunConfig{APIURL: "http://api/domain/ranking", Concurrency: 10},
			Summary:   analysis.Summary{TotalRequests: 200, FailedRequests: 50, ErrorRate: 0.25, P90Duration: 0.1234},
		},
		{
			ID:          "run-1",
			Timestamp:   time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
			Config:      storage.RunConfig{APIURL: "http://api/domain/ranking", Concurrency: 5},
			Interrupted: true,
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(records())
	require.Len(t, rows, 2)
	assert.Equal(t, "10", rows[0][2])
	assert.Equal(t, "200", rows[0][3])
	assert.Equal(t, "25.00", rows[0][4])
	assert.Equal(t, "0.123", rows[0][5])
	assert.Equal(t, "timeout", rows[0][6])
	assert.Equal(t, "keyboard interrupt", rows[1][6])
}

func TestModel_NavigateAndQuit(t *testing.T) {
	m := NewModel(records())

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "run-2", sel.ID)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	sel, ok = m.Selected()
	require.True(t, ok)
	assert.Equal(t, "run-1", sel.ID)
	assert.Contains(t, m.View(), "run-1")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Empty(t *testing.T) {
	m := NewModel(nil)
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.NotEmpty(t, m.View())
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	RenderPlain(&buf, records())
	assert.Contains(t, buf.String(), "keyboard interrupt")
	assert.Contains(t, buf.String(), "http://api/domain/ranking")

	buf.Reset()
	RenderPlain(&buf, nil)
	assert.Contains(t, buf.String(), "No runs recorded yet.")
}
