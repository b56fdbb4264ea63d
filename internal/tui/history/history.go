package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"repstress/internal/report"
	"repstress/internal/storage"
	"repstress/internal/tui/styles"
)

var columns = []table.Column{
	{Title: "Time", Width: 20},
	{Title: "URL", Width: 30},
	{Title: "Conc", Width: 6},
	{Title: "Reqs", Width: 8},
	{Title: "Err %", Width: 7},
	{Title: "P90 (s)", Width: 8},
	{Title: "Reason", Width: 18},
}

type Model struct {
	Records []storage.Record
	Table   table.Model

	Width  int
	Height int
}

func NewModel(records []storage.Record) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(Rows(records)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{Records: records, Table: t}
}

// Rows formats one table row per record.
func Rows(records []storage.Record) []table.Row {
	rows := make([]table.Row, len(records))
	for i, rec := range records {
		rows[i] = table.Row{
			rec.Timestamp.Format(time.RFC822),
			rec.Config.APIURL,
			fmt.Sprintf("%d", rec.Config.Concurrency),
			fmt.Sprintf("%d", rec.Summary.TotalRequests),
			fmt.Sprintf("%.2f", rec.Summary.ErrorRate*100),
			fmt.Sprintf("%.3f", rec.Summary.P90Duration),
			report.Reason(rec.Interrupted),
		}
	}
	return rows
}

// Selected returns the record under the cursor, if any.
func (m Model) Selected() (storage.Record, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Records) {
		return storage.Record{}, false
	}
	return m.Records[i], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Run History"))
	b.WriteString("\n")
	b.WriteString(styles.Box.Render(m.Table.View()))
	b.WriteString("\n")

	if rec, ok := m.Selected(); ok {
		s := rec.Summary
		b.WriteString(styles.Subtle.Render(fmt.Sprintf(
			"%s  ok %d / failed %d / no status %d  min %.3fs  avg %.3fs  max %.3fs  %s",
			rec.ID, s.SuccessfulRequests, s.FailedRequests, s.TimedOutRequests,
			s.MinDuration, s.MeanDuration, s.MaxDuration, rec.ResultsFile,
		)))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.RenderKey("↑/↓", "select"), "  ",
		styles.RenderKey("q", "quit"),
	))
	return b.String()
}

// RenderPlain prints the history without an interactive program.
func RenderPlain(w io.Writer, records []storage.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, styles.Subtle.Render("No runs recorded yet."))
		return
	}
	for i, row := range Rows(records) {
		fmt.Fprintf(w, "%s  %s\n",
			strings.Join(row[:len(row)-1], "  "),
			styles.ReasonStyle(records[i].Interrupted).Render(row[len(row)-1]))
	}
}
