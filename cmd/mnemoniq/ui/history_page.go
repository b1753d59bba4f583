package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"mnemoniq/internal/state"
)

// historyModel lists past quiz outcomes newest-first.
type historyModel struct {
	styles   Styles
	projects *state.Projects
	viewport viewport.Model
	sized    bool
}

func newHistoryModel(styles Styles, projects *state.Projects) historyModel {
	return historyModel{styles: styles, projects: projects, viewport: viewport.New(80, 20)}
}

func (m *historyModel) setSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.viewport.Width = w
	if h > 8 {
		m.viewport.Height = h - 8
	}
	m.sized = true
}

func (m historyModel) update(msg tea.Msg) (historyModel, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			return m, true
		case "up", "k":
			m.viewport.LineUp(1)
		case "down", "j":
			m.viewport.LineDown(1)
		case "pgup":
			m.viewport.HalfViewUp()
		case "pgdown":
			m.viewport.HalfViewDown()
		}
	}
	return m, false
}

func (m historyModel) view() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Quiz history"))
	b.WriteString("\n\n")

	outcomes := m.projects.HistoryDesc()
	if len(outcomes) == 0 {
		b.WriteString(m.styles.Muted.Render("No quizzes taken yet."))
	} else {
		var rows strings.Builder
		for _, outcome := range outcomes {
			pct := 0.0
			if outcome.Total > 0 {
				pct = 100 * float64(outcome.Score) / float64(outcome.Total)
			}
			score := fmt.Sprintf("%d/%d (%.0f%%)", outcome.Score, outcome.Total, pct)
			if pct >= 80 {
				score = m.styles.Success.Render(score)
			} else if pct < 50 {
				score = m.styles.Banner.Render(score)
			}
			rows.WriteString(fmt.Sprintf("%s  %s\n", m.styles.Muted.Render(outcome.SubmittedAt), score))
		}
		m.viewport.SetContent(rows.String())
		b.WriteString(m.viewport.View())
	}

	stats := m.projects.Stats()
	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render(fmt.Sprintf(
		"%d total · average %.0f%% · esc back", stats.TotalQuizzes, stats.AverageScore)))
	return b.String()
}
