package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mnemoniq/internal/state"
	"mnemoniq/pkg/domain"
)

type dashActionKind int

const (
	dashActionNone dashActionKind = iota
	dashActionOpen
	dashActionCreate
	dashActionDelete
	dashActionHistory
	dashActionSignOut
	dashActionRefresh
)

type dashAction struct {
	kind    dashActionKind
	project domain.Project
	form    createForm
}

// createForm is the new-project input set: name, subject, and optional
// study files to upload right away.
type createForm struct {
	name    string
	subject string
	paths   string
}

func (f createForm) files() []string {
	var out []string
	for _, path := range strings.Split(f.paths, ",") {
		if path = strings.TrimSpace(path); path != "" {
			out = append(out, path)
		}
	}
	return out
}

// dashboardModel shows the project grid, the aggregate quiz stats, and
// the create-project form.
type dashboardModel struct {
	styles   Styles
	projects *state.Projects

	cursor   int
	loading  bool
	creating bool

	// create form state
	inputs   []textinput.Model
	focused  int
	formErr  string
	confirm  bool // pending delete confirmation for the project under the cursor
}

func newDashboardModel(styles Styles, projects *state.Projects) dashboardModel {
	labels := []string{"Project name", "Subject", "Files (comma separated, optional)"}
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		input := textinput.New()
		input.Placeholder = label
		input.Width = 48
		inputs[i] = input
	}
	return dashboardModel{styles: styles, projects: projects, loading: true, inputs: inputs}
}

func (m dashboardModel) update(msg tea.Msg) (dashboardModel, dashAction) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.creating {
			var cmd tea.Cmd
			m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
			_ = cmd
		}
		return m, dashAction{}
	}

	if m.creating {
		return m.updateForm(key)
	}

	items := m.projects.Items()
	if m.confirm {
		switch key.String() {
		case "y":
			m.confirm = false
			if m.cursor < len(items) {
				return m, dashAction{kind: dashActionDelete, project: items[m.cursor]}
			}
		default:
			m.confirm = false
		}
		return m, dashAction{}
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(items) {
			return m, dashAction{kind: dashActionOpen, project: items[m.cursor]}
		}
	case "n":
		m.creating = true
		m.focused = 0
		m.formErr = ""
		for i := range m.inputs {
			m.inputs[i].Reset()
			m.inputs[i].Blur()
		}
		m.inputs[0].Focus()
	case "d":
		if m.cursor < len(items) {
			m.confirm = true
		}
	case "h":
		return m, dashAction{kind: dashActionHistory}
	case "r":
		return m, dashAction{kind: dashActionRefresh}
	case "s":
		return m, dashAction{kind: dashActionSignOut}
	}
	return m, dashAction{}
}

func (m dashboardModel) updateForm(key tea.KeyMsg) (dashboardModel, dashAction) {
	switch key.String() {
	case "esc":
		m.creating = false
		return m, dashAction{}
	case "tab", "down":
		m.inputs[m.focused].Blur()
		m.focused = (m.focused + 1) % len(m.inputs)
		m.inputs[m.focused].Focus()
		return m, dashAction{}
	case "shift+tab", "up":
		m.inputs[m.focused].Blur()
		m.focused = (m.focused + len(m.inputs) - 1) % len(m.inputs)
		m.inputs[m.focused].Focus()
		return m, dashAction{}
	case "enter":
		form := createForm{
			name:    m.inputs[0].Value(),
			subject: m.inputs[1].Value(),
			paths:   m.inputs[2].Value(),
		}
		if strings.TrimSpace(form.name) == "" || strings.TrimSpace(form.subject) == "" {
			m.formErr = "name and subject are required"
			return m, dashAction{}
		}
		return m, dashAction{kind: dashActionCreate, form: form}
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(key)
	_ = cmd
	return m, dashAction{}
}

func (m dashboardModel) view() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Projects"))
	b.WriteString("\n\n")

	if m.creating {
		b.WriteString(m.styles.Subtitle.Render("New project"))
		b.WriteString("\n\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		if m.formErr != "" {
			b.WriteString("\n")
			b.WriteString(m.styles.Banner.Render(m.formErr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render("enter create · tab next field · esc cancel"))
		return b.String()
	}

	stats := m.projects.Stats()
	if stats.TotalQuizzes > 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf(
			"%d quizzes taken · average score %.0f%%", stats.TotalQuizzes, stats.AverageScore)))
		b.WriteString("\n\n")
	}

	items := m.projects.Items()
	switch {
	case m.loading:
		b.WriteString(m.styles.Muted.Render("Loading..."))
	case len(items) == 0:
		b.WriteString(m.styles.Muted.Render("No projects yet. Press n to create one."))
	default:
		for i, project := range items {
			line := fmt.Sprintf("%s  %s", project.Name, m.styles.Muted.Render(project.Subject))
			if project.Status == domain.StatusProcessing {
				line += "  " + m.styles.Warning.Render("processing")
			}
			if i == m.cursor {
				line = m.styles.Selected.Render("> ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.confirm && m.cursor < len(items) {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf(
			"Delete %q and all its documents, chats, and songs? (y/n)", items[m.cursor].Name)))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("enter open · n new · d delete · h history · r refresh · s sign out"))
	return b.String()
}
