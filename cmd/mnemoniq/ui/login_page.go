package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginModel collects a pasted identity token. Acquisition happens in the
// browser with the identity provider; the client only stores the result.
type loginModel struct {
	styles  Styles
	input   textinput.Model
	errText string
}

func newLoginModel(styles Styles) loginModel {
	input := textinput.New()
	input.Placeholder = "paste your access token"
	input.EchoMode = textinput.EchoPassword
	input.CharLimit = 0
	input.Width = 64
	input.Focus()
	return loginModel{styles: styles, input: input}
}

// update returns the submitted token when the user pressed enter on a
// non-empty input.
func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd, string) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		token := strings.TrimSpace(m.input.Value())
		if token == "" {
			m.errText = "token is empty"
			return m, nil, ""
		}
		m.errText = ""
		m.input.Reset()
		return m, nil, token
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, ""
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("Paste the access token issued by your identity provider."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Banner.Render(m.errText))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("enter submit · ctrl+c quit"))
	return b.String()
}
