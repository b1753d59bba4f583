package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mnemoniq/internal/render"
	"mnemoniq/internal/state"
	"mnemoniq/pkg/domain"
)

func (m projectModel) view() string {
	if m.ws == nil {
		return ""
	}
	project := m.ws.docs.Project()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(project.Name))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(project.Subject))
	b.WriteString("\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	if project.Status == domain.StatusProcessing {
		label := "Processing documents..."
		if project.ProcessingCount > 0 {
			label = fmt.Sprintf("Processing %d document(s)...", project.ProcessingCount)
		}
		b.WriteString(m.styles.Warning.Render(label))
		b.WriteString("\n\n")
	}

	switch {
	case m.uploadOpen:
		b.WriteString(m.styles.Subtitle.Render("Upload documents"))
		b.WriteString("\n\n")
		b.WriteString(m.uploadInput.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Footer.Render("enter upload · esc cancel"))
	case m.summaryOpen:
		b.WriteString(m.summaryView.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render("j/k scroll · esc close"))
	case m.topicOpen:
		b.WriteString(m.styles.Subtitle.Render("Generate quiz"))
		b.WriteString("\n\n")
		b.WriteString(m.topicInput.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Footer.Render("enter generate · esc cancel"))
	case m.lyricsOpen:
		b.WriteString(m.styles.Subtitle.Render("Draft lyrics"))
		b.WriteString("\n\n")
		b.WriteString(m.lyricsInput.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Footer.Render("enter draft · esc cancel"))
	case m.songOpen:
		b.WriteString(m.songFormView())
	default:
		switch m.tab {
		case tabOverview:
			b.WriteString(m.overviewView())
		case tabChat:
			b.WriteString(m.chatTabView())
		case tabQuiz:
			b.WriteString(m.quizView())
		case tabSongs:
			b.WriteString(m.songsView())
		}
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Warning.Render(m.notice))
	}
	if m.busy {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("Working..."))
	}
	return b.String()
}

func (m projectModel) tabBar() string {
	locked := m.ws.docs.Count() == 0
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		switch {
		case tab(i) == m.tab:
			parts[i] = m.styles.TabActive.Render(name)
		case locked && tab(i) != tabOverview:
			parts[i] = m.styles.TabDisabled.Render(name)
		default:
			parts[i] = m.styles.TabInactive.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m projectModel) overviewView() string {
	var b strings.Builder
	docs := m.ws.docs.Items()
	if len(docs) == 0 {
		b.WriteString(m.styles.Muted.Render("No documents yet. Press u to upload study material."))
	}
	for i, doc := range docs {
		line := doc.Filename
		switch {
		case doc.Regenerating:
			line += "  " + m.styles.Warning.Render("regenerating summary")
		case doc.Summary == domain.SummaryFailed:
			line += "  " + m.styles.Banner.Render("summary failed (r to retry)")
		}
		if i == m.docCursor {
			line = m.styles.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.confirmDoc && m.docCursor < len(docs) {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf(
			"Delete %q? (y/n)", docs[m.docCursor].Filename)))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("enter summary · u upload · d delete · r regenerate · tab switch · esc back"))
	return b.String()
}

func (m projectModel) chatTabView() string {
	var b strings.Builder
	messages := m.ws.chat.Messages()
	if len(messages) == 0 {
		b.WriteString(m.styles.Muted.Render("Ask anything about this project's documents."))
		b.WriteString("\n")
	} else {
		var transcript strings.Builder
		width := m.chatView.Width
		for _, msg := range messages {
			if msg.Role == domain.RoleUser {
				transcript.WriteString(m.styles.UserTurn.Render("You: " + msg.Content))
			} else {
				transcript.WriteString(render.Markdown(msg.Content, width))
			}
			transcript.WriteString("\n\n")
		}
		m.chatView.SetContent(transcript.String())
		m.chatView.GotoBottom()
		b.WriteString(m.chatView.View())
		b.WriteString("\n")
	}
	if m.ws.chat.Busy() {
		b.WriteString(m.styles.Muted.Render("Thinking..."))
		b.WriteString("\n")
	}
	if m.confirmClear {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render("Clear the whole conversation? (y/n)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.chatInput.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("enter send · ctrl+x clear · pgup/pgdn scroll · tab switch"))
	return b.String()
}

func (m projectModel) quizView() string {
	quiz := m.ws.quiz
	var b strings.Builder

	switch quiz.Phase() {
	case state.PhaseNotStarted:
		b.WriteString(m.styles.Muted.Render("Test yourself on this project's material."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Footer.Render("g generate quiz · tab switch"))

	case state.PhaseInProgress:
		current, ok := quiz.Current()
		if !ok {
			return ""
		}
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf(
			"Question %d of %d · score %d", quiz.Index()+1, quiz.Total(), quiz.Score())))
		b.WriteString("\n\n")
		b.WriteString(current.Question)
		b.WriteString("\n\n")

		answer, answered := quiz.Answer()
		for i, option := range current.Options {
			marker := "  "
			if i == m.optCursor {
				marker = m.styles.Selected.Render("> ")
			}
			label := option
			switch {
			case quiz.FeedbackShown() && option == current.CorrectAnswer:
				label = m.styles.OptionCorrect.Render(option)
			case quiz.FeedbackShown() && answered && option == answer:
				label = m.styles.OptionWrong.Render(option)
			case answered && option == answer:
				label = m.styles.Selected.Render(option)
			}
			b.WriteString(marker + label + "\n")
		}

		if quiz.FeedbackShown() {
			b.WriteString("\n")
			if answered && answer == current.CorrectAnswer {
				b.WriteString(m.styles.Success.Render("Correct!"))
			} else {
				b.WriteString(m.styles.Banner.Render("Not quite."))
			}
			if current.Explanation != "" {
				b.WriteString("\n")
				b.WriteString(m.styles.Muted.Render(current.Explanation))
			}
			b.WriteString("\n\n")
			b.WriteString(m.styles.Footer.Render("n next/submit · e elaborate in chat · esc cancel quiz"))
		} else {
			b.WriteString("\n")
			b.WriteString(m.styles.Footer.Render("enter select · c check · esc cancel quiz"))
		}

	case state.PhaseCompleted:
		results, ok := quiz.Results()
		if !ok {
			return ""
		}
		pct := 0.0
		if results.Total > 0 {
			pct = 100 * float64(results.Score) / float64(results.Total)
		}
		b.WriteString(m.styles.Title.Render(fmt.Sprintf("Score: %d/%d (%.0f%%)", results.Score, results.Total, pct)))
		b.WriteString("\n\n")
		for i, result := range results.Results {
			mark := m.styles.OptionCorrect.Render("✓")
			if !result.IsCorrect {
				mark = m.styles.OptionWrong.Render("✗")
			}
			b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, result.Question))
			if !result.IsCorrect {
				got := "no answer"
				if result.UserAnswer != nil {
					got = *result.UserAnswer
				}
				b.WriteString(m.styles.Muted.Render(fmt.Sprintf(
					"   yours: %s · correct: %s", got, result.CorrectAnswer)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render("g new quiz · x dismiss · tab switch"))
	}
	return b.String()
}

func (m projectModel) songsView() string {
	var b strings.Builder
	songs := m.ws.songs.Items()
	if len(songs) == 0 {
		b.WriteString(m.styles.Muted.Render("Turn your notes into study songs. Press n to create one."))
		b.WriteString("\n")
	}
	for i, song := range songs {
		line := fmt.Sprintf("%s  %s", song.Title, m.styles.Muted.Render(song.Genre))
		if song.Status == domain.SongPending {
			line += "  " + m.styles.Warning.Render("generating")
		}
		if i == m.songCursor {
			line = m.styles.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.confirmSong && m.songCursor < len(songs) {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf(
			"Delete %q? (y/n)", songs[m.songCursor].Title)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("n new song · g draft lyrics · d delete · tab switch"))
	return b.String()
}

func (m projectModel) songFormView() string {
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("New song"))
	b.WriteString("\n\n")
	b.WriteString(m.songInputs[0].View())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Genre:    %s  %s\n",
		m.styles.Selected.Render(state.Genres[m.genreIdx]),
		m.styles.Muted.Render("(left/right)")))
	b.WriteString(fmt.Sprintf("Duration: %s  %s\n",
		m.styles.Selected.Render(fmt.Sprintf("%ds", state.Durations[m.durationIdx])),
		m.styles.Muted.Render("(shift+left/right)")))
	b.WriteString(m.songInputs[1].View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("enter create · tab next field · esc cancel"))
	return b.String()
}
