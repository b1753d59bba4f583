package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"mnemoniq/internal/apiclient"
	"mnemoniq/internal/render"
	"mnemoniq/internal/state"
	"mnemoniq/pkg/domain"
)

type tab int

const (
	tabOverview tab = iota
	tabChat
	tabQuiz
	tabSongs
)

var tabNames = []string{"Overview", "Chat", "Quiz", "Songs"}

type projActionKind int

const (
	projActionNone projActionKind = iota
	projActionBack
	projActionUpload
	projActionDeleteDoc
	projActionRegenerate
	projActionChatSend
	projActionChatClear
	projActionQuizGenerate
	projActionQuizSubmit
	projActionElaborate
	projActionSongCreate
	projActionSongDelete
	projActionLyrics
)

type projAction struct {
	kind     projActionKind
	paths    []string
	filename string
	text     string
	songID   string
	songForm apiclient.SongForm
}

// projectModel is the per-project workspace: overview, chat, quiz, and
// songs tabs. Everything but the overview is disabled while the project
// has no documents, and the cursor snaps back to the overview when the
// document list empties.
type projectModel struct {
	styles Styles
	ws     *workspace
	exts   []string

	width  int
	height int
	tab    tab
	busy   bool
	notice string

	// overview
	docCursor   int
	uploadOpen  bool
	uploadInput textinput.Model
	confirmDoc  bool
	summaryOpen bool
	summaryView viewport.Model

	// chat
	chatView     viewport.Model
	chatInput    textinput.Model
	confirmClear bool

	// quiz
	topicOpen  bool
	topicInput textinput.Model
	optCursor  int

	// songs
	songCursor  int
	confirmSong bool
	songOpen    bool
	songInputs  []textinput.Model // title, lyrics
	songFocus   int
	genreIdx    int
	durationIdx int
	lyricsOpen  bool
	lyricsInput textinput.Model
}

func newProjectModel(styles Styles, ws *workspace, exts []string) projectModel {
	uploadInput := textinput.New()
	uploadInput.Placeholder = "file paths, comma separated"
	uploadInput.Width = 64

	chatInput := textinput.New()
	chatInput.Placeholder = "ask about your documents"
	chatInput.Width = 64
	chatInput.Focus()

	topicInput := textinput.New()
	topicInput.Placeholder = "topic (blank for all documents)"
	topicInput.Width = 48

	titleInput := textinput.New()
	titleInput.Placeholder = "Song title"
	titleInput.Width = 48
	lyricsFieldInput := textinput.New()
	lyricsFieldInput.Placeholder = "Lyrics (or press g to draft from a prompt)"
	lyricsFieldInput.Width = 64

	lyricsInput := textinput.New()
	lyricsInput.Placeholder = "what should the song teach?"
	lyricsInput.Width = 64

	return projectModel{
		styles:      styles,
		ws:          ws,
		exts:        exts,
		uploadInput: uploadInput,
		chatView:    viewport.New(80, 16),
		chatInput:   chatInput,
		topicInput:  topicInput,
		songInputs:  []textinput.Model{titleInput, lyricsFieldInput},
		lyricsInput: lyricsInput,
		summaryView: viewport.New(80, 16),
	}
}

func (m *projectModel) setSize(w, h int) {
	if m.ws == nil || w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	m.chatView.Width = w - 4
	m.summaryView.Width = w - 4
	if h > 12 {
		m.chatView.Height = h - 12
		m.summaryView.Height = h - 10
	}
}

// close stops the poller. Safe on a zero model.
func (m *projectModel) close() {
	if m.ws != nil {
		m.ws.docs.StopPolling()
	}
}

// enforceTabGate snaps back to the overview when there is nothing for the
// other tabs to work on.
func (m *projectModel) enforceTabGate() {
	if m.ws.docs.Count() == 0 && m.tab != tabOverview {
		m.tab = tabOverview
		m.notice = "Upload a document first."
	}
}

func (m projectModel) update(msg tea.Msg) (projectModel, projAction) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInputs(msg), projAction{}
	}
	m.notice = ""

	// Modal inputs swallow everything except esc and enter.
	switch {
	case m.uploadOpen:
		return m.updateUploadPrompt(key)
	case m.topicOpen:
		return m.updateTopicPrompt(key)
	case m.songOpen:
		return m.updateSongForm(key)
	case m.lyricsOpen:
		return m.updateLyricsPrompt(key)
	case m.summaryOpen:
		return m.updateSummaryView(key)
	}

	if confirmed, action, handled := m.updateConfirms(key); handled {
		return confirmed, action
	}

	switch key.String() {
	case "esc":
		if m.tab == tabQuiz && m.ws.quiz.Phase() == state.PhaseInProgress {
			m.ws.quiz.Cancel()
			return m, projAction{}
		}
		return m, projAction{kind: projActionBack}
	case "tab":
		return m.nextTab(1), projAction{}
	case "shift+tab":
		return m.nextTab(-1), projAction{}
	}

	switch m.tab {
	case tabOverview:
		return m.updateOverview(key)
	case tabChat:
		return m.updateChat(key)
	case tabQuiz:
		return m.updateQuiz(key)
	case tabSongs:
		return m.updateSongs(key)
	}
	return m, projAction{}
}

func (m projectModel) nextTab(dir int) projectModel {
	if m.ws.docs.Count() == 0 {
		m.notice = "Upload a document to unlock chat, quizzes, and songs."
		return m
	}
	m.tab = tab((int(m.tab) + dir + len(tabNames)) % len(tabNames))
	return m
}

func (m projectModel) updateInputs(msg tea.Msg) projectModel {
	var cmd tea.Cmd
	switch {
	case m.uploadOpen:
		m.uploadInput, cmd = m.uploadInput.Update(msg)
	case m.topicOpen:
		m.topicInput, cmd = m.topicInput.Update(msg)
	case m.songOpen:
		m.songInputs[m.songFocus], cmd = m.songInputs[m.songFocus].Update(msg)
	case m.lyricsOpen:
		m.lyricsInput, cmd = m.lyricsInput.Update(msg)
	case m.tab == tabChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	_ = cmd
	return m
}

// updateConfirms handles the pending yes/no prompts. The second return is
// the action to run on confirmation.
func (m projectModel) updateConfirms(key tea.KeyMsg) (projectModel, projAction, bool) {
	yes := key.String() == "y"
	switch {
	case m.confirmDoc:
		m.confirmDoc = false
		docs := m.ws.docs.Items()
		if yes && m.docCursor < len(docs) {
			return m, projAction{kind: projActionDeleteDoc, filename: docs[m.docCursor].Filename}, true
		}
		return m, projAction{}, true
	case m.confirmClear:
		m.confirmClear = false
		if yes {
			return m, projAction{kind: projActionChatClear}, true
		}
		return m, projAction{}, true
	case m.confirmSong:
		m.confirmSong = false
		songs := m.ws.songs.Items()
		if yes && m.songCursor < len(songs) {
			return m, projAction{kind: projActionSongDelete, songID: songs[m.songCursor].ID}, true
		}
		return m, projAction{}, true
	}
	return m, projAction{}, false
}

func (m projectModel) updateUploadPrompt(key tea.KeyMsg) (projectModel, projAction) {
	switch key.String() {
	case "esc":
		m.uploadOpen = false
		return m, projAction{}
	case "enter":
		var paths []string
		for _, path := range strings.Split(m.uploadInput.Value(), ",") {
			if path = strings.TrimSpace(path); path != "" {
				paths = append(paths, path)
			}
		}
		m.uploadOpen = false
		m.uploadInput.Reset()
		if len(paths) == 0 {
			return m, projAction{}
		}
		return m, projAction{kind: projActionUpload, paths: paths}
	}
	var cmd tea.Cmd
	m.uploadInput, cmd = m.uploadInput.Update(key)
	_ = cmd
	return m, projAction{}
}

func (m projectModel) updateTopicPrompt(key tea.KeyMsg) (projectModel, projAction) {
	switch key.String() {
	case "esc":
		m.topicOpen = false
		return m, projAction{}
	case "enter":
		topic := strings.TrimSpace(m.topicInput.Value())
		m.topicOpen = false
		m.topicInput.Reset()
		return m, projAction{kind: projActionQuizGenerate, text: topic}
	}
	var cmd tea.Cmd
	m.topicInput, cmd = m.topicInput.Update(key)
	_ = cmd
	return m, projAction{}
}

func (m projectModel) updateLyricsPrompt(key tea.KeyMsg) (projectModel, projAction) {
	switch key.String() {
	case "esc":
		m.lyricsOpen = false
		return m, projAction{}
	case "enter":
		prompt := strings.TrimSpace(m.lyricsInput.Value())
		m.lyricsOpen = false
		m.lyricsInput.Reset()
		if prompt == "" {
			return m, projAction{}
		}
		return m, projAction{kind: projActionLyrics, text: prompt}
	}
	var cmd tea.Cmd
	m.lyricsInput, cmd = m.lyricsInput.Update(key)
	_ = cmd
	return m, projAction{}
}

func (m projectModel) updateSummaryView(key tea.KeyMsg) (projectModel, projAction) {
	switch key.String() {
	case "esc", "q":
		m.summaryOpen = false
	case "up", "k":
		m.summaryView.LineUp(1)
	case "down", "j":
		m.summaryView.LineDown(1)
	case "pgup":
		m.summaryView.HalfViewUp()
	case "pgdown":
		m.summaryView.HalfViewDown()
	}
	return m, projAction{}
}

func (m projectModel) updateOverview(key tea.KeyMsg) (projectModel, projAction) {
	docs := m.ws.docs.Items()
	switch key.String() {
	case "up", "k":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "down", "j":
		if m.docCursor < len(docs)-1 {
			m.docCursor++
		}
	case "enter":
		if m.docCursor < len(docs) {
			m.summaryView.SetContent(render.HTMLText(docs[m.docCursor].Summary))
			m.summaryView.GotoTop()
			m.summaryOpen = true
		}
	case "u":
		m.uploadOpen = true
		m.uploadInput.Focus()
	case "d":
		if m.docCursor < len(docs) {
			m.confirmDoc = true
		}
	case "r":
		if m.docCursor < len(docs) {
			return m, projAction{kind: projActionRegenerate, filename: docs[m.docCursor].Filename}
		}
	}
	return m, projAction{}
}

func (m projectModel) updateChat(key tea.KeyMsg) (projectModel, projAction) {
	switch key.String() {
	case "enter":
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" || m.ws.chat.Busy() {
			return m, projAction{}
		}
		m.chatInput.Reset()
		return m, projAction{kind: projActionChatSend, text: text}
	case "ctrl+x":
		if len(m.ws.chat.Messages()) > 0 {
			m.confirmClear = true
		}
		return m, projAction{}
	case "pgup":
		m.chatView.HalfViewUp()
		return m, projAction{}
	case "pgdown":
		m.chatView.HalfViewDown()
		return m, projAction{}
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(key)
	_ = cmd
	return m, projAction{}
}

func (m projectModel) updateQuiz(key tea.KeyMsg) (projectModel, projAction) {
	quiz := m.ws.quiz
	switch quiz.Phase() {
	case state.PhaseNotStarted:
		if key.String() == "g" {
			m.topicOpen = true
			m.topicInput.Focus()
		}
		return m, projAction{}

	case state.PhaseInProgress:
		current, ok := quiz.Current()
		if !ok {
			return m, projAction{}
		}
		switch key.String() {
		case "up", "k":
			if m.optCursor > 0 {
				m.optCursor--
			}
		case "down", "j":
			if m.optCursor < len(current.Options)-1 {
				m.optCursor++
			}
		case "enter", " ":
			quiz.SelectOption(current.Options[m.optCursor])
		case "c":
			quiz.CheckAnswer()
		case "n":
			if quiz.FeedbackShown() {
				if quiz.NextQuestion() {
					m.optCursor = 0
				} else {
					return m, projAction{kind: projActionQuizSubmit}
				}
			}
		case "e":
			if quiz.FeedbackShown() && current.Explanation != "" {
				m.tab = tabChat
				return m, projAction{kind: projActionElaborate, text: current.Explanation}
			}
		}
		return m, projAction{}

	case state.PhaseCompleted:
		switch key.String() {
		case "g":
			m.topicOpen = true
			m.topicInput.Focus()
		case "x":
			quiz.Cancel()
		}
		return m, projAction{}
	}
	return m, projAction{}
}

func (m projectModel) updateSongs(key tea.KeyMsg) (projectModel, projAction) {
	songs := m.ws.songs.Items()
	switch key.String() {
	case "up", "k":
		if m.songCursor > 0 {
			m.songCursor--
		}
	case "down", "j":
		if m.songCursor < len(songs)-1 {
			m.songCursor++
		}
	case "n":
		m.songOpen = true
		m.songFocus = 0
		for i := range m.songInputs {
			m.songInputs[i].Blur()
		}
		m.songInputs[0].Focus()
	case "d":
		if m.songCursor < len(songs) {
			m.confirmSong = true
		}
	case "g":
		m.lyricsOpen = true
		m.lyricsInput.Focus()
	}
	return m, projAction{}
}

func (m projectModel) updateSongForm(key tea.KeyMsg) (projectModel, projAction) {
	switch key.String() {
	case "esc":
		m.songOpen = false
		return m, projAction{}
	case "tab":
		m.songInputs[m.songFocus].Blur()
		m.songFocus = (m.songFocus + 1) % len(m.songInputs)
		m.songInputs[m.songFocus].Focus()
		return m, projAction{}
	case "left":
		m.genreIdx = (m.genreIdx + len(state.Genres) - 1) % len(state.Genres)
		return m, projAction{}
	case "right":
		m.genreIdx = (m.genreIdx + 1) % len(state.Genres)
		return m, projAction{}
	case "shift+left":
		m.durationIdx = (m.durationIdx + len(state.Durations) - 1) % len(state.Durations)
		return m, projAction{}
	case "shift+right":
		m.durationIdx = (m.durationIdx + 1) % len(state.Durations)
		return m, projAction{}
	case "enter":
		form := apiclient.SongForm{
			Title:    m.songInputs[0].Value(),
			Genre:    state.Genres[m.genreIdx],
			Lyrics:   m.songInputs[1].Value(),
			Duration: state.Durations[m.durationIdx],
		}
		m.songOpen = false
		return m, projAction{kind: projActionSongCreate, songForm: form}
	}
	var cmd tea.Cmd
	m.songInputs[m.songFocus], cmd = m.songInputs[m.songFocus].Update(key)
	_ = cmd
	return m, projAction{}
}

func (a App) updateProject(msg tea.Msg) (tea.Model, tea.Cmd) {
	ws := a.project.ws
	if ws == nil {
		a.page = pageDashboard
		return a, nil
	}

	switch msg := msg.(type) {
	case docsChangedMsg:
		a.project.enforceTabGate()
		if ws.docs.Project().Status == domain.StatusProcessing {
			return a, waitForChange(ws)
		}
		return a, nil

	case uploadDoneMsg:
		a.project.busy = false
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
		}
		// Successful or partial, something may be processing now.
		if ws.docs.Project().Status == domain.StatusProcessing {
			ws.docs.StartPolling(func() {
				select {
				case ws.changed <- struct{}{}:
				default:
				}
			})
			return a, waitForChange(ws)
		}
		return a, nil

	case docDeletedMsg, regeneratedMsg, chatClearedMsg, songsChangedMsg:
		a.project.busy = false
		if err := extractErr(msg); err != nil {
			a.banner = friendlyError(err)
		}
		a.project.enforceTabGate()
		return a, nil

	case chatAnsweredMsg:
		a.project.busy = false
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
		}
		return a, nil

	case quizGeneratedMsg:
		a.project.busy = false
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
		}
		a.project.optCursor = 0
		return a, nil

	case quizGradedMsg:
		a.project.busy = false
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
		}
		return a, nil

	case lyricsDraftMsg:
		a.project.busy = false
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
			return a, nil
		}
		a.project.songOpen = true
		a.project.songInputs[1].SetValue(msg.lyrics)
		a.project.songFocus = 0
		a.project.songInputs[0].Focus()
		a.project.songInputs[1].Blur()
		return a, nil
	}

	model, action := a.project.update(msg)
	a.project = model
	if action.kind == projActionNone {
		return a, nil
	}
	if a.project.busy && action.kind != projActionBack {
		return a, nil
	}
	return a.runProjectAction(ws, action)
}

func (a App) runProjectAction(ws *workspace, action projAction) (tea.Model, tea.Cmd) {
	switch action.kind {
	case projActionBack:
		a.project.close()
		a.project = projectModel{}
		a.page = pageDashboard
		a.dash.loading = true
		return a, a.loadDashboardCmd()

	case projActionUpload:
		a.project.busy = true
		paths := action.paths
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return uploadDoneMsg{err: ws.docs.Upload(ctx, paths)}
		}

	case projActionDeleteDoc:
		a.project.busy = true
		filename := action.filename
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return docDeletedMsg{err: ws.docs.Delete(ctx, filename)}
		}

	case projActionRegenerate:
		a.project.busy = true
		filename := action.filename
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return regeneratedMsg{err: ws.docs.Regenerate(ctx, filename)}
		}

	case projActionChatSend:
		a.project.busy = true
		text := action.text
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return chatAnsweredMsg{err: ws.chat.Send(ctx, text)}
		}

	case projActionChatClear:
		a.project.busy = true
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return chatClearedMsg{err: ws.chat.Clear(ctx)}
		}

	case projActionQuizGenerate:
		a.project.busy = true
		topic := action.text
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return quizGeneratedMsg{err: ws.quiz.Generate(ctx, topic)}
		}

	case projActionQuizSubmit:
		a.project.busy = true
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			results, err := ws.quiz.Submit(ctx)
			return quizGradedMsg{results: results, err: err}
		}

	case projActionElaborate:
		a.project.busy = true
		prompt := state.ElaboratePrompt(action.text)
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return chatAnsweredMsg{err: ws.chat.Send(ctx, prompt)}
		}

	case projActionSongCreate:
		a.project.busy = true
		form := action.songForm
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			_, err := ws.songs.Create(ctx, form)
			return songsChangedMsg{err: err}
		}

	case projActionSongDelete:
		a.project.busy = true
		songID := action.songID
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			return songsChangedMsg{err: ws.songs.Delete(ctx, songID)}
		}

	case projActionLyrics:
		a.project.busy = true
		prompt := action.text
		genre := state.Genres[a.project.genreIdx]
		return a, func() tea.Msg {
			ctx, cancel := opContext()
			defer cancel()
			lyrics, err := ws.songs.GenerateLyrics(ctx, prompt, genre)
			return lyricsDraftMsg{lyrics: lyrics, err: err}
		}
	}
	return a, nil
}

func extractErr(msg tea.Msg) error {
	switch msg := msg.(type) {
	case docDeletedMsg:
		return msg.err
	case regeneratedMsg:
		return msg.err
	case chatClearedMsg:
		return msg.err
	case songsChangedMsg:
		return msg.err
	}
	return nil
}
