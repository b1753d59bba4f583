package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mnemoniq/internal/apiclient"
	"mnemoniq/internal/session"
	"mnemoniq/internal/state"
	"mnemoniq/pkg/domain"
)

type page int

const (
	pageLogin page = iota
	pageDashboard
	pageProject
	pageHistory
)

// Messages flowing through the update loop. Commands run the state
// component operations off-loop and report back with one of these.
type (
	restoredMsg struct{ state session.State }
	signedInMsg struct{ err error }

	dashboardLoadedMsg struct{ err error }
	projectCreatedMsg  struct {
		project domain.Project
		err     error
	}
	projectDeletedMsg struct{ err error }

	projectOpenedMsg struct {
		ws  *workspace
		err error
	}
	docsChangedMsg   struct{}
	uploadDoneMsg    struct{ err error }
	docDeletedMsg    struct{ err error }
	regeneratedMsg   struct{ err error }
	chatAnsweredMsg  struct{ err error }
	chatClearedMsg   struct{ err error }
	quizGeneratedMsg struct{ err error }
	quizGradedMsg    struct {
		results domain.QuizResults
		err     error
	}
	songsChangedMsg struct{ err error }
	lyricsDraftMsg  struct {
		lyrics string
		err    error
	}

	errMsg struct{ err error }
)

// workspace bundles the state components for one opened project.
type workspace struct {
	docs  *state.Documents
	chat  *state.Chat
	quiz  *state.Quiz
	songs *state.Songs

	// changed carries poller callbacks back into the update loop.
	changed chan struct{}
}

// App is the root model. It owns the session gate and switches between
// pages; each page is its own model in the usual bubbletea composition.
type App struct {
	styles Styles
	width  int
	height int

	sess         *session.Session
	api          *apiclient.Client
	projects     *state.Projects
	exts         []string
	pollInterval time.Duration

	page    page
	login   loginModel
	dash    dashboardModel
	project projectModel
	history historyModel

	banner string
}

func NewApp(sess *session.Session, api *apiclient.Client, exts []string, pollInterval time.Duration) App {
	styles := DefaultStyles()
	projects := state.NewProjects(api, exts)
	return App{
		styles:       styles,
		sess:         sess,
		api:          api,
		projects:     projects,
		exts:         exts,
		pollInterval: pollInterval,
		page:         pageLogin,
		login:        newLoginModel(styles),
		dash:         newDashboardModel(styles, projects),
		history:      newHistoryModel(styles, projects),
	}
}

func (a App) Init() tea.Cmd {
	return a.restoreCmd()
}

// restoreCmd settles the session from the stored credential. While it
// runs the app stays on a loading placeholder rather than flashing the
// login page.
func (a App) restoreCmd() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		return restoredMsg{state: sess.Restore()}
	}
}

func (a App) loadDashboardCmd() tea.Cmd {
	projects := a.projects
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return dashboardLoadedMsg{err: projects.LoadWithStats(ctx)}
	}
}

// openProjectCmd builds the workspace for a project and fetches its
// documents, transcript, and songs before the page shows.
func (a App) openProjectCmd(project domain.Project) tea.Cmd {
	api, exts, interval := a.api, a.exts, a.pollInterval
	return func() tea.Msg {
		ws := &workspace{
			docs:    state.NewDocuments(api, project, exts, interval),
			chat:    state.NewChat(api, project.ID),
			quiz:    state.NewQuiz(api, project.ID),
			songs:   state.NewSongs(api, project.ID),
			changed: make(chan struct{}, 8),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := ws.docs.Load(ctx); err != nil {
			return projectOpenedMsg{err: err}
		}
		if err := ws.chat.Load(ctx); err != nil {
			return projectOpenedMsg{err: err}
		}
		if err := ws.songs.Load(ctx); err != nil {
			return projectOpenedMsg{err: err}
		}
		return projectOpenedMsg{ws: ws}
	}
}

// waitForChange blocks on the workspace change channel so poller updates
// re-enter the update loop as messages.
func waitForChange(ws *workspace) tea.Cmd {
	return func() tea.Msg {
		<-ws.changed
		return docsChangedMsg{}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.project.setSize(msg.Width, msg.Height)
		a.history.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.project.close()
			return a, tea.Quit
		}
		a.banner = ""

	case errMsg:
		a.banner = msg.err.Error()
		return a, nil

	case restoredMsg:
		if msg.state == session.StateAuthenticated {
			a.page = pageDashboard
			return a, a.loadDashboardCmd()
		}
		a.page = pageLogin
		return a, nil

	case signedInMsg:
		if msg.err != nil {
			a.login.errText = msg.err.Error()
			return a, nil
		}
		a.page = pageDashboard
		return a, a.loadDashboardCmd()

	case dashboardLoadedMsg:
		a.dash.loading = false
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
			return a, nil
		}
		return a, nil

	case projectOpenedMsg:
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
			return a, nil
		}
		a.project = newProjectModel(a.styles, msg.ws, a.exts)
		a.project.setSize(a.width, a.height)
		a.page = pageProject
		var cmds []tea.Cmd
		if msg.ws.docs.Project().Status == domain.StatusProcessing {
			ws := msg.ws
			ws.docs.StartPolling(func() {
				select {
				case ws.changed <- struct{}{}:
				default:
				}
			})
			cmds = append(cmds, waitForChange(ws))
		}
		return a, tea.Batch(cmds...)
	}

	switch a.page {
	case pageLogin:
		return a.updateLogin(msg)
	case pageDashboard:
		return a.updateDashboard(msg)
	case pageProject:
		return a.updateProject(msg)
	case pageHistory:
		return a.updateHistory(msg)
	}
	return a, nil
}

func (a App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.sess.State() == session.StateLoading {
		return a, nil
	}
	model, cmd, submitted := a.login.update(msg)
	a.login = model
	if submitted != "" {
		sess := a.sess
		return a, func() tea.Msg {
			return signedInMsg{err: sess.SignIn(submitted)}
		}
	}
	return a, cmd
}

func (a App) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, action := a.dash.update(msg)
	a.dash = model
	switch action.kind {
	case dashActionOpen:
		return a, a.openProjectCmd(action.project)
	case dashActionCreate:
		projects := a.projects
		form := action.form
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			project, err := projects.Create(ctx, form.name, form.subject, form.files())
			return projectCreatedMsg{project: project, err: err}
		}
	case dashActionDelete:
		projects := a.projects
		id := action.project.ID
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return projectDeletedMsg{err: projects.Delete(ctx, id)}
		}
	case dashActionHistory:
		a.page = pageHistory
		return a, nil
	case dashActionSignOut:
		sess := a.sess
		return a, func() tea.Msg {
			if err := sess.SignOut(); err != nil {
				return errMsg{err: err}
			}
			return restoredMsg{state: session.StateAnonymous}
		}
	case dashActionRefresh:
		a.dash.loading = true
		return a, a.loadDashboardCmd()
	}

	switch msg := msg.(type) {
	case projectCreatedMsg:
		a.dash.creating = false
		if msg.err != nil {
			// A partial upload failure still leaves the project created;
			// the dashboard shows it alongside the error.
			a.banner = friendlyError(msg.err)
		}
		return a, a.loadDashboardCmd()
	case projectDeletedMsg:
		if msg.err != nil {
			a.banner = friendlyError(msg.err)
		}
		return a, nil
	}
	return a, nil
}

func (a App) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, back := a.history.update(msg)
	a.history = model
	if back {
		a.page = pageDashboard
	}
	return a, nil
}

func (a App) View() string {
	var body string
	switch {
	case a.sess.State() == session.StateLoading:
		body = a.styles.Muted.Render("Restoring session...")
	case a.page == pageLogin:
		body = a.login.view()
	case a.page == pageDashboard:
		body = a.dash.view()
	case a.page == pageProject:
		body = a.project.view()
	case a.page == pageHistory:
		body = a.history.view()
	}

	header := a.styles.Header.Render("MnemonIQ")
	if identity, ok := a.sess.Identity(); ok && identity.Email != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, a.styles.Footer.Render(identity.Email))
	}
	out := header + "\n\n" + body
	if a.banner != "" {
		out += "\n\n" + a.styles.Banner.Render(a.banner)
	}
	return out
}

// opContext bounds one user-triggered network operation. Uploads and
// generation calls can be slow, so the bound is generous.
func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Minute)
}

// friendlyError maps the error taxonomy onto user-facing text.
func friendlyError(err error) string {
	switch e := err.(type) {
	case *apiclient.AuthError:
		return "Session expired. Please sign in again."
	case *apiclient.APIError:
		return fmt.Sprintf("Server error (%d): %s", e.Status, e.Message)
	case *state.ValidationError:
		return e.Msg
	case *state.PartialError:
		return e.Error()
	default:
		return err.Error()
	}
}
