// Package shell is the interactive workspace: a session bar, the document
// rail and the active conversation, rendered from controller snapshots.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/session"
	"github.com/contextiq/contextiq-cli/internal/workspace"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeQuestion
	modeUpload
	modeLogin
	modeConfirmDelete
)

const railWidth = 34

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	ctrl     *workspace.Controller
	events   *Notifier
	debounce time.Duration
	log      *zap.Logger

	snap    workspace.Snapshot
	mode    mode
	cursor  int
	status  string
	isError bool

	search     textinput.Model
	searchSeq  int
	question   textinput.Model
	path       textinput.Model
	email      textinput.Model
	password   textinput.Model
	loginField int
	deleteID   string

	spinner spinner.Model
	convo   viewport.Model
	width   int
	height  int
}

// New builds the model. events must be registered as the controller's
// listener before the program starts.
func New(ctx context.Context, ctrl *workspace.Controller, events *Notifier, debounce time.Duration, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	search := textinput.New()
	search.Placeholder = "search documents"
	search.Prompt = "/ "
	search.CharLimit = 200

	question := textinput.New()
	question.Placeholder = "ask about the selected document (tab)"
	question.Prompt = "? "
	question.CharLimit = 2000

	path := textinput.New()
	path.Placeholder = "path to a file"
	path.Prompt = "upload: "

	email := textinput.New()
	email.Placeholder = "email"
	email.Prompt = "email: "

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor))

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		events:   events,
		debounce: debounce,
		log:      log,
		snap:     ctrl.Snapshot(),
		search:   search,
		question: question,
		path:     path,
		email:    email,
		password: password,
		spinner:  sp,
		convo:    viewport.New(60, 10),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenEvents(m.events),
		m.refresh(""),
		m.spinner.Tick,
		textinput.Blink,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		return m.handleEvent(workspace.Event(msg))

	case searchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		return m, m.refresh(msg.query)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeQuestion:
			return m.updateQuestion(msg)
		case modeUpload:
			return m.updateUpload(msg)
		case modeLogin:
			return m.updateLogin(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == modeBrowse {
		var cmd tea.Cmd
		m.convo, cmd = m.convo.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEvent(e workspace.Event) (tea.Model, tea.Cmd) {
	m.snap = m.ctrl.Snapshot()
	m.clampCursor()
	m.renderConversation()

	cmds := []tea.Cmd{listenEvents(m.events)}
	if e.Terminal() {
		m.status, m.isError = describeEvent(e)
	}
	if needsRefresh(e) {
		cmds = append(cmds, m.refresh(m.snap.Collection.Query))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	docs := m.snap.Collection.Documents
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(docs)-1 {
			m.cursor++
		}
	case "enter":
		if d, ok := m.cursorDoc(); ok {
			return m, m.run(func(context.Context) error { return m.ctrl.Select(d.ID) })
		}
	case "esc":
		return m, m.run(func(context.Context) error { m.ctrl.ClearSelection(); return nil })
	case "r":
		return m, m.refresh(m.search.Value())
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "tab":
		m.mode = modeQuestion
		return m, m.question.Focus()
	case "u":
		m.mode = modeUpload
		m.path.Reset()
		return m, m.path.Focus()
	case "d":
		if d, ok := m.cursorDoc(); ok {
			m.mode = modeConfirmDelete
			m.deleteID = d.ID
			m.status, m.isError = fmt.Sprintf("Delete %q? (y/n)", d.Title), false
		}
	case "l":
		if m.snap.Session == nil {
			m.mode = modeLogin
			m.loginField = 0
			m.email.Reset()
			m.password.Reset()
			m.password.Blur()
			return m, m.email.Focus()
		}
	case "L":
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Logout(ctx) })
	default:
		var cmd tea.Cmd
		m.convo, cmd = m.convo.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	m.searchSeq++
	seq, query := m.searchSeq, m.search.Value()
	tick := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, query: query}
	})
	return m, tea.Batch(cmd, tick)
}

func (m Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		m.mode = modeBrowse
		m.question.Blur()
		return m, nil
	case "enter":
		q := m.question.Value()
		m.question.Reset()
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.Query(ctx, q)
			return err
		})
	}
	var cmd tea.Cmd
	m.question, cmd = m.question.Update(msg)
	return m, cmd
}

func (m Model) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.path.Blur()
		return m, nil
	case "enter":
		p := strings.TrimSpace(m.path.Value())
		m.mode = modeBrowse
		m.path.Blur()
		m.status, m.isError = "Uploading "+p+"…", false
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.Upload(ctx, p, "")
			return err
		})
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.email.Blur()
		m.password.Blur()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		return m.toggleLoginField()
	case "enter":
		if m.loginField == 0 {
			return m.toggleLoginField()
		}
		email, pw := m.email.Value(), m.password.Value()
		m.mode = modeBrowse
		m.email.Blur()
		m.password.Blur()
		m.password.Reset()
		m.status, m.isError = "Signing in…", false
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.Login(ctx, email, pw)
			return err
		})
	}
	var cmd tea.Cmd
	if m.loginField == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleLoginField() (tea.Model, tea.Cmd) {
	if m.loginField == 0 {
		m.loginField = 1
		m.email.Blur()
		return m, m.password.Focus()
	}
	m.loginField = 0
	m.password.Blur()
	return m, m.email.Focus()
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.deleteID
	m.mode = modeBrowse
	m.deleteID = ""
	if msg.String() != "y" && msg.String() != "Y" {
		m.status, m.isError = "Delete cancelled", false
		return m, nil
	}
	m.status, m.isError = "Deleting…", false
	return m, m.run(func(ctx context.Context) error { return m.ctrl.Delete(ctx, id) })
}

// run executes a controller action off the UI loop. Its outcome arrives as
// an event, so the command itself yields no message.
func (m Model) run(action func(ctx context.Context) error) tea.Cmd {
	ctx, log := m.ctx, m.log
	return func() tea.Msg {
		if err := action(ctx); err != nil && !errors.Is(err, workspace.ErrStaleResponse) {
			log.Debug("action finished with error", zap.Error(err))
		}
		return nil
	}
}

func (m Model) refresh(query string) tea.Cmd {
	return m.run(func(ctx context.Context) error { return m.ctrl.Refresh(ctx, query) })
}

func (m Model) cursorDoc() (api.Document, bool) {
	docs := m.snap.Collection.Documents
	if m.cursor < 0 || m.cursor >= len(docs) {
		return api.Document{}, false
	}
	return docs[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.snap.Collection.Documents)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) resize() {
	w := m.width - railWidth - 8
	if w < 20 {
		w = 20
	}
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	m.convo.Width = w
	m.convo.Height = h
	m.question.Width = w - 4
	m.search.Width = railWidth - 6
	m.renderConversation()
}

func (m *Model) renderConversation() {
	m.convo.SetContent(renderTurns(m.snap.Conversation, m.convo.Width))
	m.convo.GotoBottom()
}

// describeEvent is the one-line notification for a terminal event.
func describeEvent(e workspace.Event) (string, bool) {
	switch e.Kind {
	case workspace.EventAuthRequired:
		return "Sign in to " + string(e.Action) + " documents (press l)", true
	case workspace.EventFailed:
		return describeFailure(e), true
	}
	switch e.Action {
	case workspace.ActionUpload:
		return "Uploaded " + e.Title, false
	case workspace.ActionDelete:
		return "Deleted " + orID(e.Title, e.DocumentID), false
	case workspace.ActionLogin:
		return "Signed in as " + e.Title, false
	case workspace.ActionRegister:
		return "Account created; verify it, then sign in", false
	case workspace.ActionLogout:
		return "Signed out", false
	}
	return "", false
}

func describeFailure(e workspace.Event) string {
	var (
		ve    *workspace.ValidationError
		ae    *session.AuthError
		unrch *api.UnreachableError
	)
	switch {
	case errors.As(e.Err, &ve):
		return ve.Message
	case errors.As(e.Err, &ae):
		return "Sign-in failed: " + ae.Error()
	case errors.As(e.Err, &unrch):
		return fmt.Sprintf("%s failed: cannot reach %s", e.Action, unrch.Host)
	}
	return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
}

func orID(title, id string) string {
	if title != "" {
		return title
	}
	return id
}
