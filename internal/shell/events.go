package shell

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/contextiq/contextiq-cli/internal/workspace"
)

// eventMsg carries a controller event into the Bubble Tea loop.
type eventMsg workspace.Event

// searchTickMsg fires once the search input has been idle for the debounce
// interval. Only the tick matching the latest keystroke is acted on.
type searchTickMsg struct {
	seq   int
	query string
}

// Notifier is the controller Listener feeding the UI. Events are queued and
// drained one at a time by listenEvents. After Close, Notify discards events
// instead of waiting for a reader.
type Notifier struct {
	ch   chan workspace.Event
	done chan struct{}
	once sync.Once
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan workspace.Event, 64), done: make(chan struct{})}
}

func (n *Notifier) Notify(e workspace.Event) {
	select {
	case n.ch <- e:
	case <-n.done:
	}
}

// Close stops delivery. Safe to call more than once.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.done) })
}

// listenEvents waits for the next controller event.
func listenEvents(n *Notifier) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-n.ch:
			return eventMsg(e)
		case <-n.done:
			return nil
		}
	}
}

// needsRefresh reports whether a terminal event should reload the document
// list: documents or the session changed on the server.
func needsRefresh(e workspace.Event) bool {
	if e.Kind != workspace.EventSucceeded {
		return false
	}
	switch e.Action {
	case workspace.ActionUpload, workspace.ActionDelete, workspace.ActionLogout, workspace.ActionLogin:
		return true
	}
	return false
}
