package workspace

// Action names a user intent handled by the controller.
type Action string

const (
	ActionRefresh  Action = "refresh"
	ActionUpload   Action = "upload"
	ActionDelete   Action = "delete"
	ActionSelect   Action = "select"
	ActionQuery    Action = "query"
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
	ActionLogout   Action = "logout"
)

// RequiresAuth is the single gate predicate: mutating actions need a session.
func RequiresAuth(a Action) bool {
	switch a {
	case ActionUpload, ActionDelete, ActionQuery:
		return true
	}
	return false
}

// EventKind distinguishes progress notifications from terminal outcomes.
type EventKind int

const (
	// EventChanged means state moved (e.g. into Loading or Pending); re-render.
	EventChanged EventKind = iota
	EventSucceeded
	EventFailed
	// EventAuthRequired is the distinct "must authenticate" signal.
	EventAuthRequired
)

// Event is delivered to the Listener after every state transition. Each
// user action produces exactly one terminal event, except stale responses,
// which produce none.
type Event struct {
	Kind       EventKind
	Action     Action
	DocumentID string
	Title      string
	Err        error
}

// Terminal reports whether the event ends an action.
func (e Event) Terminal() bool { return e.Kind != EventChanged }

// Listener receives events. It is called without the controller lock held
// and must not block for long.
type Listener interface {
	Notify(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) Notify(e Event) { f(e) }
