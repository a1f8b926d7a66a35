// Package workspace is the state machine behind every screen: the document
// collection, the selected document and the conversation about it. Every
// mutating action passes the same auth gate, and local state changes only
// once the backend has answered.
package workspace

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/session"
	"go.uber.org/zap"
)

// Gateway is the part of the API client the controller drives.
type Gateway interface {
	ListDocuments(ctx context.Context, query string) ([]api.Document, error)
	UploadDocument(ctx context.Context, path, title string) (*api.Document, error)
	CreateDocument(ctx context.Context, title, content string) (*api.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	QueryDocument(ctx context.Context, documentID, question string) ([]api.AnswerChunk, error)
}

// Sessions is the auth store as the controller sees it. *session.Store
// implements it.
type Sessions interface {
	Current() *session.Session
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Register(ctx context.Context, email, password, name string) error
	Logout(ctx context.Context) error
}

// Option configures a Controller at construction.
type Option func(*Controller)

// WithLogger sets the logger; a nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithListener registers the listener that receives controller events.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// Controller is safe for concurrent use. Network calls run without the lock,
// so several actions may be outstanding; their results are applied in the
// order they complete.
type Controller struct {
	gw       Gateway
	sessions Sessions
	log      *zap.Logger

	mu           sync.Mutex
	listener     Listener
	collection   Collection
	selection    *api.Document
	generation   uint64 // bumped on every selection change
	conversation Conversation
}

// New returns a Controller with an empty collection and no selection.
func New(gw Gateway, sessions Sessions, opts ...Option) *Controller {
	c := &Controller{gw: gw, sessions: sessions, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetListener replaces the event listener.
func (c *Controller) SetListener(l Listener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

// Snapshot returns a consistent copy of the workspace.
func (c *Controller) Snapshot() Snapshot {
	sess := c.sessions.Current()
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		Session:      sess,
		Collection:   c.collection.clone(),
		Conversation: c.conversation.clone(),
	}
	if c.selection != nil {
		sel := *c.selection
		snap.Selection = &sel
	}
	return snap
}

func (c *Controller) emit(e Event) {
	c.mu.Lock()
	l := c.listener
	c.mu.Unlock()
	if l != nil {
		l.Notify(e)
	}
}

func (c *Controller) fail(a Action, err error, docID string) error {
	c.emit(Event{Kind: EventFailed, Action: a, DocumentID: docID, Err: err})
	return err
}

// gate must run before anything else in a gated action.
func (c *Controller) gate(a Action) error {
	if !RequiresAuth(a) || c.sessions.Current() != nil {
		return nil
	}
	c.log.Debug("action requires sign-in", zap.String("action", string(a)))
	c.emit(Event{Kind: EventAuthRequired, Action: a, Err: ErrAuthRequired})
	return ErrAuthRequired
}

// Refresh replaces the collection with the server's list for query.
// Concurrent refreshes are not cancelled: whichever response completes last
// wins, even if it was issued first.
func (c *Controller) Refresh(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	c.mu.Lock()
	c.collection.Status = CollectionLoading
	c.collection.Query = query
	c.collection.Err = nil
	c.mu.Unlock()
	c.emit(Event{Kind: EventChanged, Action: ActionRefresh})

	docs, err := c.gw.ListDocuments(ctx, query)

	c.mu.Lock()
	if err != nil {
		c.collection.Status = CollectionError
		c.collection.Err = err
		c.mu.Unlock()
		c.log.Warn("refresh failed", zap.String("query", query), zap.Error(err))
		return c.fail(ActionRefresh, err, "")
	}
	c.collection = Collection{Status: CollectionReady, Documents: dedupe(docs), Query: query}
	c.reconcileSelectionLocked()
	n := len(c.collection.Documents)
	c.mu.Unlock()

	c.log.Debug("refresh applied", zap.String("query", query), zap.Int("documents", n))
	c.emit(Event{Kind: EventSucceeded, Action: ActionRefresh})
	return nil
}

// Upload sends a local file. The new document is spliced into the
// collection without a round-trip.
func (c *Controller) Upload(ctx context.Context, path, title string) (*api.Document, error) {
	if err := c.gate(ActionUpload); err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, c.fail(ActionUpload, &ValidationError{Field: "file", Message: "no file chosen"}, "")
	}
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return nil, c.fail(ActionUpload, &ValidationError{Field: "file", Message: fmt.Sprintf("%s is not a readable file", path)}, "")
	}

	doc, err := c.gw.UploadDocument(ctx, path, strings.TrimSpace(title))
	if err != nil {
		c.log.Warn("upload failed", zap.String("path", path), zap.Error(err))
		return nil, c.fail(ActionUpload, err, "")
	}
	return c.applyCreated(*doc), nil
}

// CreateFromText stores text content as a new document. It is gated and
// spliced exactly like Upload.
func (c *Controller) CreateFromText(ctx context.Context, title, content string) (*api.Document, error) {
	if err := c.gate(ActionUpload); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, c.fail(ActionUpload, &ValidationError{Field: "title", Message: "title is required"}, "")
	}
	if strings.TrimSpace(content) == "" {
		return nil, c.fail(ActionUpload, &ValidationError{Field: "content", Message: "document has no text"}, "")
	}

	doc, err := c.gw.CreateDocument(ctx, title, content)
	if err != nil {
		c.log.Warn("create failed", zap.String("title", title), zap.Error(err))
		return nil, c.fail(ActionUpload, err, "")
	}
	return c.applyCreated(*doc), nil
}

func (c *Controller) applyCreated(doc api.Document) *api.Document {
	c.mu.Lock()
	if i := c.collection.Index(doc.ID); i >= 0 {
		c.collection.Documents[i] = doc
	} else {
		c.collection.Documents = append([]api.Document{doc}, c.collection.Documents...)
	}
	if c.selection != nil && c.selection.ID == doc.ID {
		sel := doc
		c.selection = &sel
	}
	c.mu.Unlock()

	c.log.Debug("document added", zap.String("document_id", doc.ID))
	c.emit(Event{Kind: EventSucceeded, Action: ActionUpload, DocumentID: doc.ID, Title: doc.Title})
	out := doc
	return &out
}

// Delete removes a document. On failure nothing local changes. On success
// the removal and, when it was selected, the cleared selection and
// conversation are applied in one step.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.gate(ActionDelete); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return c.fail(ActionDelete, &ValidationError{Field: "document", Message: "no document given"}, "")
	}

	if err := c.gw.DeleteDocument(ctx, id); err != nil {
		c.log.Warn("delete failed", zap.String("document_id", id), zap.Error(err))
		return c.fail(ActionDelete, err, id)
	}

	c.mu.Lock()
	var title string
	if i := c.collection.Index(id); i >= 0 {
		title = c.collection.Documents[i].Title
		docs := make([]api.Document, 0, len(c.collection.Documents)-1)
		docs = append(docs, c.collection.Documents[:i]...)
		docs = append(docs, c.collection.Documents[i+1:]...)
		c.collection.Documents = docs
	}
	if c.selection != nil && c.selection.ID == id {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()

	c.log.Debug("document deleted", zap.String("document_id", id))
	c.emit(Event{Kind: EventSucceeded, Action: ActionDelete, DocumentID: id, Title: title})
	return nil
}

// Select focuses a document from the collection and starts an empty
// conversation, even when it was already selected. Anonymous users may select.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	i := c.collection.Index(id)
	if i < 0 {
		c.mu.Unlock()
		return c.fail(ActionSelect, &ValidationError{Field: "document", Message: fmt.Sprintf("%q is not in the document list", id)}, id)
	}
	doc := c.collection.Documents[i]
	c.selection = &doc
	c.generation++
	c.conversation = Conversation{}
	c.mu.Unlock()

	c.emit(Event{Kind: EventSucceeded, Action: ActionSelect, DocumentID: doc.ID, Title: doc.Title})
	return nil
}

// ClearSelection drops the selection and its conversation.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.clearSelectionLocked()
	c.mu.Unlock()
	c.emit(Event{Kind: EventSucceeded, Action: ActionSelect})
}

func (c *Controller) clearSelectionLocked() {
	c.selection = nil
	c.generation++
	c.conversation = Conversation{}
}

// reconcileSelectionLocked keeps the selection pointing at a document that is
// still in the collection, refreshed to the server's latest copy.
func (c *Controller) reconcileSelectionLocked() {
	if c.selection == nil {
		return
	}
	i := c.collection.Index(c.selection.ID)
	if i < 0 {
		c.log.Debug("selection left the collection", zap.String("document_id", c.selection.ID))
		c.clearSelectionLocked()
		return
	}
	doc := c.collection.Documents[i]
	c.selection = &doc
}

// Query asks question about the selected document and appends the answer
// as a new turn. If the selection changed while the call was out, the
// result is dropped and ErrStaleResponse is returned without an event.
func (c *Controller) Query(ctx context.Context, question string) (*Turn, error) {
	if err := c.gate(ActionQuery); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, c.fail(ActionQuery, &ValidationError{Field: "question", Message: "question is empty"}, "")
	}

	c.mu.Lock()
	if c.selection == nil {
		c.mu.Unlock()
		return nil, c.fail(ActionQuery, &ValidationError{Field: "selection", Message: "select a document first"}, "")
	}
	if c.conversation.Status == ConversationPending {
		c.mu.Unlock()
		return nil, c.fail(ActionQuery, &ValidationError{Field: "question", Message: "another question is still pending"}, "")
	}
	gen := c.generation
	docID := c.selection.ID
	c.conversation.Status = ConversationPending
	c.conversation.Pending = q
	c.conversation.Err = nil
	c.mu.Unlock()
	c.emit(Event{Kind: EventChanged, Action: ActionQuery, DocumentID: docID})

	chunks, err := c.gw.QueryDocument(ctx, docID, q)

	c.mu.Lock()
	if gen != c.generation || c.selection == nil || c.selection.ID != docID {
		c.mu.Unlock()
		c.log.Debug("discarding stale query response", zap.String("document_id", docID))
		return nil, ErrStaleResponse
	}
	c.conversation.Pending = ""
	if err != nil {
		c.conversation.Status = ConversationError
		c.conversation.Err = err
		c.mu.Unlock()
		c.log.Warn("query failed", zap.String("document_id", docID), zap.Error(err))
		return nil, c.fail(ActionQuery, err, docID)
	}
	if chunks == nil {
		chunks = []api.AnswerChunk{}
	}
	turn := Turn{Question: q, Chunks: chunks}
	c.conversation.Turns = append(c.conversation.Turns, turn)
	c.conversation.Status = ConversationReady
	c.mu.Unlock()

	c.emit(Event{Kind: EventSucceeded, Action: ActionQuery, DocumentID: docID})
	out := Turn{Question: q, Chunks: append([]api.AnswerChunk{}, chunks...)}
	return &out, nil
}

// Login signs in through the session store.
func (c *Controller) Login(ctx context.Context, email, password string) (*session.Session, error) {
	sess, err := c.sessions.Login(ctx, email, password)
	if err != nil {
		return nil, c.fail(ActionLogin, err, "")
	}
	c.emit(Event{Kind: EventSucceeded, Action: ActionLogin, Title: sess.Label()})
	return sess, nil
}

// Register creates an account; the user must verify it and then Login.
func (c *Controller) Register(ctx context.Context, email, password, name string) error {
	if err := c.sessions.Register(ctx, email, password, name); err != nil {
		return c.fail(ActionRegister, err, "")
	}
	c.emit(Event{Kind: EventSucceeded, Action: ActionRegister, Title: strings.TrimSpace(email)})
	return nil
}

// Logout always ends the session locally and clears the selection and
// conversation with it. The collection is kept; callers usually refresh
// it since anonymous visibility may differ.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.sessions.Logout(ctx)

	c.mu.Lock()
	c.clearSelectionLocked()
	c.mu.Unlock()

	if err != nil {
		return c.fail(ActionLogout, err, "")
	}
	c.emit(Event{Kind: EventSucceeded, Action: ActionLogout})
	return nil
}
