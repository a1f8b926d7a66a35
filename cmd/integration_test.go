package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/contextiq/contextiq-cli/internal/api"
	cfgpkg "github.com/contextiq/contextiq-cli/internal/config"
)

// backend is an in-memory stand-in for the auth and documents services.
type backend struct {
	mu     sync.Mutex
	docs   []api.Document
	nextID int
	asked  []string
}

func (b *backend) questions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.asked...)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "pw" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"non_field_errors": []string{"Unable to log in with provided credentials."}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access":  "tok",
			"refresh": "ref",
			"user":    map[string]string{"id": "u1", "email": req.Email, "name": "Ada", "role": "member"},
		})
	})
	mux.HandleFunc("/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Successfully logged out."})
	})
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "u1", "email": "ada@example.com", "name": "Ada", "phone_number": "+1 555 0100"})
	})
	mux.HandleFunc("/api/documents/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/documents/"), "/")
		switch {
		case r.Method == http.MethodGet:
			q := strings.ToLower(r.URL.Query().Get("q"))
			out := []api.Document{}
			for _, d := range b.docs {
				if q == "" || strings.Contains(strings.ToLower(d.Title), q) {
					out = append(out, d)
				}
			}
			writeJSON(w, http.StatusOK, out)
		case r.Method == http.MethodPost && id == "":
			title := ""
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
					return
				}
				title = r.FormValue("title")
				if title == "" {
					_, fh, _ := r.FormFile("file")
					title = fh.Filename
				}
			} else {
				var req struct {
					Title        string `json:"title"`
					ParseContent string `json:"parse_content"`
				}
				_ = json.NewDecoder(r.Body).Decode(&req)
				title = req.Title
			}
			b.nextID++
			d := api.Document{ID: fmt.Sprintf("doc-%d", b.nextID), Title: title, CreatedAt: time.Now().UTC()}
			b.docs = append(b.docs, d)
			writeJSON(w, http.StatusCreated, d)
		case r.Method == http.MethodDelete:
			for i, d := range b.docs {
				if d.ID == id {
					b.docs = append(b.docs[:i], b.docs[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/query/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DocumentID string `json:"document_id"`
			Query      string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.asked = append(b.asked, req.Query)
		b.mu.Unlock()
		results := []map[string]any{}
		if strings.Contains(req.Query, "budget") {
			results = append(results, map[string]any{
				"content":  "The budget was approved.",
				"metadata": map[string]string{"document_id": req.DocumentID, "title": "notes.txt"},
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func startBackend(t *testing.T) *backend {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	b := &backend{}
	srv := &http.Server{Handler: b.handler()}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	base := "http://" + ln.Addr().String()
	t.Setenv("CONTEXTIQ_API_URL", base+"/api")
	t.Setenv("CONTEXTIQ_AUTH_URL", base+"/auth")
	return b
}

// isolateHome points HOME at a temp dir so config and session stay local.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// runCmd executes the root command with args and optional stdin, returning
// everything written to stdout and stderr.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flags that may persist across invocations
	loginEmail, loginPasswordStdin = "", false
	docsSearch, docsJSON = "", false
	uploadTitle, uploadAsText = "", false
	whoamiRemote = false
	cfg = nil
	for _, c := range []string{"login", "docs", "upload", "whoami"} {
		sub, _, err := rootCmd.Find([]string{c})
		if err != nil {
			continue
		}
		for _, name := range []string{"email", "password-stdin", "search", "json", "title", "as-text", "remote"} {
			if f := sub.Flags().Lookup(name); f != nil {
				f.Changed = false
			}
		}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := runCmd(t, stdin, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestCLI_LoginUploadAskLogout(t *testing.T) {
	home := isolateHome(t)
	b := startBackend(t)

	notes := filepath.Join(home, "notes.txt")
	if err := os.WriteFile(notes, []byte("Meeting notes: the budget was approved."), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	out := mustRun(t, "pw\n", "login", "--email", "ada@example.com", "--password-stdin")
	if !strings.Contains(out, "Signed in as Ada") {
		t.Fatalf("unexpected login output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".contextiq", sessionFileName)); err != nil {
		t.Fatalf("session not persisted: %v", err)
	}

	out = mustRun(t, "", "whoami")
	if !strings.Contains(out, "email: ada@example.com") || !strings.Contains(out, "role: member") {
		t.Fatalf("unexpected whoami output: %q", out)
	}
	out = mustRun(t, "", "whoami", "--remote")
	if !strings.Contains(out, "phone_number: +1 555 0100") {
		t.Fatalf("remote profile missing: %q", out)
	}

	out = mustRun(t, "", "upload", notes)
	if !strings.Contains(out, "Document uploaded: notes.txt (doc-1)") {
		t.Fatalf("unexpected upload output: %q", out)
	}

	out = mustRun(t, "", "docs", "--json")
	var docs []api.Document
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("docs --json: %v\n%s", err, out)
	}
	if len(docs) != 1 || docs[0].ID != "doc-1" {
		t.Fatalf("unexpected docs: %+v", docs)
	}

	out = mustRun(t, "", "ask", "doc-1", "what", "about", "the", "budget?")
	if !strings.Contains(out, "The budget was approved.") || !strings.Contains(out, "[1] notes.txt") {
		t.Fatalf("unexpected answer: %q", out)
	}
	out = mustRun(t, "", "ask", "doc-1", "anything", "else?")
	if !strings.Contains(out, "No relevant content found") {
		t.Fatalf("expected no-results notice: %q", out)
	}

	mustRun(t, "", "delete", "doc-1")
	out = mustRun(t, "", "docs")
	if !strings.Contains(out, "(no documents)") {
		t.Fatalf("expected empty list: %q", out)
	}

	mustRun(t, "", "logout")
	out = mustRun(t, "", "whoami")
	if strings.TrimSpace(out) != "anonymous" {
		t.Fatalf("expected anonymous after logout: %q", out)
	}
	if q := b.questions(); len(q) != 2 {
		t.Fatalf("expected 2 queries, got %v", q)
	}
}

func TestCLI_LogoutClearsPartialStoredSession(t *testing.T) {
	home := isolateHome(t)
	startBackend(t)

	path := filepath.Join(home, ".contextiq", sessionFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"access_token":"stale"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, "", "logout")
	if !strings.Contains(out, "Not signed in") {
		t.Fatalf("unexpected logout output: %q", out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	if strings.Contains(string(b), "stale") {
		t.Fatalf("partial credentials left on disk: %s", b)
	}
}

func TestCLI_AnonymousAskIsRejectedWithoutRequest(t *testing.T) {
	isolateHome(t)
	b := startBackend(t)

	_, err := runCmd(t, "", "ask", "doc-1", "hello?")
	if err == nil || !strings.Contains(describeError(err), "sign in") {
		t.Fatalf("expected sign-in error, got %v", err)
	}
	if q := b.questions(); len(q) != 0 {
		t.Fatalf("no query should reach the backend: %v", q)
	}
}

func TestCLI_LoginWithBadPasswordKeepsAnonymous(t *testing.T) {
	isolateHome(t)
	startBackend(t)

	_, err := runCmd(t, "wrong\n", "login", "--email", "ada@example.com", "--password-stdin")
	if err == nil || !strings.Contains(err.Error(), "invalid email or password") {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	out := mustRun(t, "", "whoami")
	if strings.TrimSpace(out) != "anonymous" {
		t.Fatalf("expected anonymous: %q", out)
	}
}

func TestCLI_UploadAsTextAndSearch(t *testing.T) {
	home := isolateHome(t)
	startBackend(t)
	md := filepath.Join(home, "Quarterly Report.md")
	if err := os.WriteFile(md, []byte("# Q3\n\nRevenue grew."), 0o644); err != nil {
		t.Fatalf("write md: %v", err)
	}

	mustRun(t, "pw\n", "login", "--email", "ada@example.com", "--password-stdin")
	out := mustRun(t, "", "upload", md, "--as-text")
	if !strings.Contains(out, "Document uploaded: Q3 (doc-1)") {
		t.Fatalf("heading should become the title: %q", out)
	}
	out = mustRun(t, "", "upload", md, "--as-text", "--title", "Quarterly Report")
	if !strings.Contains(out, "Document uploaded: Quarterly Report (doc-2)") {
		t.Fatalf("--title should win: %q", out)
	}
	out = mustRun(t, "", "docs", "--search", "quarterly")
	if !strings.Contains(out, "Quarterly Report") || strings.Contains(out, "Q3") {
		t.Fatalf("search should match: %q", out)
	}
	out = mustRun(t, "", "docs", "--search", "nothing")
	if !strings.Contains(out, `(no documents match "nothing")`) {
		t.Fatalf("expected no matches: %q", out)
	}
}

func TestCLI_InitAndConfigSet(t *testing.T) {
	home := isolateHome(t)
	mustRun(t, "", "init", "--api-url", "https://ciq.example/api/v1/contextiq/")
	if _, err := runCmd(t, "", "init"); err == nil {
		t.Fatalf("second init should refuse to overwrite")
	}
	mustRun(t, "", "config", "set", "search_debounce_ms", "150")
	if _, err := runCmd(t, "", "config", "set", "log_level", "loud"); err == nil {
		t.Fatalf("expected invalid log level error")
	}

	saved, err := cfgpkg.Load(filepath.Join(home, ".contextiq", "config.yaml"))
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if saved.APIURL != "https://ciq.example/api/v1/contextiq" {
		t.Fatalf("api_url not saved: %s", saved.APIURL)
	}
	if saved.SearchDebounceMs != 150 {
		t.Fatalf("debounce not saved: %d", saved.SearchDebounceMs)
	}
}
