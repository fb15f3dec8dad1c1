package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bergsten/raido/internal/index"
	"github.com/bergsten/raido/internal/notify"
	"github.com/bergsten/raido/internal/testutil"
	"github.com/bergsten/raido/internal/outline"
	"github.com/bergsten/raido/internal/projects"
	"github.com/bergsten/raido/internal/queue"
	"github.com/bergsten/raido/internal/reconcile"
	"github.com/bergsten/raido/internal/settings"
	"github.com/bergsten/raido/internal/storage"
)

const testBoard = "## Active\n- 🎯 [[Alpha]]\n## Coming Soon\n## Deferred Effort\n## On Hold\n### Parked\n---\nfree-form notes\n"

type testEnv struct {
	server *httptest.Server
	vault  storage.Provider
	store  *projects.Store
	db     *index.DB
}

func setup(t *testing.T, authEnabled bool, token string) *testEnv {
	t.Helper()

	dir, vault := testutil.TestVault(t)
	db := testutil.TestDB(t)

	vault.Write("Priorities.md", []byte(testBoard))
	vault.Write("Projects/Alpha.md", []byte("---\nstatus: active\ntags: [project]\ncustom: keepme\n---\n# Alpha\n"))
	vault.Write("Projects/Beta.md", []byte("---\nstatus: on-hold\ntags: [project]\n---\n# Beta\n"))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := index.Sync(db, vault, "project", "Priorities.md", logger); err != nil {
		t.Fatal(err)
	}

	store := projects.NewStore(vault, projects.NewPathIndex(vault, "Projects"))
	q := queue.New(logger, nil)
	engine := reconcile.NewEngine(vault, "Priorities.md", store, db, q, notify.Func(func(string) {}), logger)
	st := settings.NewStore(filepath.Join(dir, ".raido", "settings.yaml"))

	router := NewRouter(engine, db, store, st, authEnabled, token, nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, vault: vault, store: store, db: db}
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) board(t *testing.T) *outline.Document {
	t.Helper()
	data, err := e.vault.Read("Priorities.md")
	if err != nil {
		t.Fatal(err)
	}
	return outline.Parse(string(data), nil)
}

func TestGetBoard(t *testing.T) {
	env := setup(t, false, "")

	resp := do(t, http.MethodGet, env.server.URL+"/board", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body BoardResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Sections) != 4 {
		t.Errorf("sections = %d, want 4", len(body.Sections))
	}
	// Beta is tracked but not on the board.
	found := false
	for _, name := range body.Unlisted {
		if name == "Beta" {
			found = true
		}
	}
	if !found {
		t.Errorf("unlisted = %v, want Beta present", body.Unlisted)
	}
}

func TestSetStatus_MovesEntryAndPreservesNotes(t *testing.T) {
	env := setup(t, false, "")

	resp := do(t, http.MethodPost, env.server.URL+"/projects/Alpha/status", `{"status":"on-hold"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	doc := env.board(t)
	_, s, _ := doc.FindEntry("Alpha")
	if s == nil || s.Name != "On Hold" {
		t.Fatalf("Alpha in %v, want On Hold", s)
	}

	raw, _ := env.vault.Read("Priorities.md")
	if !strings.Contains(string(raw), "---\nfree-form notes\n") {
		t.Errorf("trailing region lost:\n%s", raw)
	}

	rec, err := env.store.Get("Alpha")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != "on-hold" || rec.Extra["custom"] != "keepme" {
		t.Errorf("record = %+v", rec)
	}
}

func TestSetStatus_UnknownStatusRejected(t *testing.T) {
	env := setup(t, false, "")
	resp := do(t, http.MethodPost, env.server.URL+"/projects/Alpha/status", `{"status":"someday"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSetStatus_MissingProject(t *testing.T) {
	env := setup(t, false, "")
	resp := do(t, http.MethodPost, env.server.URL+"/projects/Ghost/status", `{"status":"active"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMove_WritesBackAttributes(t *testing.T) {
	env := setup(t, false, "")

	resp := do(t, http.MethodPost, env.server.URL+"/board/move",
		`{"project":"Alpha","section":"On Hold","group":"Parked"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	doc := env.board(t)
	_, s, g := doc.FindEntry("Alpha")
	if s == nil || s.Name != "On Hold" || g == nil || g.Name != "Parked" {
		t.Fatalf("Alpha at %v/%v", s, g)
	}

	rec, _ := env.store.Get("Alpha")
	if rec.Status != "on-hold" || rec.Group != "Parked" {
		t.Errorf("write-back: %+v", rec)
	}
}

func TestSetGroup(t *testing.T) {
	env := setup(t, false, "")

	// Move Alpha into On Hold first so the Parked group is in its section.
	do(t, http.MethodPost, env.server.URL+"/projects/Alpha/status", `{"status":"on-hold"}`)

	resp := do(t, http.MethodPost, env.server.URL+"/projects/Alpha/group", `{"group":"Parked"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	doc := env.board(t)
	if _, _, g := doc.FindEntry("Alpha"); g == nil || g.Name != "Parked" {
		t.Errorf("Alpha group = %v, want Parked", g)
	}
}

func TestResync_PlacesTrackedProjects(t *testing.T) {
	env := setup(t, false, "")

	resp := do(t, http.MethodPost, env.server.URL+"/board/resync", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body ResyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Queued != 2 {
		t.Errorf("queued = %d, want 2", body.Queued)
	}

	doc := env.board(t)
	if _, s, _ := doc.FindEntry("Beta"); s == nil || s.Name != "On Hold" {
		t.Error("Beta not placed by resync")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	env := setup(t, false, "")

	resp := do(t, http.MethodPut, env.server.URL+"/settings", `{"collapsed_sections":["On Hold"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, env.server.URL+"/settings", "")
	var got settings.Settings
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.CollapsedSections) != 1 || got.CollapsedSections[0] != "On Hold" {
		t.Errorf("settings = %+v", got)
	}
}

func TestAuth(t *testing.T) {
	env := setup(t, true, "secret")

	resp := do(t, http.MethodGet, env.server.URL+"/board", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/board", nil)
	req.Header.Set("Authorization", "Bearer secret")
	ok, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 with token", ok.StatusCode)
	}
}
