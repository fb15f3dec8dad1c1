package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bergsten/raido/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndGetProject(t *testing.T) {
	db := testDB(t)

	row := ProjectRow{
		Name:      "Alpha",
		Path:      "Projects/Alpha.md",
		Title:     "Project Alpha",
		Status:    "active",
		Group:     "Foundation",
		Emoji:     "🎯",
		Tags:      []string{"project", "go"},
		Tracked:   true,
		Checksum:  "abc",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertProject(row); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetProject("Alpha")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != "active" || got.Group != "Foundation" || !got.Tracked {
		t.Errorf("row = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "project" {
		t.Errorf("tags = %v", got.Tags)
	}

	// Upsert replaces.
	row.Status = "on-hold"
	if err := db.UpsertProject(row); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetProject("Alpha")
	if got.Status != "on-hold" {
		t.Errorf("status = %q after upsert", got.Status)
	}
}

func TestGetProject_Missing(t *testing.T) {
	db := testDB(t)
	got, err := db.GetProject("Ghost")
	if err != nil || got != nil {
		t.Errorf("got %+v, %v; want nil, nil", got, err)
	}
}

func TestListProjects_StatusFilter(t *testing.T) {
	db := testDB(t)
	for _, p := range []ProjectRow{
		{Name: "B", Path: "B.md", Status: "active"},
		{Name: "A", Path: "A.md", Status: "active"},
		{Name: "C", Path: "C.md", Status: "on-hold"},
	} {
		if err := db.UpsertProject(p); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.ListProjects("")
	if err != nil || len(all) != 3 {
		t.Fatalf("all = %v, %v", all, err)
	}
	if all[0].Name != "A" {
		t.Errorf("not ordered by name: %v", all)
	}

	active, err := db.ListProjects("active")
	if err != nil || len(active) != 2 {
		t.Errorf("active = %v, %v", active, err)
	}
}

func TestTrackedProjects(t *testing.T) {
	db := testDB(t)
	db.UpsertProject(ProjectRow{Name: "Tracked", Path: "t.md", Tracked: true})
	db.UpsertProject(ProjectRow{Name: "Plain", Path: "p.md"})

	names, err := db.TrackedProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Tracked" {
		t.Errorf("tracked = %v", names)
	}
}

func TestDeleteByPath(t *testing.T) {
	db := testDB(t)
	db.UpsertProject(ProjectRow{Name: "Alpha", Path: "Projects/Alpha.md"})
	if err := db.DeleteByPath("Projects/Alpha.md"); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetProject("Alpha"); got != nil {
		t.Errorf("row survived delete: %+v", got)
	}
}

func TestSync_IndexesVaultAndSkipsBoard(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store.Write("Priorities.md", []byte("## Active\n- [[Alpha]]\n"))
	store.Write("Projects/Alpha.md", []byte("---\nstatus: active\ntags: [project]\n---\n"))
	store.Write("Projects/Beta.md", []byte("---\nstatus: on-hold\n---\n"))

	if err := Sync(db, store, "project", "Priorities.md", logger); err != nil {
		t.Fatal(err)
	}

	if row, _ := db.GetProject("Alpha"); row == nil || !row.Tracked || row.Status != "active" {
		t.Errorf("Alpha = %+v", row)
	}
	if row, _ := db.GetProject("Beta"); row == nil || row.Tracked {
		t.Errorf("Beta = %+v", row)
	}
	if row, _ := db.GetProject("Priorities"); row != nil {
		t.Errorf("board indexed as project: %+v", row)
	}

	// Removing a note removes its row on the next sync.
	os.Remove(filepath.Join(dir, "Projects", "Beta.md"))
	if err := Sync(db, store, "project", "Priorities.md", logger); err != nil {
		t.Fatal(err)
	}
	if row, _ := db.GetProject("Beta"); row != nil {
		t.Errorf("stale row survived: %+v", row)
	}
}
