package settings

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFileIsZero(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if err := s.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Get(); len(got.CollapsedSections) != 0 {
		t.Errorf("settings = %+v, want zero", got)
	}
}

func TestSetCollapsed_PersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raido", "settings.yaml")

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCollapsed("On Hold", true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCollapsed("Deferred Effort", true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCollapsed("On Hold", false); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	got := reloaded.Get().CollapsedSections
	want := []string{"Deferred Effort"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collapsed = %v, want %v", got, want)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if err := s.SetCollapsed("Active", true); err != nil {
		t.Fatal(err)
	}
	got := s.Get()
	got.CollapsedSections[0] = "mutated"
	if s.Get().CollapsedSections[0] != "Active" {
		t.Error("Get leaked internal slice")
	}
}
