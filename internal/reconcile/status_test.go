package reconcile

import (
	"reflect"
	"testing"

	"github.com/bergsten/raido/internal/outline"
)

const boardFixture = "## Active\n- 🎯 [[Alpha]]\n### Foundation\n- [[Beta]]\n## Coming Soon\n## Deferred Effort\n## On Hold\n- [[Gamma]]\n"

func sectionOf(t *testing.T, doc *outline.Document, project string) string {
	t.Helper()
	_, s, _ := doc.FindEntry(project)
	if s == nil {
		return ""
	}
	return s.Name
}

func TestApplyStatus_SectionMapping(t *testing.T) {
	cases := []struct {
		status  string
		section string
	}{
		{StatusActive, SectionActive},
		{StatusComingSoon, SectionComingSoon},
		{StatusDeferred, SectionDeferred},
		{StatusOnHold, SectionOnHold},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			doc := outline.Parse(boardFixture, nil)
			changed, _ := applyStatus(doc, "Gamma", tc.status, nil)
			if got := sectionOf(t, doc, "Gamma"); got != tc.section {
				t.Errorf("Gamma in %q, want %q", got, tc.section)
			}
			if tc.section == SectionOnHold {
				if changed {
					t.Error("in-place status reported a change")
				}
			} else if !changed {
				t.Error("move not reported as change")
			}
			// Present in exactly one section.
			count := 0
			for _, s := range doc.Sections {
				for _, it := range s.Items {
					if it.Entry != nil && it.Entry.Project == "Gamma" {
						count++
					}
				}
			}
			if count != 1 {
				t.Errorf("Gamma appears %d times, want 1", count)
			}
		})
	}
}

func TestApplyStatus_CompleteRemovesEntry(t *testing.T) {
	doc := outline.Parse(boardFixture, nil)
	changed, cross := applyStatus(doc, "Beta", StatusComplete, nil)
	if !changed || cross {
		t.Errorf("changed=%v cross=%v, want true,false", changed, cross)
	}
	if e, _, _ := doc.FindEntry("Beta"); e != nil {
		t.Error("Beta still present after complete")
	}

	// Completing an absent project is a no-op.
	if changed, _ := applyStatus(doc, "Beta", StatusComplete, nil); changed {
		t.Error("second complete reported a change")
	}
}

func TestApplyStatus_UnknownStatusNoOp(t *testing.T) {
	doc := outline.Parse(boardFixture, nil)
	before := outline.Serialize(doc, "")
	if changed, _ := applyStatus(doc, "Alpha", "someday", nil); changed {
		t.Error("unknown status mutated the document")
	}
	if got := outline.Serialize(doc, ""); got != before {
		t.Errorf("document changed:\n%s", got)
	}
}

func TestApplyStatus_InsertsMissingEntry(t *testing.T) {
	doc := outline.Parse(boardFixture, nil)
	changed, cross := applyStatus(doc, "Newcomer", StatusActive, nil)
	if !changed || cross {
		t.Errorf("changed=%v cross=%v, want true,false", changed, cross)
	}
	if got := sectionOf(t, doc, "Newcomer"); got != SectionActive {
		t.Errorf("Newcomer in %q, want Active", got)
	}
}

func TestApplyStatus_Idempotent(t *testing.T) {
	doc := outline.Parse(boardFixture, nil)
	applyStatus(doc, "Alpha", StatusOnHold, nil)
	once := outline.Serialize(doc, "")

	changed, _ := applyStatus(doc, "Alpha", StatusOnHold, nil)
	if changed {
		t.Error("second apply reported a change")
	}
	if twice := outline.Serialize(doc, ""); twice != once {
		t.Errorf("not idempotent:\n%s\nvs\n%s", once, twice)
	}
}

// Cross-section moves drop group placement; in-section ones preserve it.
func TestApplyStatus_GroupHandling(t *testing.T) {
	doc := outline.Parse(boardFixture, nil)

	changed, cross := applyStatus(doc, "Beta", StatusActive, nil)
	if changed || cross {
		t.Errorf("in-section: changed=%v cross=%v, want false,false", changed, cross)
	}
	if _, _, g := doc.FindEntry("Beta"); g == nil || g.Name != "Foundation" {
		t.Error("in-section apply dropped group placement")
	}

	_, cross = applyStatus(doc, "Beta", StatusOnHold, nil)
	if !cross {
		t.Error("cross-section move not flagged")
	}
	if _, s, g := doc.FindEntry("Beta"); s.Name != SectionOnHold || g != nil {
		t.Errorf("Beta at %v/%v, want top-level On Hold", s, g)
	}
}

func TestStatusSectionTables(t *testing.T) {
	for status, section := range map[string]string{
		StatusActive:     SectionActive,
		StatusComingSoon: SectionComingSoon,
		StatusDeferred:   SectionDeferred,
		StatusOnHold:     SectionOnHold,
	} {
		if got, ok := SectionForStatus(status); !ok || got != section {
			t.Errorf("SectionForStatus(%q) = %q,%v", status, got, ok)
		}
		if got, ok := StatusForSection(section); !ok || got != status {
			t.Errorf("StatusForSection(%q) = %q,%v", section, got, ok)
		}
	}
	if _, ok := SectionForStatus(StatusComplete); ok {
		t.Error("complete must not map to a section")
	}
	if !reflect.DeepEqual(
		[]bool{KnownStatus(StatusComplete), KnownStatus("active"), KnownStatus("someday")},
		[]bool{true, true, false},
	) {
		t.Error("KnownStatus table wrong")
	}
}
