package outline

import "testing"

func fixtureDoc() *Document {
	raw := "## Active\n- 🎯 [[Alpha]]\n- [[Beta]]\n### Foundation\n- [[Gamma]]\n## On Hold\n- [[Delta]]\n"
	return Parse(raw, nil)
}

func TestRemoveEntry_TopLevelAndGrouped(t *testing.T) {
	doc := fixtureDoc()

	a, _, _ := doc.FindEntry("Alpha")
	doc.RemoveEntry(a)
	if e, _, _ := doc.FindEntry("Alpha"); e != nil {
		t.Error("Alpha still present after remove")
	}

	g, _, _ := doc.FindEntry("Gamma")
	doc.RemoveEntry(g)
	if e, _, _ := doc.FindEntry("Gamma"); e != nil {
		t.Error("Gamma still present after remove from group")
	}

	// Removing an entry that is no longer held anywhere is a no-op.
	doc.RemoveEntry(a)
}

func TestInsertIntoGroup_FallsBackToSectionEnd(t *testing.T) {
	doc := fixtureDoc()
	e := &Entry{Project: "New"}
	doc.InsertIntoGroup("On Hold", "Nope", e)

	s := doc.SectionByName("On Hold")
	last := s.Items[len(s.Items)-1]
	if last.Entry != e {
		t.Errorf("entry not appended top-level on missing group: %+v", s.Items)
	}
	if s.GroupByName("Nope") != nil {
		t.Error("missing group was silently created")
	}
}

func TestInsertNearEntry_BeforeAndAfter(t *testing.T) {
	doc := fixtureDoc()
	beta, _, _ := doc.FindEntry("Beta")

	before := &Entry{Project: "Pre"}
	doc.InsertNearEntry(beta, before, true)
	after := &Entry{Project: "Post"}
	doc.InsertNearEntry(beta, after, false)

	s := doc.SectionByName("Active")
	var order []string
	for _, it := range s.Items {
		if it.Entry != nil {
			order = append(order, it.Entry.Project)
		}
	}
	want := []string{"Alpha", "Pre", "Beta", "Post"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestInsertNearEntry_InsideGroup(t *testing.T) {
	doc := fixtureDoc()
	gamma, _, grp := doc.FindEntry("Gamma")
	if grp == nil {
		t.Fatal("fixture: Gamma should be grouped")
	}
	doc.InsertNearEntry(gamma, &Entry{Project: "Sibling"}, false)
	if len(grp.Entries) != 2 || grp.Entries[1].Project != "Sibling" {
		t.Errorf("group entries = %+v", grp.Entries)
	}
}

func TestMoveToGroup_MovesIntoNamedGroup(t *testing.T) {
	doc := fixtureDoc()
	doc.MoveToGroup("Beta", "Foundation")

	e, s, g := doc.FindEntry("Beta")
	if e == nil || s.Name != "Active" || g == nil || g.Name != "Foundation" {
		t.Fatalf("Beta at section=%v group=%v", s, g)
	}
}

func TestMoveToGroup_MissingGroupFallsBackTopLevel(t *testing.T) {
	doc := fixtureDoc()
	doc.MoveToGroup("Alpha", "Nonexistent")

	e, s, g := doc.FindEntry("Alpha")
	if e == nil || s.Name != "Active" || g != nil {
		t.Fatalf("Alpha at section=%v group=%v, want top-level Active", s, g)
	}
	if s.GroupByName("Nonexistent") != nil {
		t.Error("fallback created a group")
	}
}

func TestMoveToGroup_UngroupPlacesAboveFirstGroup(t *testing.T) {
	doc := fixtureDoc()
	doc.MoveToGroup("Gamma", "")

	e, s, g := doc.FindEntry("Gamma")
	if e == nil || g != nil {
		t.Fatalf("Gamma still grouped: %v", g)
	}
	// Gamma must sit before the Foundation group in Active.
	seenGamma := false
	for _, it := range s.Items {
		if it.Entry != nil && it.Entry.Project == "Gamma" {
			seenGamma = true
		}
		if it.Group != nil && it.Group.Name == "Foundation" && !seenGamma {
			t.Fatal("Gamma placed after the first group")
		}
	}
	if !seenGamma {
		t.Fatal("Gamma missing from Active")
	}
}

func TestMoveToGroup_PreservesEntryIdentity(t *testing.T) {
	doc := fixtureDoc()
	before, _, _ := doc.FindEntry("Alpha")
	doc.MoveToGroup("Alpha", "Foundation")
	after, _, _ := doc.FindEntry("Alpha")
	if before != after {
		t.Error("move recreated the entry instead of preserving it")
	}
	if after.Emoji != "🎯" {
		t.Errorf("emoji lost across move: %q", after.Emoji)
	}
}

func TestMoveToGroup_UnknownProjectNoOp(t *testing.T) {
	doc := fixtureDoc()
	doc.MoveToGroup("Ghost", "Foundation")
	if e, _, _ := doc.FindEntry("Ghost"); e != nil {
		t.Error("unknown project materialized")
	}
}
