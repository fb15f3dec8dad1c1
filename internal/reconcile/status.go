package reconcile

import (
	"github.com/bergsten/raido/internal/attrs"
	"github.com/bergsten/raido/internal/outline"
)

// Project status values recognized by the synchronization logic.
const (
	StatusActive     = "active"
	StatusComingSoon = "coming-soon"
	StatusDeferred   = "deferred"
	StatusOnHold     = "on-hold"
	StatusComplete   = "complete"
)

// Section names on the priorities document that statuses map to.
const (
	SectionActive     = "Active"
	SectionComingSoon = "Coming Soon"
	SectionDeferred   = "Deferred Effort"
	SectionOnHold     = "On Hold"
)

var statusSections = map[string]string{
	StatusActive:     SectionActive,
	StatusComingSoon: SectionComingSoon,
	StatusDeferred:   SectionDeferred,
	StatusOnHold:     SectionOnHold,
}

// SectionForStatus returns the document section a status maps to.
// Statuses outside the table ("complete" included) have no section.
func SectionForStatus(status string) (string, bool) {
	s, ok := statusSections[status]
	return s, ok
}

// StatusForSection is the reverse mapping, used on the write-back path
// when a manual move changes an entry's section.
func StatusForSection(section string) (string, bool) {
	for status, sec := range statusSections {
		if sec == section {
			return status, true
		}
	}
	return "", false
}

// KnownStatus reports whether s is a status the engine acts on.
func KnownStatus(s string) bool {
	if s == StatusComplete {
		return true
	}
	_, ok := statusSections[s]
	return ok
}

// applyStatus mutates the document to match a project's status. It
// returns whether the document changed and whether the entry moved across
// sections (which implies its group placement was dropped).
//
// Rules: "complete" removes the entry entirely; a status with no mapped
// section is a no-op; an absent entry is inserted at the target section's
// end; an entry already in the target section keeps its position and
// group (in-section ordering is human-owned).
func applyStatus(doc *outline.Document, project, status string, rec *attrs.Record) (changed, crossSection bool) {
	if status == StatusComplete {
		e, _, _ := doc.FindEntry(project)
		if e == nil {
			return false, false
		}
		doc.RemoveEntry(e)
		return true, false
	}

	target, ok := SectionForStatus(status)
	if !ok {
		return false, false
	}
	if doc.SectionByName(target) == nil {
		return false, false
	}

	e, cur, _ := doc.FindEntry(project)
	if e == nil {
		fresh := &outline.Entry{Project: project, Record: rec}
		if rec != nil {
			fresh.Emoji = rec.Emoji
		}
		doc.InsertAtSectionEnd(target, fresh)
		return true, false
	}
	if cur.Name == target {
		return false, false
	}

	doc.RemoveEntry(e)
	doc.InsertAtSectionEnd(target, e)
	return true, true
}
