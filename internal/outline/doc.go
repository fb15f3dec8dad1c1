// Package outline models the priorities document: an outline-style text
// file grouping project references into sections and named groups. The
// parser, the in-memory mutation operations, and the serializer together
// round-trip the tracked region losslessly while leaving everything below
// the first --- rule untouched.
package outline

import "github.com/bergsten/raido/internal/attrs"

// Entry is one project reference line. Entries are moved by reference
// across containers, so a move preserves the same Entry value.
type Entry struct {
	Project string        `json:"project"`
	Alias   string        `json:"alias,omitempty"`
	Emoji   string        `json:"emoji,omitempty"`
	Record  *attrs.Record `json:"record,omitempty"`
}

// Group is a named sub-grouping of entries under a ### header.
type Group struct {
	Name    string   `json:"name"`
	Entries []*Entry `json:"entries"`
}

// Item is one ordered child of a Section: either a top-level Entry or a
// Group. Exactly one field is non-nil.
type Item struct {
	Entry *Entry `json:"entry,omitempty"`
	Group *Group `json:"group,omitempty"`
}

// Section corresponds to a ## header. Item order is significant and
// matches header order on disk.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Document is the parsed priorities document. Unlisted is derived at
// parse time and never affects serialized output.
type Document struct {
	Sections []*Section `json:"sections"`
	Unlisted []string   `json:"unlisted,omitempty"`
}

// SectionByName returns the first section with the given name, or nil.
func (d *Document) SectionByName(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// GroupByName returns the first group with the given name directly under
// the section, or nil.
func (s *Section) GroupByName(name string) *Group {
	for _, it := range s.Items {
		if it.Group != nil && it.Group.Name == name {
			return it.Group
		}
	}
	return nil
}

// FindEntry locates the first entry with the given project name, scanning
// sections in order, top-level items before group entries within each
// section. It returns the entry with its containing section and group
// (group is nil for top-level entries).
func (d *Document) FindEntry(project string) (*Entry, *Section, *Group) {
	for _, s := range d.Sections {
		for _, it := range s.Items {
			if it.Entry != nil && it.Entry.Project == project {
				return it.Entry, s, nil
			}
		}
		for _, it := range s.Items {
			if it.Group == nil {
				continue
			}
			for _, e := range it.Group.Entries {
				if e.Project == project {
					return e, s, it.Group
				}
			}
		}
	}
	return nil, nil, nil
}

// Projects returns the set of project names referenced anywhere in the
// document.
func (d *Document) Projects() map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range d.Sections {
		for _, it := range s.Items {
			if it.Entry != nil {
				out[it.Entry.Project] = struct{}{}
			}
			if it.Group != nil {
				for _, e := range it.Group.Entries {
					out[e.Project] = struct{}{}
				}
			}
		}
	}
	return out
}
