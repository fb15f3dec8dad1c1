package outline

// Mutation operations on an in-memory Document. None perform I/O, and
// "not found" is always a silent no-op: callers verify preconditions when
// they need feedback.

// RemoveEntry removes the entry (by reference) from whichever section or
// group currently holds it.
func (d *Document) RemoveEntry(e *Entry) {
	for _, s := range d.Sections {
		for i, it := range s.Items {
			if it.Entry == e {
				s.Items = append(s.Items[:i], s.Items[i+1:]...)
				return
			}
		}
		for _, it := range s.Items {
			if it.Group == nil {
				continue
			}
			for i, ge := range it.Group.Entries {
				if ge == e {
					it.Group.Entries = append(it.Group.Entries[:i], it.Group.Entries[i+1:]...)
					return
				}
			}
		}
	}
}

// InsertAtSectionEnd appends the entry as a top-level item of the named
// section.
func (d *Document) InsertAtSectionEnd(sectionName string, e *Entry) {
	s := d.SectionByName(sectionName)
	if s == nil {
		return
	}
	s.Items = append(s.Items, Item{Entry: e})
}

// InsertIntoGroup appends the entry to the named group within the named
// section, falling back to a top-level append when the group does not
// exist there. It never creates groups.
func (d *Document) InsertIntoGroup(sectionName, groupName string, e *Entry) {
	s := d.SectionByName(sectionName)
	if s == nil {
		return
	}
	if g := s.GroupByName(groupName); g != nil {
		g.Entries = append(g.Entries, e)
		return
	}
	s.Items = append(s.Items, Item{Entry: e})
}

// InsertNearEntry splices newEntry immediately before or after target in
// whichever container holds target, preserving the relative order of all
// other items. When target is not found, newEntry is appended at the end
// of the section owning target's name match, or nowhere when no section
// holds it.
func (d *Document) InsertNearEntry(target, newEntry *Entry, before bool) {
	for _, s := range d.Sections {
		for i, it := range s.Items {
			if it.Entry == target {
				at := i
				if !before {
					at = i + 1
				}
				s.Items = append(s.Items[:at], append([]Item{{Entry: newEntry}}, s.Items[at:]...)...)
				return
			}
		}
		for _, it := range s.Items {
			if it.Group == nil {
				continue
			}
			for i, ge := range it.Group.Entries {
				if ge == target {
					at := i
					if !before {
						at = i + 1
					}
					it.Group.Entries = append(it.Group.Entries[:at], append([]*Entry{newEntry}, it.Group.Entries[at:]...)...)
					return
				}
			}
		}
	}
	// Target unknown: fall back to appending in the section that holds an
	// entry with the same project name, if any.
	if _, s, _ := d.FindEntry(target.Project); s != nil {
		s.Items = append(s.Items, Item{Entry: newEntry})
	}
}

// MoveToGroup locates the entry by project name, removes it from its
// current container, and reinserts it within its original section: into
// the first group with the given name when groupName is non-empty
// (top-level append when no such group exists there), or as a top-level
// item placed immediately before the section's first group when groupName
// is empty, keeping ungrouped entries above grouped ones.
func (d *Document) MoveToGroup(project, groupName string) {
	e, s, _ := d.FindEntry(project)
	if e == nil {
		return
	}
	d.RemoveEntry(e)

	if groupName != "" {
		if g := s.GroupByName(groupName); g != nil {
			g.Entries = append(g.Entries, e)
			return
		}
		s.Items = append(s.Items, Item{Entry: e})
		return
	}

	s.InsertUngrouped(e)
}

// InsertUngrouped places the entry as a top-level item immediately before
// the section's first group, or at the end when the section has none.
// This keeps ungrouped entries visually above grouped ones.
func (s *Section) InsertUngrouped(e *Entry) {
	for i, it := range s.Items {
		if it.Group != nil {
			s.Items = append(s.Items[:i], append([]Item{{Entry: e}}, s.Items[i:]...)...)
			return
		}
	}
	s.Items = append(s.Items, Item{Entry: e})
}
