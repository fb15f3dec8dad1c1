package outline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bergsten/raido/internal/attrs"
)

var wikilinkRe = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// AttributeLookup supplies the current attribute snapshot for a project,
// or nil when the project has no record.
type AttributeLookup func(project string) *attrs.Record

// Parse converts raw document text into a Document. It never fails:
// malformed lines are skipped, a ### header outside any section is
// dropped, and everything from the first --- line onward is left to the
// serializer to preserve verbatim.
//
// When lookup is non-nil and the record carries an emoji attribute, that
// emoji overrides the line-derived prefix.
func Parse(raw string, lookup AttributeLookup) *Document {
	doc := &Document{}

	var section *Section
	var group *Group

	flushGroup := func() {
		if section != nil && group != nil {
			section.Items = append(section.Items, Item{Group: group})
		}
		group = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "---" {
			break
		}

		switch {
		case strings.HasPrefix(line, "### "):
			if section == nil {
				continue // group header with no open section
			}
			flushGroup()
			group = &Group{Name: strings.TrimSpace(line[4:])}

		case strings.HasPrefix(line, "## "):
			flushGroup()
			section = &Section{Name: strings.TrimSpace(line[3:])}
			doc.Sections = append(doc.Sections, section)

		default:
			if section == nil {
				continue
			}
			e := parseEntry(line, lookup)
			if e == nil {
				continue
			}
			if group != nil {
				group.Entries = append(group.Entries, e)
			} else {
				section.Items = append(section.Items, Item{Entry: e})
			}
		}
	}
	flushGroup()

	return doc
}

// parseEntry extracts a project reference from one line, or nil when the
// line carries no [[...]] reference.
func parseEntry(line string, lookup AttributeLookup) *Entry {
	m := wikilinkRe.FindStringSubmatchIndex(line)
	if m == nil {
		return nil
	}

	inner := line[m[2]:m[3]]
	name := inner
	alias := ""
	if i := strings.Index(inner, "|"); i >= 0 {
		name = strings.TrimSpace(inner[:i])
		alias = strings.TrimSpace(inner[i+1:])
	} else {
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return nil
	}

	prefix := strings.TrimSpace(line[:m[0]])
	prefix = strings.TrimSpace(strings.TrimPrefix(prefix, "- "))

	e := &Entry{Project: name, Alias: alias, Emoji: prefix}
	if lookup != nil {
		if rec := lookup(name); rec != nil {
			e.Record = rec
			if rec.Emoji != "" {
				e.Emoji = rec.Emoji
			}
		}
	}
	return e
}

// UnlistedProjects returns every tracked project name that never appears
// as an entry in the document, in sorted order.
func UnlistedProjects(doc *Document, tracked []string) []string {
	seen := doc.Projects()
	var out []string
	for _, name := range tracked {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
