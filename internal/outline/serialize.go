package outline

import "strings"

// Serialize regenerates raw document text from the document model. The
// modeled region is rebuilt from scratch; everything from the first ---
// rule in original onward is reused byte-verbatim, which is what keeps
// user free-form content below the tracked area safe across writes.
func Serialize(doc *Document, original string) string {
	suffix := ""
	if i := strings.Index(original, "\n---"); i >= 0 {
		suffix = original[i:]
	}

	var b strings.Builder
	for _, s := range doc.Sections {
		b.WriteString("## ")
		b.WriteString(s.Name)
		b.WriteString("\n")
		for _, it := range s.Items {
			if it.Entry != nil {
				b.WriteString(formatEntry(it.Entry))
				continue
			}
			b.WriteString("### ")
			b.WriteString(it.Group.Name)
			b.WriteString("\n")
			for _, e := range it.Group.Entries {
				b.WriteString(formatEntry(e))
			}
		}
		b.WriteString("\n")
	}

	out := b.String()
	if suffix != "" {
		out = strings.TrimSuffix(out, "\n") + suffix
	}
	return out
}

func formatEntry(e *Entry) string {
	var b strings.Builder
	b.WriteString("- ")
	if e.Emoji != "" {
		b.WriteString(e.Emoji)
		b.WriteString(" ")
	}
	b.WriteString("[[")
	b.WriteString(e.Project)
	if e.Alias != "" {
		b.WriteString("|")
		b.WriteString(e.Alias)
	}
	b.WriteString("]]\n")
	return b.String()
}
