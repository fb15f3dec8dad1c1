// Package attrs models per-project attribute records stored as YAML
// frontmatter, with a pass-through bag for unrecognized keys.
package attrs

// Recognized frontmatter keys used by the synchronization logic.
const (
	KeyStatus   = "status"
	KeyCategory = "category"
	KeyPriority = "priority"
	KeyGroup    = "priority-group"
	KeyEmoji    = "emoji"
	KeyTitle    = "title"
	KeyTags     = "tags"
)

// Record is a read-only snapshot of one project's attribute bag.
// Extra holds every key the sync logic does not recognize; those keys
// are never dropped on write-back.
type Record struct {
	Status   string         `json:"status,omitempty"`
	Category string         `json:"category,omitempty"`
	Priority string         `json:"priority,omitempty"`
	Group    string         `json:"group,omitempty"`
	Emoji    string         `json:"emoji,omitempty"`
	Title    string         `json:"title,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Extra    map[string]any `json:"-"`
}

// FromMap builds a Record from a decoded frontmatter mapping.
// Returns nil when fm is nil.
func FromMap(fm map[string]any) *Record {
	if fm == nil {
		return nil
	}
	r := &Record{}
	for k, v := range fm {
		switch k {
		case KeyStatus:
			r.Status = asString(v)
		case KeyCategory:
			r.Category = asString(v)
		case KeyPriority:
			r.Priority = asString(v)
		case KeyGroup:
			r.Group = asString(v)
		case KeyEmoji:
			r.Emoji = asString(v)
		case KeyTitle:
			r.Title = asString(v)
		case KeyTags:
			r.Tags = asStringSlice(v)
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
		}
	}
	return r
}

// HasTag reports whether the record carries the given tag.
func (r *Record) HasTag(tag string) bool {
	if r == nil || tag == "" {
		return false
	}
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	}
	return nil
}
