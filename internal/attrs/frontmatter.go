package attrs

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Parse decodes the YAML frontmatter of a note into a Record.
// Notes without frontmatter (or with invalid YAML) yield nil, not an error.
func Parse(data []byte) *Record {
	fm, _ := splitFrontmatter(data)
	return FromMap(fm)
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the note body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat everything as body.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// Apply merges partial attribute changes into a note's frontmatter and
// returns the rewritten note. A nil change value deletes the key; every
// other key, and the body, is preserved untouched. Key order of existing
// frontmatter is kept (yaml.Node round-trip), which keeps diffs minimal.
func Apply(data []byte, changes map[string]any) ([]byte, error) {
	if len(changes) == 0 {
		return data, nil
	}

	trimmed := bytes.TrimLeft(data, "\n\r")
	var yamlBlock []byte
	body := string(data)

	if bytes.HasPrefix(trimmed, []byte(delim)) {
		rest := trimmed[len(delim):]
		if idx := bytes.Index(rest, []byte("\n"+delim)); idx >= 0 {
			yamlBlock = rest[:idx]
			body = strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n")
		}
	}

	var doc yaml.Node
	if len(yamlBlock) > 0 {
		if err := yaml.Unmarshal(yamlBlock, &doc); err != nil {
			return nil, fmt.Errorf("attrs: decode frontmatter: %w", err)
		}
	}

	mapping := mappingNode(&doc)
	for key, val := range changes {
		if val == nil {
			deleteKey(mapping, key)
			continue
		}
		if err := setKey(mapping, key, val); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	if len(mapping.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(mapping); err != nil {
			return nil, fmt.Errorf("attrs: encode frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("attrs: close encoder: %w", err)
		}
	}
	buf.WriteString(delim + "\n")
	if body != "" {
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// mappingNode returns the document's top-level mapping, creating an empty
// one when the note had no frontmatter.
func mappingNode(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		return doc.Content[0]
	}
	return &yaml.Node{Kind: yaml.MappingNode}
}

func deleteKey(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

func setKey(m *yaml.Node, key string, val any) error {
	valNode := &yaml.Node{}
	if err := valNode.Encode(val); err != nil {
		return fmt.Errorf("attrs: encode %s: %w", key, err)
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = valNode
			return nil
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		valNode)
	return nil
}
