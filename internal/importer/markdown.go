package importer

import (
	"bufio"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// MarkdownParser reads Markdown outlines: headers and bullet lists. A bullet
// may end in a _Type_ marker and a `varId`. Below a bullet, ": key = value"
// lines add metadata and "> source" lines add sources, the way the Markdown
// export writes them.
type MarkdownParser struct{}

func (p *MarkdownParser) Name() string {
	return "Markdown"
}

// Parse converts Markdown content to entries. Bullets below a header are
// nested under it.
func (p *MarkdownParser) Parse(content string) ([]Entry, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))

	var entries []Entry
	base := 0 // depth of list items under the current header

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if level, text := parseHeader(trimmed); level > 0 {
			entries = append(entries, Entry{Depth: level - 1, Title: text})
			base = level
			continue
		}

		if text, ok := strings.CutPrefix(trimmed, ">"); ok {
			if len(entries) == 0 {
				return nil, errors.Errorf("source %q before any item", strings.TrimSpace(text))
			}
			last := &entries[len(entries)-1]
			last.Sources = append(last.Sources, strings.TrimSpace(text))
			continue
		}

		if text, ok := strings.CutPrefix(trimmed, ":"); ok {
			if len(entries) == 0 {
				return nil, errors.Errorf("metadata %q before any item", strings.TrimSpace(text))
			}
			key, value, found := strings.Cut(text, "=")
			key = strings.TrimSpace(key)
			if !found || key == "" {
				return nil, errors.Errorf("metadata line %q is not \"key = value\"", trimmed)
			}
			last := &entries[len(entries)-1]
			if last.Metadata == nil {
				last.Metadata = make(map[string]string)
			}
			last.Metadata[key] = strings.TrimSpace(value)
			continue
		}

		if text, ok := parseListItem(trimmed); ok {
			entry := parseBullet(text)
			entry.Depth = base + indentLevel(line)
			entries = append(entries, entry)
			continue
		}

		// Plain paragraph lines become items at the current level.
		entries = append(entries, Entry{Depth: base, Title: trimmed})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}

// parseHeader returns the level of a "# Title" line, or 0.
func parseHeader(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(line[level:])
}

// parseListItem strips a "- ", "* " or "+ " bullet.
func parseListItem(line string) (string, bool) {
	for _, bullet := range []string{"- ", "* ", "+ "} {
		if text, ok := strings.CutPrefix(line, bullet); ok {
			return strings.TrimSpace(text), true
		}
	}
	return "", false
}

// parseBullet splits "Title _Type_ `varId`" into its parts. Markers that
// don't parse stay part of the title.
func parseBullet(text string) Entry {
	var entry Entry

	if strings.HasSuffix(text, "`") {
		if idx := strings.LastIndex(text[:len(text)-1], " `"); idx >= 0 {
			entry.VarID = text[idx+2 : len(text)-1]
			text = text[:idx]
		}
	}

	if strings.HasSuffix(text, "_") {
		if idx := strings.LastIndex(text[:len(text)-1], " _"); idx >= 0 {
			if dt, err := model.ParseDataType(text[idx+2 : len(text)-1]); err == nil {
				entry.DataType = dt
				text = text[:idx]
			}
		}
	}

	entry.Title = strings.TrimSpace(text)
	return entry
}
