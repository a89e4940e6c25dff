package importer

import (
	"bufio"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// IndentedTextParser reads plain text where indentation gives the
// hierarchy. Every non-blank line is an item title.
type IndentedTextParser struct{}

func (p *IndentedTextParser) Name() string {
	return "Indented Text"
}

// Parse converts indented lines to entries.
func (p *IndentedTextParser) Parse(content string) ([]Entry, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))

	var entries []Entry
	for scanner.Scan() {
		line := scanner.Text()
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		entries = append(entries, Entry{Depth: indentLevel(line), Title: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}
