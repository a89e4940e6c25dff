package export

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// RenderMarkdown renders the Markdown outline of doc for a terminal,
// wrapped at width columns. The style follows the terminal background.
func RenderMarkdown(doc *model.Document, width int) (string, error) {
	var sb strings.Builder
	if err := WriteMarkdown(&sb, doc); err != nil {
		return "", err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", errors.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(sb.String())
	if err != nil {
		return "", errors.Errorf("render markdown: %w", err)
	}
	return out, nil
}
