package app

import (
	"context"

	"github.com/charmbracelet/huh"
	"gitlab.com/tozd/go/errors"
)

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// HuhPrompter asks on the terminal.
type HuhPrompter struct{}

func (HuhPrompter) Confirm(ctx context.Context, title, message string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().
		Title(title).
		Description(message).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return ok, nil
}

// StaticPrompter answers every question the same way. Asked records the
// titles of the questions, oldest first.
type StaticPrompter struct {
	Answer bool
	Asked  []string
}

func (p *StaticPrompter) Confirm(_ context.Context, title, _ string) (bool, error) {
	p.Asked = append(p.Asked, title)
	return p.Answer, nil
}
