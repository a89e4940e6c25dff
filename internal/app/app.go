// Package app implements the editing session: selection-driven edits,
// confirmations, save and revert, and the command interpreter on top.
package app

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/config"
	"github.com/pstuifzand/jsontree/internal/history"
	"github.com/pstuifzand/jsontree/internal/model"
	"github.com/pstuifzand/jsontree/internal/theme"
	"github.com/pstuifzand/jsontree/internal/ui"
)

// DocumentStore reads and writes the raw document bytes.
type DocumentStore interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// Options configures a Session. Store is required; the rest have defaults.
type Options struct {
	Store    DocumentStore
	Prompter Prompter
	Config   *config.Config
	Logger   *log.Logger
	History  *history.Manager
	Out      io.Writer
}

// Session is an open document with a selection. Every edit acts on the
// selected item the way the tree editor does.
type Session struct {
	doc      *model.Document
	store    DocumentStore
	prompter Prompter
	cfg      *config.Config
	log      *log.Logger
	history  *history.Manager
	out      io.Writer

	tree     *ui.TreeView
	renderer *ui.Renderer

	dirty     bool
	quit      bool
	statusMsg string
}

// NewSession reads the document from the store and opens it.
func NewSession(opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, errors.New("no document store")
	}
	s := &Session{
		doc:      model.NewDocument(),
		store:    opts.Store,
		prompter: opts.Prompter,
		cfg:      opts.Config,
		log:      opts.Logger,
		history:  opts.History,
		out:      opts.Out,
	}
	if s.prompter == nil {
		s.prompter = HuhPrompter{}
	}
	if s.cfg == nil {
		s.cfg = &config.Config{}
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if s.out == nil {
		s.out = io.Discard
	}
	s.renderer = ui.NewRenderer(theme.LoadThemeOrDefault(s.cfg.Theme), s.out)

	if err := s.load(); err != nil {
		return nil, err
	}
	s.tree = ui.NewTreeView(s.doc)
	s.doc.Subscribe(s.track)
	return s, nil
}

func (s *Session) load() error {
	data, err := s.store.Read()
	if err != nil {
		return err
	}
	if err := s.doc.Load(data); err != nil {
		return err
	}
	if dups := s.doc.DuplicateVarIDs(); len(dups) > 0 {
		s.log.Warn("document repeats varIds", "varIds", dups)
	}
	s.log.Debug("loaded document", "items", len(s.doc.AllItems()))
	return nil
}

// track marks the session dirty on every content change.
func (s *Session) track(ev model.Event) {
	if ev.Phase != model.PhaseEnd {
		return
	}
	switch ev.Kind {
	case model.NodeChanged, model.RowsInserted, model.RowsRemoved, model.RowsMoved:
		s.dirty = true
	}
}

// Document returns the open document.
func (s *Session) Document() *model.Document { return s.doc }

// Tree returns the display model of the document.
func (s *Session) Tree() *ui.TreeView { return s.tree }

// Renderer returns the renderer used for command output.
func (s *Session) Renderer() *ui.Renderer { return s.renderer }

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Quitting reports whether a quit command was accepted.
func (s *Session) Quitting() bool { return s.quit }

// Status returns the last status message.
func (s *Session) Status() string { return s.statusMsg }

// SetStatus sets the status message
func (s *Session) SetStatus(msg string) {
	s.statusMsg = msg
	s.log.Debug("status", "msg", msg)
}

// Close stops following the document.
func (s *Session) Close() {
	s.tree.Close()
}

// Save asks for confirmation, writes the document and clears the change
// flags. It reports whether the document was written.
func (s *Session) Save(ctx context.Context) (bool, error) {
	ok, err := s.prompter.Confirm(ctx, "Save", "Would you save the changes?")
	if err != nil || !ok {
		return false, err
	}
	if err := s.write(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) write() error {
	data, err := s.doc.Save()
	if err != nil {
		return err
	}
	if err := s.store.Write(data); err != nil {
		return err
	}
	s.doc.MarkSaved()
	s.dirty = false
	s.log.Debug("saved document", "bytes", len(data))
	return nil
}

// Revert asks for confirmation and reloads the document from the store.
// When reading or decoding fails the current tree is kept.
func (s *Session) Revert(ctx context.Context) (bool, error) {
	ok, err := s.prompter.Confirm(ctx, "Confirm", "Would you revert?")
	if err != nil || !ok {
		return false, err
	}
	if err := s.load(); err != nil {
		return false, err
	}
	s.dirty = false
	return true, nil
}
