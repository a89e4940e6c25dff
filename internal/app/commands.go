package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/export"
	"github.com/pstuifzand/jsontree/internal/model"
)

// ErrUnknownCommand is returned for command names nobody handles.
var ErrUnknownCommand = errors.Base("unknown command")

// historyFile holds the command history between sessions.
const historyFile = "commands.toml"

type command struct {
	usage string
	help  string
	run   func(s *Session, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"select":        {"select [path]", "select the item at a slash separated path, or clear the selection", cmdSelect},
		"select-var":    {"select-var <varId>", "select the item with a varId", cmdSelectVar},
		"add-folder":    {"add-folder", "add a New Folder item", cmdAddFolder},
		"add-primitive": {"add-primitive", "add a New Primitive item", cmdAddPrimitive},
		"delete":        {"delete", "delete the selected item", cmdDelete},
		"duplicate":     {"duplicate", "copy the selected item", cmdDuplicate},
		"rename":        {"rename <title>", "rename the selected item", cmdRename},
		"type":          {"type <DataType>", "change the data type", cmdType},
		"varid":         {"varid <id>", "change the varId, after confirmation", cmdVarID},
		"source":        {"source add|remove ...", "edit the source references", cmdSource},
		"meta":          {"meta set|remove|rename ...", "edit the metadata", cmdMeta},
		"move":          {"move <path|/> [row]", "move the selected item", cmdMove},
		"next":          {"next", "select the next displayed row", cmdNext},
		"prev":          {"prev", "select the previous displayed row", cmdPrev},
		"collapse":      {"collapse [path]", "hide the children of an item, the selected one by default", cmdCollapse},
		"expand":        {"expand [path]", "show the children of an item, the selected one by default", cmdExpand},
		"toggle":        {"toggle [path]", "collapse or expand an item", cmdToggle},
		"search":        {"search [query]", "filter the tree; no query shows all", cmdSearch},
		"find":          {"find <query>", "list matching items, best first, and select the first", cmdFind},
		"show":          {"show", "print the tree", cmdShow},
		"details":       {"details", "print the selected item", cmdDetails},
		"debug":         {"debug", "dump the selected item", cmdDebug},
		"export":        {"export markdown|yaml <file>", "export the document", cmdExport},
		"set":           {"set [key [value]]", "show or change session settings", cmdSet},
		"w":             {"w", "save after confirmation", cmdWrite},
		"revert":        {"revert", "reload from disk after confirmation", cmdRevert},
		"wq":            {"wq", "save and quit", cmdWriteQuit},
		"q":             {"q", "quit unless there are unsaved changes", cmdQuit},
		"q!":            {"q!", "quit and drop unsaved changes", cmdForceQuit},
		"help":          {"help", "list commands", cmdHelp},
	}
	commands["write"] = commands["w"]
	commands["quit"] = commands["q"]
}

// parseCommand splits a command line into words. Words may be quoted with
// single or double quotes; inside double quotes and outside quotes a
// backslash escapes the next character.
func parseCommand(cmd string) []string {
	var parts []string
	var current strings.Builder
	inWord := false
	var quote rune
	escaped := false

	for _, r := range cmd {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				parts = append(parts, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		parts = append(parts, current.String())
	}
	return parts
}

// Execute runs one command line. Blank lines and lines starting with # do
// nothing.
func (s *Session) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmd, ok := commands[parts[0]]
	if !ok {
		s.SetStatus("Unknown command: " + parts[0])
		return errors.Errorf("%w: %s", ErrUnknownCommand, parts[0])
	}
	if s.history != nil {
		if err := s.history.Append(historyFile, line); err != nil {
			s.log.Warn("could not record command history", "err", err)
		}
	}
	s.log.Debug("command", "name", parts[0], "args", parts[1:])
	if err := cmd.run(s, ctx, parts[1:]); err != nil {
		s.SetStatus(err.Error())
		return err
	}
	return nil
}

// Run executes commands from r line by line until input ends, a quit
// command is accepted or a command fails.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for !s.quit && scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Execute(ctx, scanner.Text()); err != nil {
			return errors.Errorf("line %d: %w", lineNo, err)
		}
	}
	return errors.WithStack(scanner.Err())
}

// History returns the recorded command lines, oldest first.
func (s *Session) History() ([]string, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Load(historyFile)
}

func usageError(name string) error {
	return errors.Errorf("%w: usage: %s", model.ErrInvalidOperation, commands[name].usage)
}

// findItem resolves a path, or a varId written as $id.
func (s *Session) findItem(ref string) (*model.Item, error) {
	var item *model.Item
	if id, ok := strings.CutPrefix(ref, "$"); ok {
		item = s.doc.FindByVarID(id)
	} else {
		item = s.doc.FindByPath(ref)
	}
	if item == nil {
		return nil, errors.Errorf("%w: no item %q", model.ErrInvalidOperation, ref)
	}
	return item, nil
}

func cmdSelect(s *Session, _ context.Context, args []string) error {
	if len(args) == 0 {
		return s.Select(Selection{})
	}
	item, err := s.findItem(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return s.Select(SelectionOf(item))
}

func cmdSelectVar(s *Session, _ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("select-var")
	}
	item, err := s.findItem("$" + args[0])
	if err != nil {
		return err
	}
	return s.Select(SelectionOf(item))
}

// follow shows next as the selection and reports it in the status line.
func (s *Session) follow(next Selection, err error, status string) error {
	if err != nil {
		return err
	}
	if err := s.Select(next); err != nil {
		return err
	}
	if item := next.Item(); item != nil && status != "" {
		s.SetStatus(status + " " + item.FullPath())
	}
	return nil
}

// target is the item named by args, or the selection when there are none.
func (s *Session) target(args []string) (Selection, error) {
	if len(args) == 0 {
		return s.Selection(), nil
	}
	item, err := s.findItem(strings.Join(args, " "))
	if err != nil {
		return Selection{}, err
	}
	return SelectionOf(item), nil
}

func cmdNext(s *Session, _ context.Context, _ []string) error {
	return s.follow(s.Next(), nil, "Selected")
}

func cmdPrev(s *Session, _ context.Context, _ []string) error {
	return s.follow(s.Prev(), nil, "Selected")
}

func cmdCollapse(s *Session, _ context.Context, args []string) error {
	sel, err := s.target(args)
	if err != nil {
		return err
	}
	return s.Collapse(sel)
}

func cmdExpand(s *Session, _ context.Context, args []string) error {
	sel, err := s.target(args)
	if err != nil {
		return err
	}
	return s.Expand(sel)
}

func cmdToggle(s *Session, _ context.Context, args []string) error {
	sel, err := s.target(args)
	if err != nil {
		return err
	}
	expanded, err := s.Toggle(sel)
	if err != nil {
		return err
	}
	if expanded {
		s.SetStatus("Expanded " + sel.Item().FullPath())
	} else {
		s.SetStatus("Collapsed " + sel.Item().FullPath())
	}
	return nil
}

func cmdAddFolder(s *Session, _ context.Context, _ []string) error {
	next, err := s.AddContainer(s.Selection())
	return s.follow(next, err, "Added")
}

func cmdAddPrimitive(s *Session, _ context.Context, _ []string) error {
	next, err := s.AddPrimitive(s.Selection())
	return s.follow(next, err, "Added")
}

func cmdDelete(s *Session, _ context.Context, _ []string) error {
	next, err := s.Delete(s.Selection())
	return s.follow(next, err, "")
}

func cmdDuplicate(s *Session, _ context.Context, _ []string) error {
	next, err := s.Duplicate(s.Selection())
	return s.follow(next, err, "Duplicated as")
}

func cmdRename(s *Session, _ context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("rename")
	}
	return s.Rename(s.Selection(), strings.Join(args, " "))
}

func cmdType(s *Session, _ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("type")
	}
	return s.SetType(s.Selection(), args[0])
}

func cmdVarID(s *Session, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("varid")
	}
	changed, err := s.SetVarID(ctx, s.Selection(), args[0])
	if err == nil && !changed {
		s.SetStatus("VarId unchanged")
	}
	return err
}

func cmdSource(s *Session, _ context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("source")
	}
	switch args[0] {
	case "add":
		// source add <value> [row]
		row := -1
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return usageError("source")
			}
			row = n
		}
		return s.InsertSource(s.Selection(), row, args[1])
	case "remove":
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return usageError("source")
		}
		return s.RemoveSource(s.Selection(), row)
	}
	return usageError("source")
}

func cmdMeta(s *Session, _ context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("meta")
	}
	rowOf := func(ed *model.MetadataEditor, key string) int {
		return slices.IndexFunc(ed.Rows(), func(r model.MetadataRow) bool { return r.Key == key })
	}

	switch {
	case args[0] == "set" && len(args) == 3:
		return s.EditMetadata(s.Selection(), func(ed *model.MetadataEditor) error {
			row := rowOf(ed, args[1])
			if row < 0 {
				row = ed.Len()
				if err := ed.InsertRow(row); err != nil {
					return err
				}
				if err := ed.SetKey(row, args[1]); err != nil {
					return err
				}
			}
			return ed.SetValue(row, args[2])
		})
	case args[0] == "remove" && len(args) == 2:
		return s.EditMetadata(s.Selection(), func(ed *model.MetadataEditor) error {
			row := rowOf(ed, args[1])
			if row < 0 {
				return errors.Errorf("%w: no metadata key %q", model.ErrInvalidOperation, args[1])
			}
			return ed.RemoveRow(row)
		})
	case args[0] == "rename" && len(args) == 3:
		return s.EditMetadata(s.Selection(), func(ed *model.MetadataEditor) error {
			row := rowOf(ed, args[1])
			if row < 0 {
				return errors.Errorf("%w: no metadata key %q", model.ErrInvalidOperation, args[1])
			}
			return ed.SetKey(row, args[2])
		})
	}
	return usageError("meta")
}

func cmdMove(s *Session, _ context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("move")
	}
	var target *model.Item
	if args[0] != "/" {
		var err error
		if target, err = s.findItem(args[0]); err != nil {
			return err
		}
	}
	row := -1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usageError("move")
		}
		row = n
	}
	next, err := s.Move(s.Selection(), target, row)
	return s.follow(next, err, "Moved to")
}

func cmdSearch(s *Session, _ context.Context, args []string) error {
	count, err := s.Search(strings.Join(args, " "))
	if err == nil {
		s.SetStatus(fmt.Sprintf("%d items visible", count))
	}
	return err
}

func cmdFind(s *Session, _ context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("find")
	}
	found, err := s.Find(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(found) == 0 {
		s.SetStatus("No matches")
		return nil
	}
	for _, item := range found {
		if _, err := fmt.Fprintln(s.out, item.FullPath()); err != nil {
			return errors.WithStack(err)
		}
	}
	return s.follow(SelectionOf(found[0]), nil, fmt.Sprintf("%d matches, selected", len(found)))
}

func cmdShow(s *Session, _ context.Context, _ []string) error {
	_, err := io.WriteString(s.out, s.renderer.RenderTree(s.tree))
	return errors.WithStack(err)
}

func cmdDetails(s *Session, _ context.Context, _ []string) error {
	d, err := s.Details(s.Selection())
	if err != nil {
		return err
	}
	_, err = io.WriteString(s.out, s.renderer.RenderDetails(d))
	return errors.WithStack(err)
}

func cmdDebug(s *Session, _ context.Context, _ []string) error {
	d, err := s.Details(s.Selection())
	if err != nil {
		return err
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	cfg.Fdump(s.out, d)
	return nil
}

func cmdExport(s *Session, _ context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("export")
	}
	var err error
	switch args[0] {
	case "markdown", "md":
		err = export.ExportToMarkdown(s.doc, args[1])
	case "yaml", "yml":
		err = export.ExportToYAML(s.doc, args[1])
	default:
		return usageError("export")
	}
	if err == nil {
		s.SetStatus("Exported to " + args[1])
	}
	return err
}

func cmdSet(s *Session, _ context.Context, args []string) error {
	switch len(args) {
	case 0:
		all := s.cfg.GetAll()
		for _, k := range slices.Sorted(maps.Keys(all)) {
			fmt.Fprintf(s.out, "%s=%s\n", k, all[k])
		}
		return nil
	case 1:
		fmt.Fprintf(s.out, "%s=%s\n", args[0], s.cfg.Get(args[0]))
		return nil
	}
	s.cfg.Set(args[0], strings.Join(args[1:], " "))
	return nil
}

func cmdWrite(s *Session, ctx context.Context, _ []string) error {
	saved, err := s.Save(ctx)
	if err != nil {
		return errors.Errorf("failed to save: %w", err)
	}
	if saved {
		s.SetStatus("Saved")
	}
	return nil
}

func cmdRevert(s *Session, ctx context.Context, _ []string) error {
	reverted, err := s.Revert(ctx)
	if err != nil {
		return errors.Errorf("failed to revert: %w", err)
	}
	if reverted {
		s.SetStatus("Reverted")
	}
	return nil
}

func cmdWriteQuit(s *Session, ctx context.Context, _ []string) error {
	saved, err := s.Save(ctx)
	if err != nil {
		return errors.Errorf("failed to save: %w", err)
	}
	if saved {
		s.quit = true
	}
	return nil
}

func cmdQuit(s *Session, _ context.Context, _ []string) error {
	if s.dirty {
		s.SetStatus("Unsaved changes! Use :q! to force quit or :w to save")
		return nil
	}
	s.quit = true
	return nil
}

func cmdForceQuit(s *Session, _ context.Context, _ []string) error {
	s.quit = true
	return nil
}

func cmdHelp(s *Session, _ context.Context, _ []string) error {
	names := slices.Sorted(maps.Keys(commands))
	for _, name := range names {
		if name == "write" || name == "quit" {
			continue
		}
		fmt.Fprintf(s.out, "%-30s %s\n", commands[name].usage, commands[name].help)
	}
	return nil
}
