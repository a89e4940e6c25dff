package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
	"github.com/pstuifzand/jsontree/internal/search"
	"github.com/pstuifzand/jsontree/internal/storage"
	"github.com/pstuifzand/jsontree/internal/theme"
	"github.com/pstuifzand/jsontree/internal/ui"
)

type showOpts struct {
	query   string
	mode    string
	width   int
	details string
}

func newShowCmd() *cobra.Command {
	var opts showOpts

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print a document as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "search", "s", "", "only show items matching the query and their ancestors")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "search mode: substring (default), fuzzy, regex")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "truncate lines to this many columns")
	cmd.Flags().StringVarP(&opts.details, "details", "d", "", "print the details of the item at this path or $varId")

	return cmd
}

// openDocument reads and decodes a document file.
func openDocument(path string) (*model.Document, error) {
	data, err := storage.NewJSONStore(path).Read()
	if err != nil {
		return nil, err
	}
	doc := model.NewDocument()
	if err := doc.Load(data); err != nil {
		return nil, err
	}
	return doc, nil
}

// findItem resolves a slash separated path, or a varId written as $id.
func findItem(doc *model.Document, ref string) *model.Item {
	if len(ref) > 1 && ref[0] == '$' {
		return doc.FindByVarID(ref[1:])
	}
	return doc.FindByPath(ref)
}

func runShow(ctx context.Context, out io.Writer, path string, opts showOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	doc, err := openDocument(path)
	if err != nil {
		return err
	}
	logger.Debug("opened document", "path", path, "items", len(doc.AllItems()))

	renderer := ui.NewRenderer(theme.LoadThemeOrDefault(cfg.Theme), out)
	renderer.Width = opts.width

	if opts.details != "" {
		item := findItem(doc, opts.details)
		if item == nil {
			return errors.Errorf("no item %q in %s", opts.details, path)
		}
		_, err := io.WriteString(out, renderer.RenderDetails(item.Details()))
		return err
	}

	if opts.query != "" {
		modeName := opts.mode
		if modeName == "" {
			modeName = cfg.SearchMode()
		}
		mode, err := search.ParseMode(modeName)
		if err != nil {
			return err
		}
		match, err := search.Compile(mode, opts.query)
		if err != nil {
			return err
		}
		count := doc.Filter(match)
		logger.Debug("filtered", "mode", mode, "query", opts.query, "visible", count)
	}

	tv := ui.NewTreeView(doc)
	defer tv.Close()
	_, err = io.WriteString(out, renderer.RenderTree(tv))
	return err
}
