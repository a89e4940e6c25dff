package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/export"
	"github.com/pstuifzand/jsontree/internal/model"
)

type exportOpts struct {
	format string
	output string
	render bool
	width  int
}

func newExportCmd() *cobra.Command {
	opts := exportOpts{format: "markdown"}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a document as Markdown or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: markdown, yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&opts.render, "render", "r", false, "render Markdown for the terminal")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 80, "wrap rendered Markdown at this width")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, path string, opts exportOpts) error {
	var write func(io.Writer, *model.Document) error
	switch opts.format {
	case "markdown", "md":
		write = export.WriteMarkdown
	case "yaml", "yml":
		write = export.WriteYAML
	default:
		return errors.Errorf("unknown export format %q", opts.format)
	}

	doc, err := openDocument(path)
	if err != nil {
		return err
	}

	if opts.render {
		if opts.format != "markdown" && opts.format != "md" {
			return errors.Errorf("--render needs the markdown format, not %q", opts.format)
		}
		write = func(w io.Writer, doc *model.Document) error {
			out, err := export.RenderMarkdown(doc, opts.width)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, out)
			return errors.WithStack(err)
		}
	}

	if opts.output == "" {
		return write(out, doc)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return errors.Errorf("create %s: %w", opts.output, err)
	}
	if err := write(f, doc); err != nil {
		f.Close()
		return err
	}
	loggerFromContext(ctx).Info("exported", "file", opts.output, "format", opts.format)
	return errors.WithStack(f.Close())
}
