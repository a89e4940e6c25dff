package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/importer"
	"github.com/pstuifzand/jsontree/internal/storage"
)

type importOpts struct {
	format string
	into   string
}

func newImportCmd() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import [outline]",
		Short: "Append a Markdown or indented text outline to a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "auto", "outline format: auto, markdown, indented")
	cmd.Flags().StringVarP(&opts.into, "into", "o", "", "document to append to (created when missing)")
	_ = cmd.MarkFlagRequired("into")

	return cmd
}

func runImport(ctx context.Context, path string, opts importOpts) error {
	logger := loggerFromContext(ctx)

	format, err := importer.ParseFormat(opts.format, path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("read %s: %w", path, err)
	}
	items, err := importer.ImportFile(string(content), format)
	if err != nil {
		return err
	}

	doc, err := openDocument(opts.into)
	if err != nil {
		return err
	}
	if err := importer.Append(doc, items); err != nil {
		return err
	}
	data, err := doc.Save()
	if err != nil {
		return err
	}

	store := storage.NewJSONStore(opts.into)
	if cfg := configFromContext(ctx); cfg.BackupEnabled() {
		if store.Backups, err = storage.NewBackupManager(); err != nil {
			return err
		}
		store.SessionID = storage.NewSessionID()
	}
	if err := store.Write(data); err != nil {
		return err
	}
	logger.Info("imported", "file", path, "format", format, "items", len(items), "into", opts.into)
	return nil
}
