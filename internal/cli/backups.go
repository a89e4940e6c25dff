package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pstuifzand/jsontree/internal/storage"
)

type backupsOpts struct {
	prune int
}

func newBackupsCmd() *cobra.Command {
	opts := backupsOpts{prune: -1}

	cmd := &cobra.Command{
		Use:   "backups [file]",
		Short: "List the backups kept for a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runBackups(cmd.Context(), cmd.OutOrStdout(), path, opts)
		},
	}

	cmd.Flags().IntVar(&opts.prune, "prune", opts.prune, "delete all but the N most recent backups of the file")

	return cmd
}

func runBackups(ctx context.Context, out io.Writer, path string, opts backupsOpts) error {
	bm, err := storage.NewBackupManager()
	if err != nil {
		return err
	}

	if opts.prune >= 0 && path != "" {
		removed, err := bm.Prune(path, opts.prune)
		if err != nil {
			return err
		}
		loggerFromContext(ctx).Info("pruned backups", "file", path, "removed", removed)
	}

	list, err := bm.FindBackupsForFile(path)
	if err != nil {
		return err
	}
	// Most recent first, numbered the way diff --backup counts them.
	for i := len(list) - 1; i >= 0; i-- {
		b := list[i]
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", len(list)-i, b.Timestamp.Format("2006-01-02 15:04:05"), b.SessionID, b.FilePath)
	}
	return nil
}
