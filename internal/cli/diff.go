package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/diff"
	"github.com/pstuifzand/jsontree/internal/storage"
)

type diffOpts struct {
	verbose bool
	backup  int
}

func newDiffCmd() *cobra.Command {
	var opts diffOpts

	cmd := &cobra.Command{
		Use:   "diff [old] [new]",
		Short: "Show item changes between two documents",
		Long: `Show item changes between two documents. Items are matched by varId,
or by path when they have none. With --backup N a single file is compared
against its Nth most recent backup.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "details", "d", false, "list sources and metadata of new items")
	cmd.Flags().IntVarP(&opts.backup, "backup", "b", 0, "compare the file against its Nth most recent backup")

	return cmd
}

func runDiff(ctx context.Context, out io.Writer, args []string, opts diffOpts) error {
	var oldPath, newPath string
	switch {
	case len(args) == 2 && opts.backup == 0:
		oldPath, newPath = args[0], args[1]
	case len(args) == 1 && opts.backup > 0:
		backups, err := storage.NewBackupManager()
		if err != nil {
			return err
		}
		list, err := backups.FindBackupsForFile(args[0])
		if err != nil {
			return err
		}
		if opts.backup > len(list) {
			return errors.Errorf("%s has %d backups", args[0], len(list))
		}
		oldPath, newPath = list[len(list)-opts.backup].FilePath, args[0]
	default:
		return errors.New("give two documents, or one document and --backup")
	}

	before, err := openDocument(oldPath)
	if err != nil {
		return err
	}
	after, err := openDocument(newPath)
	if err != nil {
		return err
	}

	result := diff.ComputeDiff(before, after)
	loggerFromContext(ctx).Debug("compared", "old", oldPath, "new", newPath, "empty", result.Empty())
	if result.Empty() {
		_, err := fmt.Fprintln(out, "No changes")
		return err
	}
	_, err = io.WriteString(out, diff.Render(diff.BuildDiffLines(result, opts.verbose)))
	return err
}
