package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/app"
	"github.com/pstuifzand/jsontree/internal/history"
	"github.com/pstuifzand/jsontree/internal/storage"
)

type editOpts struct {
	script   string
	commands []string
	yes      bool
	noBackup bool
}

func newEditCmd() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Run editing commands against a document",
		Long: `Run editing commands against a document. Commands come from -c flags,
a script file or standard input, one per line. Run "help" for the list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "f", "", "read commands from this file")
	cmd.Flags().StringArrayVarP(&opts.commands, "command", "c", nil, "run this command (repeatable)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "answer yes to every confirmation")
	cmd.Flags().BoolVar(&opts.noBackup, "no-backup", false, "do not keep a backup of the previous file")

	return cmd
}

func runEdit(ctx context.Context, in io.Reader, out io.Writer, path string, opts editOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	store := storage.NewJSONStore(path)
	if cfg.BackupEnabled() && !opts.noBackup {
		backups, err := storage.NewBackupManager()
		if err != nil {
			return err
		}
		store.Backups = backups
		store.SessionID = storage.NewSessionID()
	}

	var prompter app.Prompter = app.HuhPrompter{}
	if opts.yes {
		prompter = &app.StaticPrompter{Answer: true}
	}

	hist, err := history.NewManager(cfg.HistorySize())
	if err != nil {
		logger.Warn("command history disabled", "err", err)
		hist = nil
	}

	session, err := app.NewSession(app.Options{
		Store:    store,
		Prompter: prompter,
		Config:   cfg,
		Logger:   logger,
		History:  hist,
		Out:      out,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	switch {
	case len(opts.commands) > 0:
		err = session.Run(ctx, strings.NewReader(strings.Join(opts.commands, "\n")))
	case opts.script != "":
		f, openErr := os.Open(opts.script)
		if openErr != nil {
			return errors.Errorf("open script: %w", openErr)
		}
		defer f.Close()
		err = session.Run(ctx, f)
	default:
		err = session.Run(ctx, in)
	}
	if err != nil {
		return err
	}

	if status := session.Status(); status != "" {
		logger.Info(status)
	}
	if session.Dirty() {
		logger.Warn("unsaved changes were discarded", "file", path)
	}
	return nil
}
