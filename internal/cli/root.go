package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/config"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

type rootOpts struct {
	verbose    bool
	logFile    string
	configPath string

	logCloser io.Closer
}

// Execute runs the jte CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "jte",
		Short:        "jte inspects and edits JSON tree documents",
		Long:         `jte works with JSON tree documents: forests of titled, typed items with variable ids, source references and metadata.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logCloser != nil {
				opts.logCloser.Close()
			}
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("jte %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write log output to this file")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/jsontree/config.toml)")

	root.AddCommand(newShowCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newEditCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newBackupsCmd())
	root.AddCommand(newWatchCmd())

	return root
}

func (o *rootOpts) setup(cmd *cobra.Command) error {
	level := charmlog.InfoLevel
	if o.verbose {
		level = charmlog.DebugLevel
	}

	var w io.Writer = cmd.ErrOrStderr()
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Errorf("open log file: %w", err)
		}
		o.logCloser = f
		w = f
	}
	logger := newLogger(w, level)

	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "theme", cfg.Theme, "settings", cfg.GetAll())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = withConfig(withLogger(ctx, logger), cfg)
	cmd.SetContext(ctx)
	return nil
}
