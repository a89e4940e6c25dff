package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/storage"
	"github.com/pstuifzand/jsontree/internal/theme"
	"github.com/pstuifzand/jsontree/internal/ui"
)

type watchOpts struct {
	debounce time.Duration
	once     bool

	ready func() // called once the watcher is in place
}

func newWatchCmd() *cobra.Command {
	opts := watchOpts{debounce: 100 * time.Millisecond}

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Print a document again every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", opts.debounce, "ignore changes closer together than this")
	cmd.Flags().BoolVar(&opts.once, "once", false, "exit after the first change")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, path string, opts watchOpts) error {
	logger := loggerFromContext(ctx)
	renderer := ui.NewRenderer(theme.LoadThemeOrDefault(configFromContext(ctx).Theme), out)

	w, err := storage.NewWatcher(path, opts.debounce)
	if err != nil {
		return err
	}
	defer w.Close()
	w.OnError = func(err error) {
		logger.Warn("watch error", "err", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	render := func() {
		doc, err := openDocument(path)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			return
		}
		tv := ui.NewTreeView(doc)
		defer tv.Close()
		io.WriteString(out, renderer.RenderTree(tv))
	}

	render()
	if opts.ready != nil {
		opts.ready()
	}
	logger.Info("watching", "file", path)

	err = w.Run(ctx, func() {
		logger.Debug("file changed", "file", path)
		fmt.Fprintln(out, "---")
		render()
		if opts.once {
			cancel()
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
