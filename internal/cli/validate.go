package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// ErrInvalidDocuments is returned when at least one file fails validation.
var ErrInvalidDocuments = errors.Base("invalid documents")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check that documents load",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func runValidate(ctx context.Context, out io.Writer, paths []string) error {
	logger := loggerFromContext(ctx)
	failed := 0
	for _, path := range paths {
		doc, err := openDocument(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", path, err)
			logger.Debug("validation failed", "path", path, "malformed", errors.Is(err, model.ErrMalformedDocument))
			continue
		}
		containers, leaves := 0, 0
		doc.Walk(func(i *model.Item) bool {
			if i.IsContainer() {
				containers++
			} else {
				leaves++
			}
			return true
		})
		fmt.Fprintf(out, "%s: ok (%d containers, %d leaves)\n", path, containers, leaves)
		if dups := doc.DuplicateVarIDs(); len(dups) > 0 {
			fmt.Fprintf(out, "%s: warning: repeated varIds %s\n", path, strings.Join(dups, ", "))
		}
	}
	if failed > 0 {
		return errors.Errorf("%w: %d of %d", ErrInvalidDocuments, failed, len(paths))
	}
	return nil
}
