package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"javabox/internal/dist"
	"javabox/internal/tui"
)

var (
	fetchSource     sourceFlags
	fetchNoProgress bool
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <maven|gradle>",
		Short: "Download and unpack a distribution into the wrapper cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
	fetchSource.register(cmd.Flags())
	cmd.Flags().BoolVar(&fetchNoProgress, "no-progress", false, "Disable interactive progress output")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	fam, err := parseTool(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, entry, err := resolveProject(ctx, fam, fetchSource)
	if err != nil {
		return err
	}

	mode := tui.DetectMode(cmd.ErrOrStderr(), fetchNoProgress || env.Settings.NoProgress, outputJSON)
	reporter, closer := tui.NewReporter(cmd.ErrOrStderr(), mode, "javabox fetch", dist.LogReporter{Logger: env.Logger})
	manager := env.ArchiveManager(reporter)

	started := time.Now()
	_, err = manager.Ensure(ctx, fam.Layout, entry, res.Spec)
	if cerr := closer.Close(); err == nil && cerr != nil {
		env.Logger.Debugf("progress output: %v", cerr)
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", res.Spec.URL, err)
	}
	res.Cached = true

	if outputJSON {
		return printJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s ready in %s (%s)\n", fam.Name, nonEmptyOrDash(res.Spec.Version), res.HomeDir, time.Since(started).Round(time.Millisecond))
	return nil
}
