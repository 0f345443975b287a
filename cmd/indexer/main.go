package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"assistant/internal/app"
)

type buildOptions struct {
	force bool
	dir   string
}

type buildFunc func(ctx context.Context, opts buildOptions) error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(runBuild).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Manage the assistant's document index",
		SilenceUsage: true,
	}

	var opts buildOptions
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Load the stored index or build it from the documents directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return build(cmd.Context(), opts)
		},
	}
	buildCmd.Flags().BoolVar(&opts.force, "force", false, "rebuild even when a stored index matches the embedding model")
	buildCmd.Flags().StringVar(&opts.dir, "dir", "", "documents directory (overrides DOCUMENTS_DIR)")

	root.AddCommand(buildCmd)
	return root
}

func runBuild(ctx context.Context, opts buildOptions) error {
	cfg, log, err := app.LoadEnv()
	if err != nil {
		return err
	}
	if opts.dir != "" {
		cfg.DocumentsDir = opts.dir
	}
	deps, err := app.BuildWith(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer deps.Close()

	if err := deps.Index.LoadOrBuild(ctx, opts.force); err != nil {
		return err
	}
	log.Info("document index ready", "fragments", deps.Index.Len(), "documents_dir", cfg.DocumentsDir, "activated_at", deps.Index.ActivatedAt())
	return nil
}
