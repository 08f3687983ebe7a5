package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
	"ContentCurator/internal/config"
	"ContentCurator/internal/logging"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "curator",
		Short: "AI content curation bot: papers, vendor blogs, and monitored tweets",
		// Bare invocation runs the scheduler daemon.
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Serve(ctx)
			})
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		runCmd("papers", "Run the papers pipeline once", func(ctx context.Context, a *app.Application) error {
			a.RunPapers(ctx)
			return nil
		}),
		runCmd("blogs", "Run the blogs pipeline once", func(ctx context.Context, a *app.Application) error {
			a.RunBlogs(ctx)
			return nil
		}),
		runCmd("twitter", "Run the twitter-monitoring pipeline once", func(ctx context.Context, a *app.Application) error {
			a.RunTweets(ctx)
			return nil
		}),
		runCmd("all", "Run all three pipelines once, sequentially", func(ctx context.Context, a *app.Application) error {
			a.RunAll(ctx)
			return nil
		}),
		runCmd("serve", "Run the cron scheduler daemon", func(ctx context.Context, a *app.Application) error {
			return a.Serve(ctx)
		}),
	)

	return root
}

func runCmd(use, short string, fn func(context.Context, *app.Application) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), fn)
		},
	}
}

func withApp(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}
