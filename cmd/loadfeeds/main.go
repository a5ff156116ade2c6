package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inplayrs/backoffice/internal/client"
	"inplayrs/backoffice/internal/config"
	"inplayrs/backoffice/internal/feeds"
	"inplayrs/backoffice/internal/logging"
	"inplayrs/backoffice/internal/metrics"
	"inplayrs/backoffice/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const jobName = "loadfeeds"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug bool
		env   string
		once  bool
	)

	cmd := &cobra.Command{
		Use:   "loadfeeds <preplay|inplay>",
		Short: "Download XML data feeds and store them on local disk",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			if _, err := feeds.ParseType(args[0]); err != nil {
				return err
			}
			if !config.ValidEnv(env) {
				return fmt.Errorf("unknown environment %q (expected local, dev or prod)", env)
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			feedType, _ := feeds.ParseType(args[0])
			return run(cmd.Context(), env, feedType, debug, once)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Debug mode")
	cmd.Flags().StringVar(&env, "env", config.EnvLocal, "Environment (local, dev, prod)")
	cmd.Flags().BoolVar(&once, "once", false, "Load the feeds once and exit")
	return cmd
}

func run(ctx context.Context, env string, feedType feeds.Type, debug, once bool) error {
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}

	logging.Setup(jobName, cfg.LogLevel, cfg.IsLocal(), debug)
	log.Logger = log.With().Str("type", string(feedType)).Logger()

	log.Info().Str("env", cfg.Env).Msg("STARTING")
	defer func() { log.Info().Msg("STOPPING") }()

	if err := cfg.ValidateFeeds(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	interval, err := cfg.FeedInterval(string(feedType))
	if err != nil {
		return err
	}

	feedClient := client.NewClient(cfg.FeedBaseURL, cfg.FeedAPIKey, cfg.FeedTimeout)
	loader := feeds.NewLoader(feedClient, cfg.DataFolder)
	sched := scheduler.NewScheduler(loader, feeds.ForType(feeds.Catalog, feedType), interval)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		results := sched.RunOnce(ctx)
		pushMetrics(cfg)
		for _, r := range results {
			if r.Err != nil {
				return fmt.Errorf("feed pass finished with errors: %w", r.Err)
			}
		}
		return nil
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")
	sched.Stop()

	return nil
}

func pushMetrics(cfg *config.Config) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metrics.Push(ctx, cfg.PushgatewayURL, jobName); err != nil {
		log.Warn().Err(err).Msg("Failed to push metrics")
	}
}
