package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"inplayrs/backoffice/internal/config"
	"inplayrs/backoffice/internal/lock"
	"inplayrs/backoffice/internal/logging"
	"inplayrs/backoffice/internal/metrics"
	"inplayrs/backoffice/internal/repository"
	"inplayrs/backoffice/internal/trophy"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const jobName = "updatetrophies"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "updatetrophies <local|dev|prod> <game_id>",
		Short: "Award trophies to users for a completed game",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return err
			}
			if !config.ValidEnv(args[0]) {
				return fmt.Errorf("unknown environment %q (expected local, dev or prod)", args[0])
			}
			if _, err := parseGameID(args[1]); err != nil {
				return err
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, _ := parseGameID(args[1])
			return run(cmd.Context(), args[0], gameID, debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Debug mode")
	return cmd
}

func parseGameID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game_id %q", s)
	}
	return id, nil
}

func run(ctx context.Context, env string, gameID int64, debug bool) error {
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}

	logging.Setup(jobName, cfg.LogLevel, cfg.IsLocal(), debug)
	log.Logger = log.With().Str("run_id", uuid.NewString()).Int64("game_id", gameID).Logger()

	log.Info().Str("env", cfg.Env).Msg("STARTING")
	defer func() { log.Info().Msg("FINISHED") }()

	if err := cfg.ValidateDatabase(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer pushMetrics(cfg)

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		metrics.RecordRun("failed")
		log.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer db.Close()

	release, err := acquireRunLock(ctx, cfg, gameID)
	if errors.Is(err, lock.ErrLocked) {
		metrics.RecordLockContention()
		log.Warn().Msg("Trophies for this game are already being processed by another run, quitting")
		return nil
	}
	defer release()

	engine := trophy.NewEngine(db.TrophyStore(), db.Motd, trophy.Options{
		MinPoolMembers:     cfg.MinUsersInPoolForFriendWin,
		ParallelEvaluation: cfg.ParallelTrophyEvaluation,
	})

	report, err := engine.Run(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Msg("Trophy processing failed")
		return err
	}

	for _, rr := range report.Rules {
		log.Info().
			Str("trophy", rr.Trophy.Name()).
			Int("candidates", rr.Candidates).
			Int("granted", rr.Granted).
			Int("already_held", rr.AlreadyHeld).
			Int("failed", rr.Failed).
			Int("notice_failures", rr.NoticeFailures).
			Str("skip_reason", rr.SkipReason).
			Dur("duration", rr.Duration).
			Msg("Trophy summary")
	}
	for _, ruleErr := range report.RuleErrors() {
		log.Error().Err(ruleErr).Msg("Trophy rule failed")
	}

	return nil
}

// acquireRunLock takes the per-game Redis lock. Without Redis the run continues
// unlocked; only ErrLocked is returned to the caller.
func acquireRunLock(ctx context.Context, cfg *config.Config, gameID int64) (func(), error) {
	noop := func() {}
	if cfg.RedisHost == "" {
		return noop, nil
	}

	locker, err := lock.NewLocker(ctx, lock.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.RunLockTTL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without run lock")
		return noop, nil
	}

	held, err := locker.Acquire(ctx, lock.GameKey(gameID))
	if err != nil {
		locker.Close()
		if errors.Is(err, lock.ErrLocked) {
			return noop, err
		}
		log.Warn().Err(err).Msg("Failed to acquire run lock - continuing without it")
		return noop, nil
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := held.Release(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to release run lock")
		}
		locker.Close()
	}, nil
}

func pushMetrics(cfg *config.Config) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metrics.Push(ctx, cfg.PushgatewayURL, jobName); err != nil {
		log.Warn().Err(err).Msg("Failed to push metrics")
		return
	}
	log.Debug().Str("pushgateway", cfg.PushgatewayURL).Msg("Metrics pushed")
}
