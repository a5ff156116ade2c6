package trophy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inplayrs/backoffice/internal/metrics"
	"inplayrs/backoffice/internal/models"

	"github.com/rs/zerolog/log"
)

// Options configures an Engine
type Options struct {
	// Rules overrides the rule set. DefaultRules is used when empty.
	Rules []Rule
	// MinPoolMembers feeds DefaultRules when Rules is empty
	MinPoolMembers int
	// ParallelEvaluation runs the read-only rule queries concurrently.
	// Grants are still applied one rule at a time in rule order.
	ParallelEvaluation bool
}

// Engine runs the trophy rules for one game at a time
type Engine struct {
	store    Store
	notifier Notifier
	rules    []Rule
	parallel bool
}

// NewEngine creates a trophy engine
func NewEngine(store Store, notifier Notifier, opts Options) *Engine {
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules(RuleOptions{MinPoolMembers: opts.MinPoolMembers})
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		rules:    rules,
		parallel: opts.ParallelEvaluation,
	}
}

// RuleReport summarises one rule's contribution to a run
type RuleReport struct {
	Trophy         models.TrophyID
	Candidates     int
	Granted        int
	AlreadyHeld    int
	Failed         int
	NoticeFailures int
	// SkipReason is set when the rule's precondition did not hold
	SkipReason string
	// Err is set when the rule's query failed; no awards were made for it
	Err      error
	Duration time.Duration
}

// Report is the outcome of an Engine run
type Report struct {
	GameID    int64
	GameState models.State
	// Skipped is true when the game was not complete and nothing was evaluated
	Skipped bool
	// LedgerUsers is the number of users whose trophies were loaded
	LedgerUsers int
	Rules       []RuleReport
	Results     []GrantResult
}

// Granted returns the number of new awards made in the run
func (r *Report) Granted() int {
	n := 0
	for _, rr := range r.Rules {
		n += rr.Granted
	}
	return n
}

// RuleErrors returns the errors of rules whose queries failed
func (r *Report) RuleErrors() []error {
	var errs []error
	for _, rr := range r.Rules {
		if rr.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rr.Trophy.Name(), rr.Err))
		}
	}
	return errs
}

type evaluation struct {
	users    []int64
	err      error
	duration time.Duration
}

// Run processes trophies for a game. Games that are not complete are skipped
// without any writes. A failing rule is logged and reported, and the other
// rules still run. Run only returns an error when the game or the entrants'
// trophies cannot be read.
func (e *Engine) Run(ctx context.Context, gameID int64) (*Report, error) {
	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		metrics.RecordRun("failed")
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}

	report := &Report{GameID: game.ID, GameState: game.State}

	if !game.IsComplete() {
		log.Info().
			Int64("game_id", game.ID).
			Str("state", game.State.String()).
			Msg("Game is NOT complete, quitting processing of trophies")
		report.Skipped = true
		metrics.RecordRun("skipped")
		return report, nil
	}
	log.Info().Int64("game_id", game.ID).Msg("Game is complete, proceeding with processing of trophies")

	log.Info().Msg("Loading existing user trophies for users who have entered this game")
	held, err := e.store.LoadTrophiesForGameEntrants(ctx, game.ID)
	if err != nil {
		metrics.RecordRun("failed")
		return nil, fmt.Errorf("failed to load user trophies for game %d: %w", game.ID, err)
	}

	ledger := NewLedger()
	ledger.Load(held)
	report.LedgerUsers = ledger.Users()
	log.Debug().Int("users", report.LedgerUsers).Msg("Loaded user trophies")

	granter := NewGranter(e.store, e.notifier, ledger)

	var evaluations []evaluation
	if e.parallel {
		evaluations = e.evaluateAll(ctx, game)
	}

	for i, rule := range e.rules {
		log.Info().Str("trophy", rule.Trophy.Name()).Msg("Processing trophy")

		var ev evaluation
		if e.parallel {
			ev = evaluations[i]
		} else {
			ev = e.evaluate(ctx, rule, game)
		}

		rr, results := e.apply(ctx, rule, ev, ledger, granter)
		report.Rules = append(report.Rules, rr)
		report.Results = append(report.Results, results...)
	}

	report.LedgerUsers = ledger.Users()
	metrics.RecordRun("complete")

	log.Info().
		Int64("game_id", game.ID).
		Int("granted", report.Granted()).
		Int("rule_errors", len(report.RuleErrors())).
		Msg("Finished processing trophies")

	return report, nil
}

func (e *Engine) evaluate(ctx context.Context, rule Rule, game *models.Game) evaluation {
	start := time.Now()
	users, err := rule.Evaluate(ctx, e.store, game)
	return evaluation{users: uniqueUsers(users), err: err, duration: time.Since(start)}
}

// evaluateAll runs every rule query concurrently. Results keep rule order.
func (e *Engine) evaluateAll(ctx context.Context, game *models.Game) []evaluation {
	evaluations := make([]evaluation, len(e.rules))

	var wg sync.WaitGroup
	for i, rule := range e.rules {
		wg.Add(1)
		go func(i int, rule Rule) {
			defer wg.Done()
			evaluations[i] = e.evaluate(ctx, rule, game)
		}(i, rule)
	}
	wg.Wait()

	return evaluations
}

func (e *Engine) apply(ctx context.Context, rule Rule, ev evaluation, ledger *Ledger, granter *Granter) (RuleReport, []GrantResult) {
	rr := RuleReport{Trophy: rule.Trophy, Duration: ev.duration}
	name := rule.Trophy.Name()

	if ev.err != nil {
		if errors.Is(ev.err, ErrRuleSkipped) {
			rr.SkipReason = ev.err.Error()
			log.Info().Str("trophy", name).Str("reason", rr.SkipReason).Msg("Not processing trophy")
			metrics.RecordRule(name, "skipped", ev.duration.Seconds())
			return rr, nil
		}
		rr.Err = ev.err
		log.Error().Err(ev.err).Str("trophy", name).Msg("Trophy rule failed, no awards made for it")
		metrics.RecordRule(name, "error", ev.duration.Seconds())
		metrics.RecordError("engine", "rule_query")
		return rr, nil
	}
	metrics.RecordRule(name, "ok", ev.duration.Seconds())

	rr.Candidates = len(ev.users)
	results := make([]GrantResult, 0, len(ev.users))
	for _, userID := range ev.users {
		if err := e.ensureLoaded(ctx, ledger, userID); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("trophy", name).Msg("Failed to load user trophies, skipping user")
			metrics.RecordError("engine", "load_user_trophies")
			rr.Failed++
			results = append(results, GrantResult{UserID: userID, Trophy: rule.Trophy, Status: StatusPersistFailed, Err: err})
			continue
		}

		res := granter.Grant(ctx, userID, rule.Trophy)
		switch res.Status {
		case StatusGranted:
			rr.Granted++
			if res.Notice == NoticeDuplicate || res.Notice == NoticeFailed {
				rr.NoticeFailures++
			}
		case StatusAlreadyHeld:
			rr.AlreadyHeld++
		default:
			rr.Failed++
		}
		results = append(results, res)
	}

	return rr, results
}

// ensureLoaded loads a user the bulk load did not cover, such as a
// competition winner who did not enter this game
func (e *Engine) ensureLoaded(ctx context.Context, ledger *Ledger, userID int64) error {
	if ledger.Loaded(userID) {
		return nil
	}

	trophies, err := e.store.LoadTrophiesForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load trophies for user %d: %w", userID, err)
	}
	ledger.LoadUser(userID, trophies)

	log.Debug().Int64("user_id", userID).Int("trophies", len(trophies)).Msg("Loaded trophies for user outside this game")
	return nil
}
