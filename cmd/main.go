// Command recallbot runs the simulated crypto trading chatbot for the
// Recall competitions API. Trades execute against an in-memory ledger;
// with --live they are also posted to the real API.
//
// Usage:
//
//	recallbot setup                  (interactive configuration wizard)
//	recallbot --config config.yaml
//	recallbot --sandbox --live       (uses CLI arguments)
//
// Required environment variables:
//
//	For live mode: RECALL_API_KEY
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/chat"
	"github.com/vadiminshakov/recallbot/internal/clients"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/ledger"
	"github.com/vadiminshakov/recallbot/internal/market"
	"github.com/vadiminshakov/recallbot/internal/services/executor"
	"github.com/vadiminshakov/recallbot/internal/services/scheduler"
	"github.com/vadiminshakov/recallbot/internal/session"
	"github.com/vadiminshakov/recallbot/internal/settings"
	"github.com/vadiminshakov/recallbot/internal/setup"
	"github.com/vadiminshakov/recallbot/internal/storage/botstate"
	"github.com/vadiminshakov/recallbot/internal/storage/tradelog"
	"github.com/vadiminshakov/recallbot/internal/tokens"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(conf.LogFile)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Error("bot terminated", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	registry, err := tokens.NewRegistry(conf.Tokens)
	if err != nil {
		return err
	}

	bals := ledger.New(conf.InitialBalances, logger)
	board := market.DefaultBoard()
	params := settings.New(conf.Trading)

	journal, err := tradelog.NewWALStore(filepath.Join(conf.StateDir, "wal"))
	if err != nil {
		return err
	}
	defer journal.Close()

	stateStore, err := botstate.NewStore(conf.StateDir)
	if err != nil {
		return err
	}

	opts := []executor.Option{executor.WithJournal(journal)}
	if conf.Live {
		client := clients.NewRecallClient(conf.BaseURL, conf.APIKey)
		healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := client.Health(healthCtx); err != nil {
			logger.Warn("trading api health check failed", zap.String("url", conf.BaseURL), zap.Error(err))
		}
		cancel()
		opts = append(opts, executor.WithAPIClient(client))
		logger.Info("live mode enabled", zap.String("url", conf.BaseURL))
	}

	// exec is captured by the state-dump hook before it is assigned; the
	// hook only fires from Execute, long after construction
	var exec *executor.Executor
	opts = append(opts, executor.WithOnTrade(func(domain.TradeRecord) {
		state := botstate.NewState(bals.Snapshot(), exec.History(0))
		if err := stateStore.Save(state); err != nil {
			logger.Warn("failed to persist bot state", zap.Error(err))
		}
	}))
	exec = executor.New(registry, bals, board, params, logger, opts...)

	if err := restoreState(stateStore, journal, bals, exec, logger); err != nil {
		return err
	}

	sessions := session.NewStore()
	sched := scheduler.New(exec, board, bals, sessions, params, logger, func(msg string) {
		fmt.Println(msg)
	})

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	dispatcher := chat.NewDispatcher(ctx, registry, bals, board, exec, sessions, sched,
		params, conf.Strategy, rnd, logger)

	repl := chat.NewREPL(dispatcher, sessions, board, params, os.Stdin, os.Stdout, logger)
	err = repl.Run(ctx)

	if stopErr := sched.Stop(); stopErr != nil && !errors.Is(stopErr, scheduler.ErrNotRunning) {
		logger.Warn("failed to stop auto-trading", zap.Error(stopErr))
	}
	finalState := botstate.NewState(bals.Snapshot(), exec.History(0))
	if saveErr := stateStore.Save(finalState); saveErr != nil {
		logger.Warn("failed to persist bot state on shutdown", zap.Error(saveErr))
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// restoreState prefers the json snapshot and falls back to replaying the
// trade journal when no snapshot exists yet.
func restoreState(stateStore *botstate.Store, journal *tradelog.WALStore,
	bals *ledger.Ledger, exec *executor.Executor, logger *zap.Logger) error {
	state, err := stateStore.Load()
	if err != nil {
		return err
	}
	if state != nil {
		balances, err := state.Balances()
		if err != nil {
			return err
		}
		trades, err := state.Trades()
		if err != nil {
			return err
		}
		bals.Restore(balances)
		exec.RestoreHistory(trades)
		logger.Info("state restored from snapshot",
			zap.Int("trades", len(trades)), zap.Time("saved_at", state.LastUpdated))
		return nil
	}

	trades, err := journal.Replay()
	if err != nil {
		return err
	}
	if len(trades) > 0 {
		exec.RestoreHistory(trades)
		logger.Info("trade history replayed from journal", zap.Int("trades", len(trades)))
	}
	return nil
}

func newLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
