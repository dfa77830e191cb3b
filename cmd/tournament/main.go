package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/config"
	"github.com/iamasit07/4-in-a-row/engine/internal/events"
	"github.com/iamasit07/4-in-a-row/engine/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/tournament"
	"github.com/iamasit07/4-in-a-row/engine/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		profileA = flag.String("a", bot.ProfileHard, "first profile")
		profileB = flag.String("b", bot.ProfileEasy, "second profile")
		games    = flag.Int("games", 20, "number of games; first mover alternates")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "base seed, game i uses seed+i")
		workers  = flag.Int("workers", runtime.NumCPU(), "games played concurrently")
		moveTime = flag.Duration("movetime", -1, "per-move search budget (default from MOVE_TIME_MS)")
		save     = flag.Bool("save", true, "store the result when DATABASE_URL is set")
	)
	flag.Parse()

	cfg := config.LoadConfig()
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, *profileA, *profileB, *games, *seed, *workers, *moveTime, *save, os.Stdout); err != nil {
		log.Error("Tournament failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, nameA, nameB string, games int, seed int64, workers int, moveTime time.Duration, save bool, out io.Writer) error {
	a, err := bot.ParseProfile(nameA)
	if err != nil {
		return err
	}
	b, err := bot.ParseProfile(nameB)
	if err != nil {
		return err
	}

	engineCfg := cfg.EngineConfig()
	if moveTime >= 0 {
		engineCfg.MoveTime = moveTime
	}
	if msg := timingWarning(engineCfg.MoveTime, workers); msg != "" {
		log.Warn(msg, zap.Duration("move_time", engineCfg.MoveTime), zap.Int("workers", workers))
	}
	engine, err := bot.NewEngine(engineCfg, log.Named("engine"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listeners := tournament.Listeners{newProgress(out, games)}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafkaProducer(events.KafkaConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopicEvents,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}, log)
		if err != nil {
			log.Warn("Kafka unavailable, events disabled", zap.Error(err))
		} else {
			defer producer.Close()
			listeners = append(listeners, events.NewTournamentListener(producer, log))
		}
	}

	arena := tournament.NewArena(engine, log.Named("arena")).WithListener(listeners)
	result, err := arena.Run(ctx, tournament.Config{
		ProfileA: a,
		ProfileB: b,
		Games:    games,
		Seed:     seed,
		Workers:  workers,
	})
	if err != nil {
		return err
	}

	printStandings(out, result)

	if save && cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.RunMigrations(ctx, db); err != nil {
			return err
		}
		if err := postgres.NewTournamentRepo(db).SaveTournament(ctx, result); err != nil {
			return err
		}
		log.Info("Tournament saved", zap.String("tournament_id", result.ID))
	}
	return nil
}

// timingWarning returns a non-empty message when a run with the same seed may
// not repeat its results. A per-move deadline makes the reached depth depend
// on machine load, and concurrent games add to that load.
func timingWarning(moveTime time.Duration, workers int) string {
	if moveTime <= 0 {
		return ""
	}
	if workers != 1 {
		return "Per-move deadline with concurrent games; results are not reproducible, use -movetime 0"
	}
	return "Per-move deadline set; results may differ between runs, use -movetime 0"
}
