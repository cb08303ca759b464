package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/laybot/config"
	"github.com/alejandrodnm/laybot/internal/adapters/betfair"
	"github.com/alejandrodnm/laybot/internal/adapters/livescore"
	"github.com/alejandrodnm/laybot/internal/adapters/notify"
	"github.com/alejandrodnm/laybot/internal/adapters/sheet"
	"github.com/alejandrodnm/laybot/internal/adapters/storage"
	"github.com/alejandrodnm/laybot/internal/application/bot"
	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/executor"
	"github.com/alejandrodnm/laybot/internal/ports"
	"github.com/alejandrodnm/laybot/internal/targets"
	"github.com/alejandrodnm/laybot/internal/tracking"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one polling cycle and exit")
	testMode := flag.Bool("test", false, "use simulated exchange and feed, no real money")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *testMode {
		cfg.Bot.TestMode = true
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("laybot starting",
		"config", *configPath,
		"sheet", cfg.Sheet.Path,
		"test_mode", cfg.Bot.TestMode,
		"once", *once,
	)

	table := targets.NewTable(sheet.Reader{}, cfg.Sheet.Path)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole()
	var notifier ports.Notifier = console
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			slog.Error("failed to start telegram notifier", "err", err)
			os.Exit(1)
		}
		notifier = notify.Multi{console, tg}
	}

	markets, placer, session, feed := buildCollaborators(cfg)

	manager := tracking.NewManager()
	svc := tracking.NewService(manager, tracking.NewMatcher(), feed, table, trackerConfig(cfg))
	exec := executor.New(markets, placer, table, executorConfig(cfg))

	botCfg := bot.Config{
		Intervals: tracking.Intervals{
			Default:     time.Duration(cfg.Bot.IntervalSeconds) * time.Second,
			Intensive:   time.Duration(cfg.Bot.IntensiveIntervalSeconds) * time.Second,
			Fast:        time.Duration(cfg.Bot.FastIntervalSeconds) * time.Second,
			FastEnabled: cfg.Bot.FastEnabled,
		},
		KeepAliveInterval: cfg.KeepAliveInterval(),
	}
	b := bot.New(botCfg, markets, feed, session, store, notifier, table, svc, manager, exec)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		if err := b.RunOnce(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := b.Run(ctx); err != nil {
		slog.Error("bot exited with error", "err", err)
		os.Exit(1)
	}

	startedAt, bets, skips := b.Summary()
	console.PrintSessionReport(notify.SessionReportInput{
		StartedAt: startedAt,
		Bets:      bets,
		Skips:     skips,
	})
	slog.Info("laybot stopped cleanly")
}

// buildCollaborators cablea los adaptadores reales, o los simulados en modo
// test.
func buildCollaborators(cfg *config.Config) (ports.MarketProvider, ports.BetPlacer, ports.Session, ports.LiveFeed) {
	if cfg.Bot.TestMode {
		mock := betfair.NewMockExchange(1000)
		return mock, mock, nil, livescore.NewMockFeed()
	}

	client := betfair.NewClient(cfg.Exchange.AppKey, cfg.Exchange.BettingBase, cfg.Exchange.AccountBase)
	session := betfair.NewSession(client, cfg.Exchange.Username, cfg.Exchange.Password, cfg.Exchange.IdentityBase)
	budget := livescore.NewBudget(cfg.Feed.RequestsPerDay)
	feed := livescore.NewClient(cfg.Feed.APIKey, cfg.Feed.APISecret, cfg.Feed.BaseURL, budget)
	return client, client, session, feed
}

func trackerConfig(cfg *config.Config) domain.TrackerConfig {
	exceptions := make(map[string]struct{}, len(cfg.Betting.ZeroZeroExceptions))
	for _, name := range cfg.Betting.ZeroZeroExceptions {
		exceptions[name] = struct{}{}
	}
	return domain.TrackerConfig{
		Window: domain.MinuteWindow{
			Start: cfg.Betting.WindowStart,
			End:   cfg.Betting.WindowEnd,
		},
		TargetOver:          cfg.Betting.TargetOver,
		VARCheckEnabled:     cfg.Betting.VARCheckEnabled,
		EarlyDiscardEnabled: cfg.Betting.EarlyDiscardEnabled,
		StrictDiscardAt60:   cfg.Betting.StrictDiscardAt60,
		DiscardDelay:        cfg.DiscardDelay(),
		ZeroZeroExceptions:  exceptions,
	}
}

func executorConfig(cfg *config.Config) executor.Config {
	return executor.Config{
		DefaultMinOdds: cfg.Betting.DefaultMinOdds,
		MaxSpreadTicks: cfg.Betting.MaxSpreadTicks,
		TicksOffset:    cfg.Betting.TicksOffset,
		Ladder:         domain.LadderType(cfg.Betting.Ladder),
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
