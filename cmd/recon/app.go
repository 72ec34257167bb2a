package main

import (
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/vrtravel/reconcli/internal/api"
	"github.com/vrtravel/reconcli/internal/classify"
	"github.com/vrtravel/reconcli/internal/config"
	"github.com/vrtravel/reconcli/internal/db"
	"github.com/vrtravel/reconcli/internal/events"
	"github.com/vrtravel/reconcli/internal/notify"
	"github.com/vrtravel/reconcli/internal/session"
	"github.com/vrtravel/reconcli/internal/store"
	"github.com/vrtravel/reconcli/internal/workflow"
)

const defaultConfigPath = "reconcli.yaml"

// app bundles everything a command needs: config, state database, API
// client, store, event bus, and the workflow engine with its observers.
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	client   *api.Client
	store    *store.Store
	bus      *events.Bus
	engine   *workflow.Engine
	notifier *notify.Notifier
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist. An explicit missing path is an error.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// buildApp wires the full command context. The session token, if any, is
// attached to the API client; the classifier and notifier are subscribed
// to the bus before the engine can publish anything.
func buildApp(configPath string, out io.Writer) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return nil, err
	}

	client, err := api.New(api.Opts{
		BaseURL: cfg.BaseURL(),
		Token:   session.Token(gormDB),
		Timeout: cfg.APITimeout(),
	})
	if err != nil {
		return nil, err
	}

	st, err := store.New(gormDB)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()

	observer, err := classify.NewObserver(classify.ObserverOpts{
		Logout: func() error { return session.Clear(gormDB) },
		Out:    out,
	})
	if err != nil {
		return nil, err
	}
	observer.Attach(bus)

	notifier, err := buildNotifier(cfg, out)
	if err != nil {
		return nil, err
	}
	if notifier != nil {
		notifier.Attach(bus)
	}

	engine, err := workflow.New(workflow.Opts{
		API:                client,
		Store:              st,
		Bus:                bus,
		PollInterval:       cfg.PollInterval(),
		MaxTransientErrors: cfg.Poll.MaxTransientErrors,
		Out:                out,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		db:       gormDB,
		client:   client,
		store:    st,
		bus:      bus,
		engine:   engine,
		notifier: notifier,
	}, nil
}

// buildNotifier creates chat adapters for whichever platforms are
// configured. Returns nil when none are.
func buildNotifier(cfg *config.Config, out io.Writer) (*notify.Notifier, error) {
	var adapters []notify.Adapter

	if cfg.Notify.Slack.BotToken != "" {
		a, err := notify.NewSlack(notify.SlackOpts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
		adapters = append(adapters, a)
	}
	if cfg.Notify.Discord.BotToken != "" {
		a, err := notify.NewDiscord(notify.DiscordOpts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		return nil, nil
	}
	return notify.New(notify.Opts{Adapters: adapters, Out: out})
}

// close releases app resources.
func (a *app) close() {
	if a.notifier != nil {
		a.notifier.Close()
	}
}
