package app

import (
	"fmt"

	"gander/internal/config"
	"gander/internal/gateway/notifier"
	"gander/internal/logger"
	"gander/internal/store"
	"gander/internal/store/gormstore"
	"gander/internal/trader"
	livehttp "gander/internal/transport/http/live"
)

// Build assembles the application from a loaded config: store, notifier,
// trading engine and HTTP server. Nothing is started here.
func Build(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	st, err := buildStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	notify := buildNotifier(cfg.Notify)
	engine := trader.NewEngine(*cfg, st, notify)

	httpSrv, err := livehttp.NewServer(livehttp.ServerConfig{
		Addr:            cfg.App.HTTPAddr,
		Store:           st,
		Bot:             engine,
		DefaultSettings: cfg.Trading.Settings(),
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build http server: %w", err)
	}

	return &App{
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   st,
		engine:  engine,
		http:    httpSrv,
	}, nil
}

func buildStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.Path == "" {
		logger.Warnf("app: no store path configured, state will not survive restarts")
		return store.NewMemStore(), nil
	}
	return gormstore.New(cfg.Path)
}

func buildNotifier(cfg config.NotifyConfig) notifier.TextNotifier {
	tg := cfg.Telegram
	if !tg.Enabled || tg.BotToken == "" || tg.ChatID == "" {
		return notifier.Noop{}
	}
	return notifier.NewTelegram(tg.BotToken, tg.ChatID)
}
