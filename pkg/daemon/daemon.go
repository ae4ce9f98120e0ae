// Package daemon собирает источник, цикл приёма и интерактивные серверы по конфигу.
// Используется из cmd/remo и из Beat.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/shiwa/remo/internal/interactive"
	"github.com/shiwa/remo/internal/logger"
	"github.com/shiwa/remo/internal/source"
	"github.com/shiwa/remo/pkg/capture"
	"github.com/shiwa/remo/pkg/config"
)

// Options — параметры запуска, которых нет в конфиге.
type Options struct {
	Version string
	Quiet   bool
	Verbose bool
	// Once — завершиться после первой сессии.
	Once bool
}

var errOnce = errors.New("once")

// Run запускает приём до отмены ctx или конца источника. onSession получает каждую сессию.
func Run(ctx context.Context, cfg *config.Config, opt Options, onSession capture.Handler) error {
	if cfg == nil {
		cfg = config.Default()
	}
	logger.Quiet = opt.Quiet
	logger.Verbose = opt.Verbose

	copt, err := capture.OptionsFromConfig(cfg.Capture)
	if err != nil {
		return err
	}
	src, err := source.NewFromConfig(cfg.Source, copt.Idle)
	if err != nil {
		return fmt.Errorf("source %s: %w", cfg.Source.Protocol, err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if err := startServers(ctx, cfg.Interactive, copt.History, opt.Version); err != nil {
		return err
	}

	handler := onSession
	if opt.Once {
		handler = func(s capture.Snapshot) {
			if onSession != nil {
				onSession(s)
			}
			cancel(errOnce)
		}
	}
	err = capture.Run(ctx, src, copt, handler)
	if errors.Is(context.Cause(ctx), errOnce) {
		return nil
	}
	return err
}

func startServers(ctx context.Context, c config.InteractiveConfig, h *capture.History, version string) error {
	if c.SSH.Enabled {
		srv, err := interactive.NewSSHServer(c.SSH, &interactive.Console{History: h, Version: version})
		if err != nil {
			return err
		}
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error("%v", err)
			}
		}()
	}
	if c.HTTP.Enabled {
		srv := interactive.NewHTTPServer(c.HTTP, h, version)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error("%v", err)
			}
		}()
	}
	return nil
}
