// Package beater реализует интерфейс Beater для Remobeat (libbeat v7).
package beater

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/beats/v7/libbeat/beat"
	"github.com/elastic/beats/v7/libbeat/common"
	"github.com/elastic/beats/v7/libbeat/logp"
	"github.com/shiwa/remo/internal/report"
	"github.com/shiwa/remo/pkg/capture"
	"github.com/shiwa/remo/pkg/config"
	"github.com/shiwa/remo/pkg/daemon"
)

// Remobeat реализует beat.Beater.
type Remobeat struct {
	done   chan struct{}
	config *config.Config
	client beat.Client
}

// New создаёт Beater из конфигурации Beat.
func New(b *beat.Beat, cfg *common.Config) (beat.Beater, error) {
	sub, err := cfg.Child("remobeat", -1)
	if err != nil || sub == nil {
		return nil, fmt.Errorf("конфиг remobeat не найден: %v", err)
	}
	c := config.Default()
	if err := sub.Unpack(c); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига remobeat: %w", err)
	}
	config.ApplyDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Remobeat{
		done:   make(chan struct{}),
		config: c,
	}, nil
}

// Run запускает приём до Stop() и публикует каждый кадр.
func (bt *Remobeat) Run(b *beat.Beat) error {
	logp.Info("remobeat запущен: источник %s", bt.config.Source.Protocol)
	client, err := b.Publisher.Connect()
	if err != nil {
		return fmt.Errorf("publisher: %w", err)
	}
	bt.client = client

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-bt.done
		cancel()
	}()

	err = daemon.Run(ctx, bt.config, daemon.Options{Version: b.Info.Version, Quiet: true}, func(s capture.Snapshot) {
		bt.client.PublishAll(events(s))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logp.Warn("приём завершён: %v", err)
	}
	return nil
}

// Stop останавливает Run.
func (bt *Remobeat) Stop() {
	if bt.client != nil {
		bt.client.Close()
	}
	close(bt.done)
}

// events строит по событию на кадр; сессия без кадров (ошибка на лидере) даёт одно событие с ошибкой.
func events(s capture.Snapshot) []beat.Event {
	v := report.FromSnapshot(s)
	session := common.MapStr{
		"seq":                  v.Seq,
		"source":               v.Source,
		"format":               v.Format,
		"average_t_us":         v.AverageTUs,
		"average_separator_us": v.AverageSeparatorUs,
		"frames":               len(v.Frames),
	}
	if v.Error != "" {
		session["error"] = v.Error
	}
	if len(v.Frames) == 0 {
		return []beat.Event{{Timestamp: s.Ended, Fields: common.MapStr{"session": session}}}
	}
	out := make([]beat.Event, 0, len(v.Frames))
	for _, f := range v.Frames {
		frame := common.MapStr{
			"index":      f.Index,
			"kind":       f.Kind,
			"bits":       f.Bits,
			"elapsed_us": f.ElapsedUs,
			"payload":    f.Payload,
			"sealed":     f.Sealed,
		}
		if f.NEC != nil {
			frame["nec"] = common.MapStr{
				"code":    f.NEC.Code,
				"address": f.NEC.Address,
				"command": f.NEC.Command,
				"valid":   f.NEC.Valid,
			}
		}
		out = append(out, beat.Event{
			Timestamp: s.Ended,
			Fields:    common.MapStr{"session": session.Clone(), "frame": frame},
		})
	}
	return out
}
