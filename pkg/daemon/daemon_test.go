package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shiwa/remo/internal/irformat"
	"github.com/shiwa/remo/internal/irtest"
	"github.com/shiwa/remo/internal/source"
	"github.com/shiwa/remo/pkg/capture"
	"github.com/shiwa/remo/pkg/config"
	"github.com/shiwa/remo/pkg/remo"
)

func writeCapture(t *testing.T, parts ...[]irtest.Sample) string {
	t.Helper()
	var samples []source.Sample
	for _, s := range irtest.Stream(parts...) {
		samples = append(samples, source.Sample{Duration: s.Duration, Level: s.Level})
	}
	path := filepath.Join(t.TempDir(), "capture.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := source.WriteMode2(f, samples); err != nil {
		t.Fatal(err)
	}
	return path
}

func mode2Config(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("source:\n  protocol: mode2\n  file: " + path + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRunMode2(t *testing.T) {
	frame := irtest.Frame(irformat.NEC, irtest.Bits(0x04, 0xFB, 0x02, 0xFD))
	gap := []irtest.Sample{irtest.Gap(40000)}
	path := writeCapture(t, frame, gap, irtest.Repeat(irformat.NEC), gap)

	var got []capture.Snapshot
	err := Run(context.Background(), mode2Config(t, path), Options{Quiet: true}, func(s capture.Snapshot) {
		got = append(got, s)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Format != remo.FormatNEC || len(got[0].Frames) != 2 {
		t.Fatalf("сессии = %+v", got)
	}
}

func TestRunOnce(t *testing.T) {
	frame := irtest.Frame(irformat.Sony, irtest.Bits(0x3C))
	path := writeCapture(t, frame)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// timeout в mode2 даёт ErrIdle и завершает первую сессию
	twice := string(data) + "timeout 100000\n" + string(data)
	if err := os.WriteFile(path, []byte(twice), 0o644); err != nil {
		t.Fatal(err)
	}

	n := 0
	err = Run(context.Background(), mode2Config(t, path), Options{Quiet: true, Once: true}, func(capture.Snapshot) { n++ })
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("сессий = %d, want 1", n)
	}
}

func TestRunBadSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Protocol = "mode2"
	cfg.Source.File = filepath.Join(t.TempDir(), "missing.txt")
	if err := Run(context.Background(), cfg, Options{Quiet: true}, nil); err == nil {
		t.Error("ожидали ошибку открытия источника")
	}
}
