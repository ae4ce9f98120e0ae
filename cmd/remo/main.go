// remo — приём и декодирование посылок ИК-пультов (NEC, Kadenkyo, Sony).
//
// Сэмплы (длительность, уровень) приходят от МК захвата по последовательному порту,
// из файла LIRC mode2 или с линии GPIO; каждая сессия печатается текстом или JSON.
//
// Использование:
//
//	remo -list-ports                         — перечислить последовательные порты
//	remo -config remo.yml                    — приём по конфигу
//	remo -source mode2 -file capture.txt -json
//	remo -source gpio -pin GPIO17 -once
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiwa/remo/internal/logger"
	"github.com/shiwa/remo/internal/report"
	"github.com/shiwa/remo/internal/source"
	"github.com/shiwa/remo/pkg/capture"
	"github.com/shiwa/remo/pkg/config"
	"github.com/shiwa/remo/pkg/daemon"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигу (по умолчанию remo.yml, если есть)")
	src := flag.String("source", "", "источник: serial, uart, mode2, gpio (переопределяет config)")
	device := flag.String("device", "", "последовательный порт (переопределяет config)")
	baud := flag.Int("baud", 0, "скорость порта (переопределяет config)")
	pin := flag.String("pin", "", "линия GPIO (переопределяет config)")
	file := flag.String("file", "", "файл mode2, - для stdin (переопределяет config)")
	asJSON := flag.Bool("json", false, "вывод сессий в JSON")
	once := flag.Bool("once", false, "выйти после первой сессии")
	rtPrio := flag.Int("realtime", 0, "приоритет SCHED_FIFO потока приёма 1..99 (Linux, нужен CAP_SYS_NICE)")
	listPorts := flag.Bool("list-ports", false, "перечислить последовательные порты и выйти")
	showFormats := flag.Bool("formats", false, "показать форматы и интервалы приёма и выйти")
	quiet := flag.Bool("quiet", false, "меньше вывода")
	verbose := flag.Bool("verbose", false, "отладочный вывод: каждый кадр и ошибки декодера")
	showVersion := flag.Bool("version", false, "версия")
	flag.Parse()

	switch {
	case *showVersion:
		fmt.Printf("remo %s\n", version)
		return
	case *listPorts:
		runListPorts()
		return
	case *showFormats:
		_ = report.WriteFormats(os.Stdout)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *src != "" {
		cfg.Source.Protocol = *src
	}
	if *device != "" {
		cfg.Source.Device = *device
	}
	if *baud != 0 {
		cfg.Source.Baud = *baud
	}
	if *pin != "" {
		cfg.Source.Pin = *pin
	}
	if *file != "" {
		cfg.Source.File = *file
	}
	if *asJSON {
		cfg.Report.Format = "json"
	}
	if *rtPrio != 0 {
		cfg.Capture.RealtimePriority = *rtPrio
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := runWithShutdown(cfg, daemon.Options{Version: version, Quiet: *quiet, Verbose: *verbose, Once: *once}); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = "remo.yml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runListPorts() {
	ports, err := source.ListPorts()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(ports) == 0 {
		fmt.Println("последовательных портов не найдено")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}
}

// runWithShutdown запускает приём; по SIGINT/SIGTERM контекст отменяется, источник закрывается.
func runWithShutdown(cfg *config.Config, opt daemon.Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("получен сигнал %v, завершение...", sig)
		cancel()
	}()

	printer := report.Printer{Format: cfg.Report.Format, W: os.Stdout}
	err := daemon.Run(ctx, cfg, opt, func(s capture.Snapshot) {
		if err := printer.Print(s); err != nil {
			logger.Error("report: %v", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
