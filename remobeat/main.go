// Remobeat — Beat на базе Elastic Beats v7 (libbeat). Запускает тот же приём, что и
// cmd/remo (источник, сессии декодера, SSH/HTTP), и публикует каждый декодированный
// ИК-кадр отдельным событием в индексы remobeat-*. Настройки — в секции remobeat
// файла remobeat.yml, формат совпадает с remo.yml.
package main

import (
	"os"

	"github.com/elastic/beats/v7/libbeat/cmd"
	"github.com/elastic/beats/v7/libbeat/cmd/instance"
	"github.com/shiwa/remo/remobeat/beater"
)

const name = "remobeat"

// version задаётся при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	settings := instance.Settings{
		Name:        name,
		IndexPrefix: name,
		Version:     version,
	}
	if err := cmd.GenRootCmdWithSettings(beater.New, settings).Execute(); err != nil {
		os.Exit(1)
	}
}
