// Package interactive — SSH-консоль и HTTP API для просмотра последних сессий приёма.
package interactive

import (
	"fmt"
	"strings"

	"github.com/shiwa/remo/internal/report"
	"github.com/shiwa/remo/pkg/capture"
)

// Console разбирает команды консоли. Состояния нет: каждая строка — отдельная команда.
type Console struct {
	History *capture.History
	Version string
}

const helpText = `show sessions   последние сессии
show last       подробно последняя сессия
show formats    форматы и интервалы приёма
show version    версия
help            эта справка
exit            выход
`

// Dispatch выполняет команду и возвращает вывод; exit — закрыть сеанс.
func (c *Console) Dispatch(line string) (out string, exit bool) {
	cmd := strings.Join(strings.Fields(line), " ")
	switch cmd {
	case "":
		return "", false
	case "exit", "logout", "quit":
		return "", true
	case "help", "show help", "?":
		return helpText, false
	case "show version":
		return fmt.Sprintf("remo %s\n", c.Version), false
	case "show formats":
		var b strings.Builder
		_ = report.WriteFormats(&b)
		return b.String(), false
	case "show sessions":
		return c.sessions(), false
	case "show last":
		if c.History == nil {
			return "no sessions\n", false
		}
		s, ok := c.History.Last()
		if !ok {
			return "no sessions\n", false
		}
		var b strings.Builder
		_ = report.WriteText(&b, s)
		return b.String(), false
	default:
		return fmt.Sprintf("%% Unknown command: %s\n", cmd), false
	}
}

func (c *Console) sessions() string {
	if c.History == nil {
		return "no sessions\n"
	}
	list := c.History.List()
	if len(list) == 0 {
		return "no sessions\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-24s %-9s %6s  %s\n", "seq", "source", "format", "frames", "status")
	for _, s := range list {
		status := "ok"
		if s.Err != nil {
			status = s.Err.Error()
		}
		fmt.Fprintf(&b, "%-5d %-24s %-9s %6d  %s\n", s.Seq, s.Source, s.Format, len(s.Frames), status)
	}
	fmt.Fprintf(&b, "total %d\n", c.History.Total())
	return b.String()
}
