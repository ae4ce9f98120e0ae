package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shiwa/remo/internal/irformat"
)

// Mode2 читает текстовый вывод LIRC mode2: строки "pulse N", "space N", "timeout N".
// pulse — mark; timeout — конец посылки, отдаётся как ErrIdle. Прочие строки пропускаются.
type Mode2 struct {
	name string
	sc   *bufio.Scanner
	c    io.Closer
	line int
}

// NewMode2 читает r; c закрывается в Close (может быть nil).
func NewMode2(name string, r io.Reader, c io.Closer) *Mode2 {
	return &Mode2{name: name, sc: bufio.NewScanner(r), c: c}
}

// OpenMode2 открывает файл path; "-" — stdin.
func OpenMode2(path string) (*Mode2, error) {
	if path == "-" {
		return NewMode2("mode2:stdin", os.Stdin, nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mode2 open: %w", err)
	}
	return NewMode2("mode2:"+path, f, f), nil
}

func (m *Mode2) Name() string     { return m.name }
func (m *Mode2) Protocol() string { return "mode2" }

// ReadSample не ждёт: файл читается сразу, timeout не используется.
func (m *Mode2) ReadSample(time.Duration) (Sample, error) {
	for m.sc.Scan() {
		m.line++
		fields := strings.Fields(m.sc.Text())
		if len(fields) != 2 {
			continue
		}
		var level irformat.Level
		switch fields[0] {
		case "pulse":
			level = irformat.Mark
		case "space":
			level = irformat.Space
		case "timeout":
			return Sample{}, ErrIdle
		default:
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return Sample{}, fmt.Errorf("%s:%d: %w", m.name, m.line, err)
		}
		return Sample{Duration: uint32(v), Level: level}, nil
	}
	if err := m.sc.Err(); err != nil {
		return Sample{}, fmt.Errorf("%s: %w", m.name, err)
	}
	return Sample{}, io.EOF
}

func (m *Mode2) Close() error {
	if m.c == nil {
		return nil
	}
	return m.c.Close()
}

// WriteMode2 выводит сэмплы в формате mode2.
func WriteMode2(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		kind := "pulse"
		if s.Level == irformat.Space {
			kind = "space"
		}
		if _, err := fmt.Fprintf(bw, "%s %d\n", kind, s.Duration); err != nil {
			return err
		}
	}
	return bw.Flush()
}
