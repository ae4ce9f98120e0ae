// Package report выводит сессии декодера в консоль: текстом или JSON.
package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shiwa/remo/internal/irformat"
	"github.com/shiwa/remo/pkg/capture"
	"github.com/shiwa/remo/pkg/remo"
)

// Session — представление снимка для JSON и HTTP API.
type Session struct {
	Seq                int       `json:"seq"`
	Source             string    `json:"source"`
	Started            time.Time `json:"started"`
	Ended              time.Time `json:"ended"`
	Format             string    `json:"format"`
	AverageTUs         int64     `json:"average_t_us"`
	AverageSeparatorUs int64     `json:"average_separator_us"`
	BytesUsed          int       `json:"bytes_used"`
	Frames             []Frame   `json:"frames"`
	Error              string    `json:"error,omitempty"`
}

// Frame — один кадр сессии.
type Frame struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Bits      int    `json:"bits"`
	ElapsedUs int64  `json:"elapsed_us"`
	Payload   string `json:"payload"`
	Sealed    bool   `json:"sealed"`
	NEC       *NEC   `json:"nec,omitempty"`
}

// NEC — адрес и команда 32-битного кадра NEC.
type NEC struct {
	Code    uint32 `json:"code"`
	Address uint16 `json:"address"`
	Command uint8  `json:"command"`
	Valid   bool   `json:"valid"`
}

// FromSnapshot строит представление снимка.
func FromSnapshot(s capture.Snapshot) Session {
	out := Session{
		Seq:                s.Seq,
		Source:             s.Source,
		Started:            s.Started,
		Ended:              s.Ended,
		Format:             s.Format.String(),
		AverageTUs:         s.AverageT.Microseconds(),
		AverageSeparatorUs: s.AverageSeparator.Microseconds(),
		BytesUsed:          s.BytesUsed,
		Frames:             make([]Frame, 0, len(s.Frames)),
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	for i, f := range s.Frames {
		out.Frames = append(out.Frames, frameView(i, s.Format, f))
	}
	return out
}

func frameView(i int, format remo.Format, f remo.Frame) Frame {
	v := Frame{
		Index:     i,
		Kind:      f.Kind.String(),
		Bits:      f.Bits,
		ElapsedUs: f.Elapsed.Microseconds(),
		Payload:   hex.EncodeToString(f.Payload),
		Sealed:    f.Sealed,
	}
	if format == remo.FormatNEC && f.Kind != remo.Repeater {
		if code, ok := irformat.NECCode(f.Payload, f.Bits); ok {
			valid, addr, cmd := irformat.SplitRawNECData(code)
			v.NEC = &NEC{Code: code, Address: addr, Command: cmd, Valid: valid}
		}
	}
	return v
}

// Printer печатает снимки в выбранном формате: text, json или none.
type Printer struct {
	Format string
	W      io.Writer
}

// Print выводит снимок.
func (p Printer) Print(s capture.Snapshot) error {
	switch p.Format {
	case "none":
		return nil
	case "json":
		return WriteJSON(p.W, s)
	default:
		return WriteText(p.W, s)
	}
}

// WriteJSON пишет снимок одной строкой JSON.
func WriteJSON(w io.Writer, s capture.Snapshot) error {
	return json.NewEncoder(w).Encode(FromSnapshot(s))
}

// WriteText пишет снимок в читаемом виде.
func WriteText(w io.Writer, s capture.Snapshot) error {
	v := FromSnapshot(s)
	var b strings.Builder
	fmt.Fprintf(&b, "session #%d %s %s T=%dus sep=%s frames=%d bytes=%d\n",
		v.Seq, v.Source, v.Format, v.AverageTUs, formatMs(v.AverageSeparatorUs), len(v.Frames), v.BytesUsed)
	for _, f := range v.Frames {
		fmt.Fprintf(&b, "  [%d] %-13s %3d bits %9s", f.Index, f.Kind, f.Bits, formatMs(f.ElapsedUs))
		if f.Payload != "" {
			fmt.Fprintf(&b, "  %s", f.Payload)
		}
		if f.NEC != nil {
			fmt.Fprintf(&b, "  nec addr=%#04x cmd=%#02x", f.NEC.Address, f.NEC.Command)
			if !f.NEC.Valid {
				b.WriteString(" (bad inverse)")
			}
		}
		if !f.Sealed {
			b.WriteString("  (unsealed)")
		}
		b.WriteByte('\n')
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", v.Error)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFormats печатает таблицу форматов с интервалами приёма.
func WriteFormats(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-9s %5s  %-13s %-13s %-13s %-11s %-11s\n", "format", "T,us", "leader mark", "leader space", "repeater", "symbol0", "symbol1")
	for _, d := range irformat.Table() {
		fmt.Fprintf(&b, "%-9s %5d  %-13s %-13s %-13s %-11s %-11s\n", d.Format, d.Unit,
			formatRange(d.LeaderMark), formatRange(d.LeaderSpace), formatRange(d.Repeater),
			formatRange(d.Symbol0), formatRange(d.Symbol1))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatRange(r irformat.Range) string {
	if r.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

func formatMs(us int64) string {
	return fmt.Sprintf("%d.%02dms", us/1000, us%1000/10)
}
