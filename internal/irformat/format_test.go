package irformat

import "testing"

func TestMargin(t *testing.T) {
	tests := []struct {
		nominal uint32
		want    Range
	}{
		{562, Range{450, 674}},
		{8992, Range{7194, 10790}},
		{1000, Range{800, 1200}},
		{425, Range{340, 510}},
		{0, Range{0, 0}},
	}
	for _, tt := range tests {
		if got := Margin(tt.nominal); got != tt.want {
			t.Errorf("Margin(%d) = %+v, want %+v", tt.nominal, got, tt.want)
		}
	}
}

func TestInRange(t *testing.T) {
	for _, d := range Table() {
		nominals := []uint32{
			d.Unit * uint32(d.Hints.LeaderMark),
			d.Unit * uint32(d.Hints.Symbol0),
			d.Unit * uint32(d.Hints.Symbol1),
		}
		for _, n := range nominals {
			if !InRange(n, n) {
				t.Errorf("%v: InRange(%d, %d) must be reflexive", d.Format, n, n)
			}
			r := Margin(n)
			if !InRange(r.Min, n) || !InRange(r.Max, n) {
				t.Errorf("%v: bounds %+v of %d must be accepted", d.Format, r, n)
			}
			if InRange(r.Min-1, n) || InRange(r.Max+1, n) {
				t.Errorf("%v: values outside %+v of %d must be rejected", d.Format, r, n)
			}
		}
	}

	t.Run("exact twenty percent", func(t *testing.T) {
		if !InRange(800, 1000) || !InRange(1200, 1000) {
			t.Error("exact ±20% must be accepted")
		}
		if InRange(799, 1000) || InRange(1201, 1000) {
			t.Error("beyond ±20% must be rejected")
		}
	})
}

func TestRangeContains(t *testing.T) {
	r := Range{10, 20}
	if !r.Contains(10) || !r.Contains(20) || !r.Contains(15) {
		t.Error("bounds are inclusive")
	}
	if r.Contains(9) || r.Contains(21) {
		t.Error("outside values must be rejected")
	}
	if (Range{}).Contains(0) {
		t.Error("zero Range contains nothing")
	}
}

func TestTableOrder(t *testing.T) {
	got := Table()
	want := []Format{NEC, Kadenkyo, Sony}
	if len(got) != len(want) {
		t.Fatalf("table len %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Format != want[i] {
			t.Errorf("table[%d] = %v want %v", i, got[i].Format, want[i])
		}
	}
	got[0].Unit = 1
	if again := Table(); again[0].Unit != UnitNEC {
		t.Error("Table must return a copy")
	}
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(Sony)
	if !ok || d.Format != Sony {
		t.Fatalf("Lookup(Sony) = %+v, %v", d, ok)
	}
	if !d.LeaderSpace.IsZero() || !d.Repeater.IsZero() {
		t.Error("sony has neither a leader space nor a repeat code")
	}
	if d.InfoEdge() != Mark {
		t.Error("sony encodes bits in marks")
	}
	if _, ok := Lookup(Unknown); ok {
		t.Error("Lookup(Unknown) must fail")
	}
	nec, _ := Lookup(NEC)
	if nec.InfoEdge() != Space {
		t.Error("nec encodes bits in spaces")
	}
	if nec.MaxSymbol() != nec.Symbol1.Max {
		t.Errorf("MaxSymbol = %d want %d", nec.MaxSymbol(), nec.Symbol1.Max)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		mark   uint32
		space  uint32
		format Format
		repeat bool
		ok     bool
	}{
		{"nec data", 8992, 4496, NEC, false, true},
		{"nec repeat", 8992, 2248, NEC, true, true},
		{"kadenkyo data", 3400, 1700, Kadenkyo, false, true},
		{"kadenkyo repeat", 3400, 3400, Kadenkyo, true, true},
		{"sony without leader space", 2400, 600, Sony, false, true},
		{"overlap resolved by table order", 2750, 1700, Kadenkyo, false, true},
		{"overlap falls through to sony", 2750, 600, Sony, false, true},
		{"nothing", 5000, 5000, Unknown, false, false},
		{"nec mark with bad space", 8992, 1000, Unknown, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, repeat, ok := Match(tt.mark, tt.space)
			if ok != tt.ok {
				t.Fatalf("ok = %v want %v", ok, tt.ok)
			}
			if d.Format != tt.format || repeat != tt.repeat {
				t.Errorf("got %v repeat=%v want %v repeat=%v", d.Format, repeat, tt.format, tt.repeat)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	if NEC.String() != "nec" || Sony.String() != "sony" || Format(9).String() != "invalid" {
		t.Error("unexpected format names")
	}
	if Mark.String() != "mark" || Space.String() != "space" {
		t.Error("unexpected level names")
	}
}
