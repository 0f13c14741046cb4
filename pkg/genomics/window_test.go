package genomics

import (
	"testing"

	"github.com/matzehuels/genomechart/pkg/errors"
)

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name    string
		chr     string
		start   int64
		end     int64
		wantErr bool
	}{
		{"valid", "chr1", 1000, 2000, false},
		{"empty interval", "chr1", 1000, 1000, false},
		{"zero start", "chrX", 0, 10, false},
		{"start after end", "chr1", 2000, 1000, true},
		{"negative start", "chr1", -1, 10, true},
		{"missing chromosome", "", 0, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWindow(tt.chr, tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidWindow) {
					t.Errorf("error code = %v, want INVALID_WINDOW", errors.GetCode(err))
				}
				return
			}
			if w.Chr != tt.chr || w.Start != tt.start || w.End != tt.end {
				t.Errorf("NewWindow() = %+v", w)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input   string
		want    Window
		wantErr bool
	}{
		{"chr1:1000-2000", Window{"chr1", 1000, 2000}, false},
		{"chr1:1,000-2,000", Window{"chr1", 1000, 2000}, false},
		{" chr2:0-5 ", Window{"chr2", 0, 5}, false},
		{"chr1", Window{}, true},
		{"chr1:1000", Window{}, true},
		{"chr1:a-2000", Window{}, true},
		{"chr1:1000-b", Window{}, true},
		{"chr1:2000-1000", Window{}, true},
		{":1-2", Window{}, true},
	}

	for _, tt := range tests {
		got, err := ParseWindow(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindow(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWindow(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestWindowOverlaps(t *testing.T) {
	w := Window{Chr: "chr1", Start: 1000, End: 2000}

	tests := []struct {
		name       string
		chr        string
		start, end int64
		want       bool
	}{
		{"inside", "chr1", 1200, 1300, true},
		{"spans window", "chr1", 500, 2500, true},
		{"left overlap", "chr1", 900, 1001, true},
		{"right overlap", "chr1", 1999, 2100, true},
		{"ends at start", "chr1", 900, 1000, false},
		{"starts at end", "chr1", 2000, 2100, false},
		{"other chromosome", "chr2", 1200, 1300, false},
		{"point inside", "chr1", 1500, 1500, true},
		{"point at end", "chr1", 2000, 2000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Overlaps(tt.chr, tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps(%s, %d, %d) = %v, want %v", tt.chr, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestWindowString(t *testing.T) {
	w := Window{Chr: "chr1", Start: 1000, End: 2000}
	if got := w.String(); got != "chr1:1000-2000" {
		t.Errorf("String() = %q", got)
	}
	if got := w.Width(); got != 1000 {
		t.Errorf("Width() = %d", got)
	}
}
