package format

import (
	"math"
	"testing"
	"time"
)

func TestClassifyGL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		gl   float64
		want Band
	}{
		{0, BandLow},
		{9.99, BandLow},
		{10, BandLow},
		{10.01, BandModerate},
		{19, BandModerate},
		{19.01, BandHigh},
		{42, BandHigh},
	}
	for _, tt := range tests {
		if got := ClassifyGL(tt.gl); got != tt.want {
			t.Errorf("ClassifyGL(%v) = %v, want %v", tt.gl, got, tt.want)
		}
	}
}

func TestBandText(t *testing.T) {
	t.Parallel()
	for _, b := range []Band{BandLow, BandModerate, BandHigh} {
		if b.String() == "unknown" || b.Label() == "" || b.Description() == "" {
			t.Errorf("band %d has missing text", b)
		}
	}
	if got := Band(99).String(); got != "unknown" {
		t.Errorf("Band(99).String() = %q", got)
	}
	if got := BandModerate.Label(); got != "Moderate Impact" {
		t.Errorf("Label = %q", got)
	}
}

func TestFormatGL(t *testing.T) {
	t.Parallel()
	tests := map[float64]string{
		0:     "0.0",
		14.51: "14.5",
		6.3:   "6.3",
		20.81: "20.8",
	}
	for in, want := range tests {
		if got := FormatGL(in); got != want {
			t.Errorf("FormatGL(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{1.5, "1.5"},
		{0.25, "0.25"},
		{2.0, "2"},
		{10, "10"},
		{0, "0"},
		{math.NaN(), "?"},
	}
	for _, tt := range tests {
		if got := FormatQuantity(tt.in); got != tt.want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreviewAndStep(t *testing.T) {
	t.Parallel()
	if got := PreviewGL(1.5); got != 7.5 {
		t.Errorf("PreviewGL(1.5) = %v", got)
	}
	if got := StepIndicator(3, 4); got != "Step 3 of 4" {
		t.Errorf("StepIndicator = %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{500 * time.Microsecond, "<1ms"},
		{120 * time.Millisecond, "120ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestItemNote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status, message, want string
	}{
		{"", "", ""},
		{"ai_estimated", "ignored", "(AI estimated)"},
		{"not_found", "", "(not found)"},
		{"invalid_quantity", "Quantity must be a positive number", "(invalid quantity: Quantity must be a positive number)"},
		{"invalid_format", "", "(invalid format)"},
		{"mystery", "", "(mystery)"},
	}
	for _, tt := range tests {
		if got := ItemNote(tt.status, tt.message); got != tt.want {
			t.Errorf("ItemNote(%q, %q) = %q, want %q", tt.status, tt.message, got, tt.want)
		}
	}
}
