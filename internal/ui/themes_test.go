package ui

import "testing"

func TestInitThemeNoColorFlag(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })

	InitTheme(true)
	if got := GetCurrentTheme().Name; got != "none" {
		t.Errorf("theme = %q, want none", got)
	}
	if GetCurrentTUITheme() != NoColorTUITheme {
		t.Error("TUI theme should be colourless")
	}
}

func TestInitThemeNoColorEnv(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })

	t.Setenv("NO_COLOR", "")
	InitTheme(false)
	if got := GetCurrentTheme().Name; got != "none" {
		t.Errorf("theme = %q, want none when NO_COLOR is present", got)
	}
}

func TestSetTheme(t *testing.T) {
	prev := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(prev) })

	tests := map[string]string{
		"light":   "light",
		"none":    "none",
		"dark":    "dark",
		"unknown": "dark",
	}
	for in, want := range tests {
		SetTheme(in)
		if got := GetCurrentTheme().Name; got != want {
			t.Errorf("SetTheme(%q) -> %q, want %q", in, got, want)
		}
	}
}

func TestBandColor(t *testing.T) {
	t.Parallel()
	if DarkTheme.BandColor("low") != DarkTheme.LowGL {
		t.Error("low band colour mismatch")
	}
	if DarkTheme.BandColor("high") != DarkTheme.HighGL {
		t.Error("high band colour mismatch")
	}
	if DarkTheme.BandColor("bogus") != "" {
		t.Error("unknown band should be uncoloured")
	}
	if NoColorTheme.BandColor("moderate") != "" {
		t.Error("no-colour theme should be uncoloured")
	}
	if DarkTUITheme.BandColor("moderate") != DarkTUITheme.ModerateGL {
		t.Error("TUI moderate colour mismatch")
	}
	if DarkTUITheme.BandColor("x") != DarkTUITheme.Text {
		t.Error("TUI unknown band should fall back to text colour")
	}
}
