package reactor

import (
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	src := New(nil)
	src.SetControlRods(37.5)
	src.SetGridLoad(1234.5)
	src.RunFor(25, 1)
	src.Scram()
	src.Tick(1)

	dst := New(nil)
	if err := dst.Restore(src.Serialize()); err != nil {
		t.Fatal(err)
	}

	if src.Snapshot() != dst.Snapshot() {
		t.Errorf("round trip mismatch:\n src %+v\n dst %+v", src.Snapshot(), dst.Snapshot())
	}
}

func TestSerializeCoversAllFields(t *testing.T) {
	text := New(nil).Serialize()
	for _, name := range fieldOrder {
		if !strings.Contains(text, name+"=") {
			t.Errorf("serialized form missing %q", name)
		}
	}
	if got := len(strings.Split(strings.TrimSpace(text), "\n")); got != len(fieldOrder) {
		t.Errorf("expected %d lines, got %d", len(fieldOrder), got)
	}
}

func TestRestoreMalformed(t *testing.T) {
	cases := []string{
		"core_temp",             // no separator
		"core_temp=",            // empty value
		"=5",                    // empty key
		"core_temp=hot",         // not a number or bool
		"water=100\npressure=?", // trailing junk after valid lines
	}
	for _, text := range cases {
		r := New(nil)
		before := r.Snapshot()
		err := r.Restore(text)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("Restore(%q): expected ErrDecode, got %v", text, err)
		}
		if r.Snapshot() != before {
			t.Errorf("Restore(%q): state mutated on decode failure", text)
		}
	}
}

func TestRestoreIgnoresUnknownKeys(t *testing.T) {
	r := New(nil)
	if err := r.Restore("core_temp=77\nflux_capacitor=88\nversion=2\n"); err != nil {
		t.Fatal(err)
	}
	if got := r.Snapshot().CoreTemp; got != 77 {
		t.Errorf("known key should apply, got %f", got)
	}
}

func TestRestoreTypeMismatch(t *testing.T) {
	r := New(nil)
	// A bool value aimed at a float field is ignored, not an error.
	if err := r.Restore("core_temp=true\npump_power=55\n"); err != nil {
		t.Fatal(err)
	}
	s := r.Snapshot()
	if s.CoreTemp != 20 {
		t.Errorf("type-mismatched key should be ignored, got %f", s.CoreTemp)
	}
	if s.PumpPower != 55 {
		t.Errorf("well-typed key should apply, got %f", s.PumpPower)
	}
}

func TestRestoreWhitespaceAndBlankLines(t *testing.T) {
	r := New(nil)
	if err := r.Restore("\n  steam = 12000  \n\nscrammed=true\n"); err != nil {
		t.Fatal(err)
	}
	s := r.Snapshot()
	if s.Steam != 12000 {
		t.Errorf("expected steam 12000, got %f", s.Steam)
	}
	if !s.Scrammed {
		t.Error("expected scrammed true")
	}
}
