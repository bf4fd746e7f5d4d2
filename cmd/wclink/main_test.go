// cmd/wclink/main_test.go
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tamzrod/wclink/internal/catalog"
	"github.com/tamzrod/wclink/internal/equation"
)

func TestLookup(t *testing.T) {
	var out bytes.Buffer
	if err := lookup(&out, catalog.EEA, []string{"-pipe", "4", "watercut"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "3" {
		t.Fatalf("WATERCUT: got %q", got)
	}

	if err := lookup(&out, catalog.EEA, []string{"-pipe", "18", "WATERCUT"}); err == nil {
		t.Fatal("expected pipe 18 to be rejected")
	}

	out.Reset()
	if err := lookup(&out, catalog.Razor, nil); err != nil {
		t.Fatal(err)
	}
	names := strings.Fields(out.String())
	if len(names) != len(catalog.Names(catalog.Razor)) || !strings.Contains(out.String(), "FREQ") {
		t.Fatalf("unexpected name list %q", out.String())
	}
}

func TestDisplayValue(t *testing.T) {
	cases := []struct {
		typ  equation.DataType
		v    float64
		hex  bool
		want string
	}{
		{equation.Float, 1.5, false, "1.5000000000"},
		{equation.Float, 1.5, true, "0x00003fc0"},
		{equation.Integer, 65529, false, "65529"},
		{equation.Integer, 65529, true, "0xfff9"},
		{equation.Coil, 1, true, "1"},
	}

	for _, c := range cases {
		if got := displayValue(c.typ, c.v, c.hex); got != c.want {
			t.Errorf("%s %v hex=%v: got %q, want %q", c.typ, c.v, c.hex, got, c.want)
		}
	}
}
