package pdfwriter

import "testing"

func TestEscapeLiteral(t *testing.T) {
	cases := map[string]string{
		"plain":         "plain",
		`a\b`:           `a\\b`,
		"(x)":           `\(x\)`,
		"سعر (مع ضريبة)": `سعر \(مع ضريبة\)`,
		"":              "",
	}
	for in, want := range cases {
		if got := EscapeLiteral(in); got != want {
			t.Fatalf("EscapeLiteral(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextString(t *testing.T) {
	if got := TextString("Q(1)"); got != `(Q\(1\))` {
		t.Fatalf("ascii text string = %q", got)
	}
	if got := TextString("\u00e9"); got != "<FEFF00E9>" {
		t.Fatalf("utf-16 text string = %q", got)
	}
	if got := TextString("a\nb"); got != "<FEFF0061000A0062>" {
		t.Fatalf("control characters must use hex form, got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		595:     "595",
		25.2:    "25.2",
		1.0 / 3: "0.3333",
		-0.00001: "0",
		841.89:  "841.89",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
