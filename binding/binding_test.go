package binding

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleData = `{
  "customer": {"name": "أحمد"},
  "total": 1000000,
  "rate": 0.15,
  "items": [{"name": "قهوة", "qty": 2}, {"name": "شاي", "qty": 1}],
  "paid": true,
  "note": null
}`

func mustDecode(t *testing.T) any {
	t.Helper()
	data, err := Decode(strings.NewReader(sampleData))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := mustDecode(t)
	cases := map[string]string{
		"${customer.name}":               "أحمد",
		"المجموع ${total}":               "المجموع 1000000",
		"${rate}":                        "0.15",
		"${items[1].name} x${items[1].qty}": "شاي x1",
		"${items[-1].name}":              "شاي",
		"${ paid }":                      "true",
		"[${note}]":                      "[]",
		"${missing.path}":                "${missing.path}",
		"${items[9].name}":               "${items[9].name}",
		"no placeholders":                "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("nil data must keep placeholders, got %q", got)
	}
}

func TestInterpolateObject(t *testing.T) {
	data := mustDecode(t)
	if got := Interpolate("${items[0]}", data); got != `{"name":"قهوة","qty":2}` {
		t.Fatalf("object placeholder = %q", got)
	}
}

func TestMissing(t *testing.T) {
	data := mustDecode(t)
	got := Missing("${customer.name} ${x} ${items[5]} ${x}", data)
	if diff := cmp.Diff([]string{"x", "items[5]"}, got); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if got := Missing("${a}", nil); len(got) != 1 {
		t.Fatalf("nil data: every placeholder is missing, got %v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, src := range []string{"", "{", `{"a":1} {"b":2}`} {
		if _, err := DecodeBytes([]byte(src)); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}
