package dsl_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/folio/dsl"
)

const sampleRequest = `
// 收银小票
document "فاتورة" {
  strategy: text
  margin-x: 40pt; margin-y: 15mm
  line-height: 1.4x
  page-size: A4
  body {
    "السطر الأول"
    ""
    "السطر الثاني"
  }
  # 文档信息
  meta {
    author: "POS"
    keywords: "invoice, march"
  }
}
`

func TestParseRequest(t *testing.T) {
	req, err := dsl.ParseString(sampleRequest)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if string(req.Title) != "فاتورة" {
		t.Fatalf("expected arabic title, got %q", req.Title)
	}
	if got, want := req.Body(), "السطر الأول\n\nالسطر الثاني"; got != want {
		t.Fatalf("body mismatch: %q", got)
	}
	settings, err := req.Settings()
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	want := map[string]string{
		"strategy":    "text",
		"margin-x":    "40pt",
		"margin-y":    "15mm",
		"line-height": "1.4x",
		"page-size":   "A4",
		"author":      "POS",
		"keywords":    "invoice, march",
	}
	if diff := cmp.Diff(want, settings); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRawStrings(t *testing.T) {
	req, err := dsl.ParseString("document `Q1 \"report\"` {\n body {\n `line one\nline two`\n \"tab\\there\"\n }\n}")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if string(req.Title) != `Q1 "report"` {
		t.Fatalf("title = %q", req.Title)
	}
	if got := req.Body(); got != "line one\nline two\ntab\there" {
		t.Fatalf("body = %q", got)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	req, err := dsl.ParseString(`document "" {}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if req.Title != "" || req.Body() != "" {
		t.Fatalf("expected empty title and body, got %q / %q", req.Title, req.Body())
	}
	settings, err := req.Settings()
	if err != nil || len(settings) != 0 {
		t.Fatalf("expected no settings, got %v, %v", settings, err)
	}
}

func TestSettingsErrors(t *testing.T) {
	cases := map[string]string{
		"duplicate":    "document \"x\" {\n strategy: text\n strategy: raster\n}",
		"unknown meta": "document \"x\" {\n meta { colour: red }\n}",
		"meta clash":   "document \"x\" {\n author: a\n meta { author: b }\n}",
	}
	for name, src := range cases {
		req, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		if _, err := req.Settings(); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, src := range []string{
		`document {}`,
		`document "x" { body { 42 } }`,
		`document "x" { strategy text }`,
		`document "x" {`,
	} {
		if _, err := dsl.Parse(strings.NewReader(src)); err == nil {
			t.Fatalf("expected syntax error for %q", src)
		}
	}
}
