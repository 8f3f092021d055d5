// Package dsl 解析渲染请求文件：标题、正文行、排版设置与文档信息。
//
//	document "فاتورة" {
//	  strategy: text
//	  margin-x: 40pt
//	  body {
//	    "السطر الأول"
//	    ""
//	    "السطر الثاني"
//	  }
//	  meta { author: "POS" }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: "\"(?:\\\\.|[^\"\\\\])*\"|`[^`]*`"},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	requestParser = participle.MustBuild[Request](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// metaKeys 是 meta 块允许的键，与 document.Options.Apply 的键名一致。
var metaKeys = map[string]bool{"author": true, "subject": true, "keywords": true, "creator": true}

// Request is the root AST node for a request file.
type Request struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Title   StringLiteral  `parser:"Newline* 'document' @String"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Entry is one statement of the document block.
type Entry struct {
	Body    *BodyBlock `parser:"  @@"`
	Meta    *MetaBlock `parser:"| @@"`
	Setting *Setting   `parser:"| @@"`
}

// BodyBlock lists body lines; each string is one line of the body.
type BodyBlock struct {
	Lines []StringLiteral `parser:"'body' '{' Newline* ( @String ( ';' | Newline )* )* '}'"`
}

// MetaBlock holds document information entries.
type MetaBlock struct {
	Entries []*Setting `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Setting uses colon syntax (key: value).
type Setting struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Value is a quoted string, a number with optional unit, or a bare word.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Word   *string        `parser:"| @Ident"`
}

// Text returns the value as written, with strings unquoted.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Word != nil:
		return *v.Word
	}
	return ""
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Body 按出现顺序用换行连接所有 body 块中的行。
func (r *Request) Body() string {
	var lines []string
	for _, e := range r.Entries {
		if e.Body == nil {
			continue
		}
		for _, l := range e.Body.Lines {
			lines = append(lines, string(l))
		}
	}
	return strings.Join(lines, "\n")
}

// Settings 汇总设置项与 meta 项。重复的键或 meta 中未知的键返回带位置的错误。
func (r *Request) Settings() (map[string]string, error) {
	out := map[string]string{}
	add := func(s *Setting) error {
		key := strings.ToLower(s.Key)
		if _, dup := out[key]; dup {
			return fmt.Errorf("%s: 重复的设置项 %s", s.Pos, s.Key)
		}
		out[key] = s.Value.Text()
		return nil
	}
	for _, e := range r.Entries {
		switch {
		case e.Setting != nil:
			if err := add(e.Setting); err != nil {
				return nil, err
			}
		case e.Meta != nil:
			for _, s := range e.Meta.Entries {
				if !metaKeys[strings.ToLower(s.Key)] {
					return nil, fmt.Errorf("%s: meta 不支持 %s（可选 author/subject/keywords/creator）", s.Pos, s.Key)
				}
				if err := add(s); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// Parse parses a request from an io.Reader.
func Parse(r io.Reader) (*Request, error) {
	return requestParser.Parse("", r)
}

// ParseString parses a request from a string.
func ParseString(input string) (*Request, error) {
	return requestParser.ParseString("", input)
}
