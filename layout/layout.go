package layout

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var errNoTypesetter = errors.New("layout: 缺少排版后端 Typesetter")

// Layout 将标题与正文排成一组有序的行。
//
// 输出顺序：标题行（可能折成多行）、一行正文高度的空行，然后是每个段落折行后的内容，
// 每个段落之后追加一行高度为 BodyLineHeight*ParagraphGap 的空行。
// 空标题仍输出一行空标题；空正文按一个空段落处理，保证至少能生成一页。
func Layout(title, body string, opts Options) ([]Line, error) {
	if opts.Typesetter == nil {
		return nil, errNoTypesetter
	}
	limit := opts.availableWidth()
	if limit <= 0 {
		return nil, fmt.Errorf("layout: 可用宽度必须为正数（页宽 %g，左右边距 %g）", opts.PageWidth, opts.Margins.X)
	}

	titleHeight := opts.titleLineHeight()
	bodyHeight := opts.bodyLineHeight()
	gap := bodyHeight * opts.paragraphGap()

	var lines []Line
	for _, para := range splitParagraphs(title) {
		for _, text := range wrapParagraph(para, limit, StyleTitle, opts.Typesetter) {
			lines = append(lines, Line{Text: text, Style: StyleTitle, LineHeight: titleHeight})
		}
	}
	lines = append(lines, Line{Text: "", Style: StyleBody, LineHeight: bodyHeight})

	for _, para := range splitParagraphs(body) {
		for _, text := range wrapParagraph(para, limit, StyleBody, opts.Typesetter) {
			lines = append(lines, Line{Text: text, Style: StyleBody, LineHeight: bodyHeight})
		}
		lines = append(lines, Line{Text: "", Style: StyleBody, LineHeight: gap})
	}
	return lines, nil
}

// splitParagraphs 统一换行符并做 NFC 规范化后按 \n 拆分；空文本返回 [""]。
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = norm.NFC.String(text)
	return strings.Split(text, "\n")
}

// wrapParagraph 对单个段落做贪心折行。
// 候选行宽度 <= limit 时留在当前行；单个词超过 limit 时按字符硬切。
func wrapParagraph(para string, limit float64, style StyleTag, ts Typesetter) []string {
	words := tokenize(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if ts.TextWidth(candidate, style) <= limit {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if ts.TextWidth(word, style) <= limit {
			current = word
			continue
		}
		parts := splitTokenByWidth(word, limit, style, ts)
		lines = append(lines, parts[:len(parts)-1]...)
		current = parts[len(parts)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// tokenize 按空白拆词，连续空白视为一个分隔。
func tokenize(s string) []string {
	return strings.FieldsFunc(s, unicode.IsSpace)
}

// splitTokenByWidth 将超宽的词逐字符切分，每段宽度 <= limit。
// 每段至少包含一个字符，即使该字符本身超宽，以保证切分一定会结束。
func splitTokenByWidth(token string, limit float64, style StyleTag, ts Typesetter) []string {
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		if builder.Len() > 0 && ts.TextWidth(builder.String()+string(r), style) > limit {
			parts = append(parts, builder.String())
			builder.Reset()
		}
		builder.WriteRune(r)
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
