package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

// stubTypesetter 是一个最小实现，仅用于测试：每个字符宽 1pt（标题 2pt），
// 避免引入 renderer 造成循环依赖。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(text string, style StyleTag) float64 {
	w := float64(utf8.RuneCountInString(text))
	if style == StyleTitle {
		return 2 * w
	}
	return w
}

// narrowOptions 构造可用宽度为 width 的排版参数。
func narrowOptions(width float64) Options {
	return Options{
		PageWidth:       width + 20,
		Margins:         Margins{X: 10, Y: 10},
		TitleLineHeight: 20,
		BodyLineHeight:  10,
		Typesetter:      stubTypesetter{},
	}
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestLayoutStructure(t *testing.T) {
	lines, err := Layout("Title", "aa bb\n\ncc", narrowOptions(100))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	want := []Line{
		{Text: "Title", Style: StyleTitle, LineHeight: 20},
		{Text: "", Style: StyleBody, LineHeight: 10},
		{Text: "aa bb", Style: StyleBody, LineHeight: 10},
		{Text: "", Style: StyleBody, LineHeight: 5},
		{Text: "", Style: StyleBody, LineHeight: 10},
		{Text: "", Style: StyleBody, LineHeight: 5},
		{Text: "cc", Style: StyleBody, LineHeight: 10},
		{Text: "", Style: StyleBody, LineHeight: 5},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutEmptyInputs(t *testing.T) {
	lines, err := Layout("", "", narrowOptions(50))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	want := []string{"", "", "", ""}
	if diff := cmp.Diff(want, texts(lines)); diff != "" {
		t.Fatalf("empty layout mismatch (-want +got):\n%s", diff)
	}
	if lines[0].Style != StyleTitle {
		t.Fatalf("空标题仍应输出一行标题样式的空行")
	}
	if lines[2].LineHeight != 10 {
		t.Fatalf("空正文应保留一行正文高度，实际 %g", lines[2].LineHeight)
	}
}

func TestLayoutNormalizesLineEndings(t *testing.T) {
	crlf, err := Layout("T", "one\r\ntwo\rthree", narrowOptions(100))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	lf, err := Layout("T", "one\ntwo\nthree", narrowOptions(100))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if diff := cmp.Diff(lf, crlf); diff != "" {
		t.Fatalf("CRLF/CR 应与 LF 等价 (-lf +crlf):\n%s", diff)
	}
}

func TestLayoutNFC(t *testing.T) {
	lines, err := Layout("", "e\u0301", narrowOptions(100))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if lines[2].Text != "\u00e9" {
		t.Fatalf("应做 NFC 规范化，实际 %q", lines[2].Text)
	}
}

// 恰好等于可用宽度的候选行应留在当前行（<= 而不是 <）。
func TestWrapKeepsTieOnCurrentLine(t *testing.T) {
	got := wrapParagraph("aaaa bbbb cc", 9, StyleBody, stubTypesetter{})
	want := []string{"aaaa bbbb", "cc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap mismatch (-want +got):\n%s", diff)
	}
	got = wrapParagraph("aaaa bbbb cc", 8, StyleBody, stubTypesetter{})
	want = []string{"aaaa", "bbbb cc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapCollapsesWhitespace(t *testing.T) {
	got := wrapParagraph("  a \t b  ", 100, StyleBody, stubTypesetter{})
	if diff := cmp.Diff([]string{"a b"}, got); diff != "" {
		t.Fatalf("wrap mismatch (-want +got):\n%s", diff)
	}
	if got := wrapParagraph("   ", 100, StyleBody, stubTypesetter{}); len(got) != 1 || got[0] != "" {
		t.Fatalf("纯空白段落应得到一行空行，实际 %q", got)
	}
}

func TestWideTokenIsHardSplit(t *testing.T) {
	word := strings.Repeat("x", 500)
	lines, err := Layout("", word, narrowOptions(40))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	var fragments []string
	for _, l := range lines {
		if l.Text != "" {
			fragments = append(fragments, l.Text)
		}
	}
	if len(fragments) < 2 {
		t.Fatalf("超宽词应被切成至少 2 段，实际 %d", len(fragments))
	}
	if got := strings.Join(fragments, ""); got != word {
		t.Fatalf("切分后拼接应还原原词")
	}
	for i, f := range fragments {
		if w := (stubTypesetter{}).TextWidth(f, StyleBody); w > 40 {
			t.Fatalf("fragment %d 宽度 %g 超过限制 40", i, w)
		}
	}
}

// 切出的最后一段可以与后续词拼在同一行。
func TestHardSplitTailJoinsNextWord(t *testing.T) {
	got := wrapParagraph("abcdefghij xy", 4, StyleBody, stubTypesetter{})
	want := []string{"abcd", "efgh", "ij", "xy"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap mismatch (-want +got):\n%s", diff)
	}
	got = wrapParagraph("abcdefghi xy", 6, StyleBody, stubTypesetter{})
	want = []string{"abcdef", "ghi xy"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap mismatch (-want +got):\n%s", diff)
	}
}

// 单个字符就超过限制时每段一个字符，仍能结束。
func TestHardSplitSingleRuneWiderThanLimit(t *testing.T) {
	got := splitTokenByWidth("ab", 0.5, StyleBody, stubTypesetter{})
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
}

func TestTitleUsesTitleMetrics(t *testing.T) {
	// 标题每字 2pt：可用宽 10 时 "abcdef" 需要切分
	lines, err := Layout("abcdef", "", narrowOptions(10))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if lines[0].Text != "abcde" || lines[1].Text != "f" || lines[1].Style != StyleTitle {
		t.Fatalf("标题应按标题宽度折行，实际 %q", texts(lines[:2]))
	}
}

func TestLayoutErrors(t *testing.T) {
	if _, err := Layout("a", "b", Options{PageWidth: 100}); err == nil {
		t.Fatalf("缺少 Typesetter 应报错")
	}
	opts := narrowOptions(10)
	opts.Margins.X = 100
	if _, err := Layout("a", "b", opts); err == nil {
		t.Fatalf("可用宽度为负应报错")
	}
}

func TestLayoutDefaults(t *testing.T) {
	lines, err := Layout("t", "b", Options{PageWidth: 595, Margins: Margins{X: 40}, Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if lines[0].LineHeight != 18*1.4 || lines[2].LineHeight != 12*1.4 || lines[3].LineHeight != 12*1.4*0.5 {
		t.Fatalf("默认行高不正确: %+v", lines)
	}
}
