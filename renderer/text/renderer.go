// Package textrenderer 是轻量的文本策略：直接把文本操作符写入内容流，使用 PDF 标准字体。
//
// 该策略没有字体度量，分页按固定行数，行数上限由版心高度与最高行距算出；
// 宽度估算使用 basicfont 的等宽位图字体。
// 文本以 UTF-8 字节写入字面量字符串，Helvetica 无法显示阿拉伯文字形，
// 但查看器和文本提取工具仍能按顺序取回原始字符串。
package textrenderer

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pdfwriter"
	"github.com/ByLCY/folio/renderer"
)

// DefaultLinesPerPage 是每页行数的上限，实际行数还受版心高度限制，见 LinesPerPage。
const DefaultLinesPerPage = 46

// 字体资源名。
const (
	BodyFont  = "F1"
	TitleFont = "F2"
)

// Options 配置文本策略，长度单位为 pt。
type Options struct {
	PageWidth    float64
	PageHeight   float64
	Margins      layout.Margins
	TitleSize    float64
	BodySize     float64
	LinesPerPage int
}

func (o Options) withDefaults() Options {
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		o.PageWidth, o.PageHeight, _ = layout.PageSize("A4")
	}
	if o.TitleSize <= 0 {
		o.TitleSize = 18
	}
	if o.BodySize <= 0 {
		o.BodySize = 12
	}
	if o.LinesPerPage <= 0 {
		o.LinesPerPage = DefaultLinesPerPage
	}
	return o
}

// LinesPerPage 返回 lines 分页时每页的固定行数。
//
// 每行的 ' 先按 TL 下移再显示，所以一页 n 行的最后一条基线位于
// pageHeight-marginY-ΣTL。取 n = floor((pageHeight-2*marginY)/最大行距)，
// 并以 opts.LinesPerPage 为上限，保证任何一页的基线都不会落入下边距。至少为 1。
func LinesPerPage(lines []layout.Line, opts Options) int {
	opts = opts.withDefaults()
	n := opts.LinesPerPage
	tallest := 0.0
	for _, l := range lines {
		tallest = max(tallest, l.LineHeight)
	}
	if tallest <= 0 {
		return n
	}
	usable := opts.PageHeight - 2*opts.Margins.Y
	fit := int(math.Floor(usable/tallest + 1e-9))
	return max(1, min(n, fit))
}

// Renderer 生成文本操作符页面。
type Renderer struct {
	opts Options
	face font.Face
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// NewRenderer creates a text strategy renderer. 它不依赖任何绘制能力，总是可用。
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults(), face: basicfont.Face7x13}
}

// Name 返回策略名称。
func (r *Renderer) Name() string { return "text" }

// Fonts 返回内容流引用的两种标准字体。
func (r *Renderer) Fonts() []pdfwriter.Font {
	return []pdfwriter.Font{
		{Resource: BodyFont, BaseFont: "Helvetica"},
		{Resource: TitleFont, BaseFont: "Helvetica-Bold"},
	}
}

// TextWidth 用位图字体的前进宽度估算文本宽度，并按字号缩放到 pt。
func (r *Renderer) TextWidth(text string, style layout.StyleTag) float64 {
	if text == "" {
		return 0
	}
	advance := font.MeasureString(r.face, text)
	height := r.face.Metrics().Height
	if height <= 0 {
		return 0
	}
	return float64(advance) / float64(height) * r.size(style)
}

// Render 按固定行数（见 LinesPerPage）分页并生成每页的内容流。
func (r *Renderer) Render(lines []layout.Line) ([]pdfwriter.Page, error) {
	streams := Emit(lines, r.opts)
	pages := make([]pdfwriter.Page, len(streams))
	for i, s := range streams {
		pages[i] = pdfwriter.Page{Width: r.opts.PageWidth, Height: r.opts.PageHeight, Content: []byte(s)}
	}
	return pages, nil
}

func (r *Renderer) size(style layout.StyleTag) float64 {
	if style == layout.StyleTitle {
		return r.opts.TitleSize
	}
	return r.opts.BodySize
}

// Emit 返回每一页的内容流，至少一页。
//
// 每页一个 BT ... ET：Td 只在开头定位一次到 (marginX, pageHeight-marginY)，
// 之后每行用 ' 换行并显示；样式或行高变化时才输出 Tf/TL。
func Emit(lines []layout.Line, opts Options) []string {
	opts = opts.withDefaults()
	pages := layout.PaginateByCount(lines, LinesPerPage(lines, opts))
	out := make([]string, len(pages))
	for i, page := range pages {
		out[i] = emitPage(page, opts)
	}
	return out
}

func emitPage(lines []layout.Line, opts Options) string {
	var b strings.Builder
	b.WriteString("BT\n")
	first := true
	var style layout.StyleTag
	var leading float64
	for _, line := range lines {
		if first || line.Style != style {
			res, size := BodyFont, opts.BodySize
			if line.Style == layout.StyleTitle {
				res, size = TitleFont, opts.TitleSize
			}
			b.WriteString("/" + res + " " + pdfwriter.FormatNumber(size) + " Tf\n")
			style = line.Style
		}
		if first || line.LineHeight != leading {
			b.WriteString(pdfwriter.FormatNumber(line.LineHeight) + " TL\n")
			leading = line.LineHeight
		}
		if first {
			b.WriteString(pdfwriter.FormatNumber(opts.Margins.X) + " " + pdfwriter.FormatNumber(opts.PageHeight-opts.Margins.Y) + " Td\n")
			first = false
		}
		b.WriteString("(" + pdfwriter.EscapeLiteral(line.Text) + ") '\n")
	}
	b.WriteString("ET")
	return b.String()
}
