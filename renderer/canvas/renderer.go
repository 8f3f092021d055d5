package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/text/unicode/bidi"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pdfwriter"
	"github.com/ByLCY/folio/renderer"
)

// ErrInvalidFont 表示调用方提供的字体数据无法解析。
var ErrInvalidFont = errors.New("无效的字体数据")

const (
	defaultScale   = 2.0
	defaultQuality = 90
)

// Align 控制每行文字在页面上的水平对齐。
type Align int

const (
	AlignRight Align = iota // 从右向左书写，靠右对齐
	AlignLeft
	AlignAuto // 由每行第一个强方向字符决定
)

// ParseAlign 解析 right|left|auto，空字符串视为 right。
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "right", "rtl":
		return AlignRight, nil
	case "left", "ltr":
		return AlignLeft, nil
	case "auto":
		return AlignAuto, nil
	}
	return AlignRight, fmt.Errorf("未知的对齐方式 %q（可选 right/left/auto）", s)
}

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignAuto:
		return "auto"
	default:
		return "right"
	}
}

// Options configures the raster renderer. 所有长度单位均为 pt。
type Options struct {
	PageWidth  float64
	PageHeight float64
	Margins    layout.Margins
	TitleSize  float64
	BodySize   float64
	Scale      float64 // 超采样倍数，<=0 时取 2
	Quality    int     // JPEG 质量 1..100，<=0 时取 90
	Align      Align

	// FontData/BoldFontData 为空时使用内置 DejaVu Sans。
	FontData     []byte
	BoldFontData []byte
}

// Renderer draws every page onto an off-screen canvas via github.com/tdewolff/canvas,
// rasterizes it and embeds the JPEG as a full-page image.
type Renderer struct {
	opts Options

	fontMu       sync.Mutex
	fontFamilies map[layout.StyleTag]*fontFamilyEntry
	faces        map[layout.StyleTag]*canvas.FontFace
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// NewRenderer creates a raster renderer. 无法加载内置字体时返回 renderer.ErrRenderingUnavailable；
// 调用方提供的字体数据无效时直接返回错误，不会退回内置字体。
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		opts.PageWidth, opts.PageHeight, _ = layout.PageSize("A4")
	}
	if opts.TitleSize <= 0 {
		opts.TitleSize = 18
	}
	if opts.BodySize <= 0 {
		opts.BodySize = 12
	}
	if opts.Scale <= 0 {
		opts.Scale = defaultScale
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = defaultQuality
	}
	r := &Renderer{
		opts:         opts,
		fontFamilies: map[layout.StyleTag]*fontFamilyEntry{},
		faces:        map[layout.StyleTag]*canvas.FontFace{},
	}
	for _, style := range []layout.StyleTag{layout.StyleBody, layout.StyleTitle} {
		if _, err := r.fontFace(style); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Name 返回策略名称。
func (r *Renderer) Name() string { return "raster" }

// Fonts 位图页不引用字体资源。
func (r *Renderer) Fonts() []pdfwriter.Font { return nil }

// TextWidth 实现 layout.Typesetter，结果由 mm 换算为 pt。
// 与绘制一样经由 NewTextLine 排版，按书写方向分段后再取宽度，RTL 文本同样适用。
func (r *Renderer) TextWidth(text string, style layout.StyleTag) float64 {
	if text == "" {
		return 0
	}
	face, err := r.fontFace(style)
	if err != nil {
		return 0
	}
	return toPt(canvas.NewTextLine(face, text, canvas.Left).Bounds().W())
}

// Render 按高度分页，每页绘制到新的画布并编码为 JPEG。
func (r *Renderer) Render(lines []layout.Line) ([]pdfwriter.Page, error) {
	frames := layout.PaginateByHeight(lines, r.opts.PageHeight, r.opts.Margins.Y)
	pages := make([]pdfwriter.Page, 0, len(frames))
	for i, frame := range frames {
		img, err := r.drawFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		data, err := encodeJPEG(img, r.opts.Quality)
		if err != nil {
			return nil, fmt.Errorf("编码第 %d 页失败: %w", i+1, err)
		}
		b := img.Bounds()
		pages = append(pages, pdfwriter.ImagePage(r.opts.PageWidth, r.opts.PageHeight, &pdfwriter.Image{
			Data:   data,
			Width:  b.Dx(),
			Height: b.Dy(),
		}))
	}
	return pages, nil
}

func (r *Renderer) drawFrame(frame layout.Frame) (image.Image, error) {
	width, height := toMm(r.opts.PageWidth), toMm(r.opts.PageHeight)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)

	// 白色背景
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点

	marginX := toMm(r.opts.Margins.X)
	for _, placed := range frame.Lines {
		if placed.IsBlank() {
			continue
		}
		face, err := r.fontFace(placed.Style)
		if err != nil {
			return nil, err
		}
		textAlign, anchorX := canvas.Right, width-marginX
		if r.alignLeft(placed.Text) {
			textAlign, anchorX = canvas.Left, marginX
		}
		textLine := canvas.NewTextLine(face, placed.Text, textAlign)

		// 基线位置：行顶部（Top，pt→mm）加上字体上升部（Ascent，mm）
		baseline := toMm(placed.Top) + face.Metrics().Ascent
		ctx.DrawText(anchorX, baseline, textLine)
	}

	img := rasterizer.Draw(c, canvas.DPMM(r.opts.Scale*layout.MmToPt), canvas.DefaultColorSpace)
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: 画布为空", renderer.ErrEncodingFailure)
	}
	return img, nil
}

func (r *Renderer) alignLeft(text string) bool {
	switch r.opts.Align {
	case AlignLeft:
		return true
	case AlignAuto:
		return !firstStrongIsRTL(text)
	default:
		return false
	}
}

// firstStrongIsRTL 返回文本第一个强方向字符是否为从右向左；没有强方向字符时视为 RTL。
func firstStrongIsRTL(text string) bool {
	for i := 0; i < len(text); {
		props, size := bidi.LookupString(text[i:])
		if size == 0 {
			break
		}
		switch props.Class() {
		case bidi.R, bidi.AL:
			return true
		case bidi.L:
			return false
		}
		i += size
	}
	return true
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", renderer.ErrEncodingFailure, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: 编码结果为空", renderer.ErrEncodingFailure)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fontFace(style layout.StyleTag) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	face, ok := r.faces[style]
	r.fontMu.Unlock()
	if ok {
		return face, nil
	}

	entry, err := r.ensureFontFamily(style)
	if err != nil {
		return nil, err
	}
	size := r.opts.BodySize
	if style == layout.StyleTitle {
		size = r.opts.TitleSize
	}
	face = entry.family.Face(size, canvas.Black, entry.style, canvas.FontNormal)

	r.fontMu.Lock()
	r.faces[style] = face
	r.fontMu.Unlock()
	return face, nil
}

func (r *Renderer) ensureFontFamily(style layout.StyleTag) (*fontFamilyEntry, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[style]; ok {
		return entry, nil
	}

	data, fontStyle := r.opts.FontData, canvas.FontRegular
	builtin := fonts.Regular
	if style == layout.StyleTitle {
		data, fontStyle, builtin = r.opts.BoldFontData, canvas.FontBold, fonts.Bold
	}
	family := canvas.NewFontFamily("folio-" + style.String())
	if len(data) > 0 {
		if err := family.LoadFont(data, 0, fontStyle); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, style, err)
		}
		entry := &fontFamilyEntry{family: family, style: fontStyle}
		r.fontFamilies[style] = entry
		return entry, nil
	}
	if err := loadBuiltin(family, builtin, fontStyle); err != nil {
		// 标题字体不可用时退回正文字体
		if style == layout.StyleTitle {
			if body, ok := r.fontFamilies[layout.StyleBody]; ok {
				r.fontFamilies[style] = body
				return body, nil
			}
		}
		return nil, fmt.Errorf("%w: 加载 %s 字体失败: %v", renderer.ErrRenderingUnavailable, style, err)
	}
	entry := &fontFamilyEntry{family: family, style: fontStyle}
	r.fontFamilies[style] = entry
	return entry, nil
}

func loadBuiltin(family *canvas.FontFamily, builtin string, style canvas.FontStyle) error {
	data, err := fonts.Load(builtin)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
