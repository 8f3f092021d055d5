// Package document 是渲染入口：把标题与正文排版、分页并组装为 PDF 文件。
package document

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pdfwriter"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	textrenderer "github.com/ByLCY/folio/renderer/text"
)

// Producer 写入信息字典的 /Producer。
const Producer = "folio"

// File 是一次渲染的结果。
type File struct {
	Data      []byte
	MediaType string
	Filename  string
	Pages     int
	Strategy  Strategy // 实际使用的策略，回退时与 Options.Strategy 不同
}

// newRasterRenderer 可在测试中替换，用来模拟宿主无法绘制文字。
var newRasterRenderer = func(opts canvasrenderer.Options) (renderer.Renderer, error) {
	return canvasrenderer.NewRenderer(opts)
}

// Render 将 (title, body) 渲染为 PDF。出错时不返回任何字节。
func Render(title, body string, opts Options) (*File, error) {
	log := opts.logger()
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		return nil, fmt.Errorf("document: 页面尺寸必须为正数（%gx%g）", opts.PageWidth, opts.PageHeight)
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyRaster
	}
	pages, r, err := renderPages(title, body, strategy, opts)
	if err != nil && strategy == StrategyRaster && opts.Fallback && errors.Is(err, renderer.ErrRenderingUnavailable) {
		log.Warn("位图渲染不可用，改用文本策略", slog.Any("error", err))
		strategy = StrategyText
		pages, r, err = renderPages(title, body, strategy, opts)
	}
	if err != nil {
		return nil, err
	}

	doc := &pdfwriter.Document{
		Info: pdfwriter.Info{
			Title:        title,
			Author:       opts.Meta.Author,
			Subject:      opts.Meta.Subject,
			Keywords:     opts.Meta.Keywords,
			Creator:      opts.Meta.Creator,
			Producer:     Producer,
			CreationDate: opts.CreationDate,
		},
		Fonts: r.Fonts(),
		Pages: pages,
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("组装 PDF 失败: %w", err)
	}
	if opts.Verify {
		if err := verify(data, len(pages)); err != nil {
			return nil, err
		}
	}

	log.Debug("渲染完成",
		slog.String("strategy", string(strategy)),
		slog.Int("pages", len(pages)),
		slog.Int("bytes", len(data)))
	return &File{
		Data:      data,
		MediaType: renderer.MediaType,
		Filename:  Filename(title),
		Pages:     len(pages),
		Strategy:  strategy,
	}, nil
}

func renderPages(title, body string, strategy Strategy, opts Options) ([]pdfwriter.Page, renderer.Renderer, error) {
	log := opts.logger()
	var r renderer.Renderer
	switch strategy {
	case StrategyRaster:
		raster, err := newRasterRenderer(opts.rasterOptions())
		if err != nil {
			return nil, nil, err
		}
		r = raster
	case StrategyText:
		r = textrenderer.NewRenderer(opts.textOptions())
	default:
		return nil, nil, fmt.Errorf("document: 未知的渲染策略 %q", strategy)
	}

	lopts := opts.layoutOptions()
	lopts.Typesetter = r
	lines, err := layout.Layout(title, body, lopts)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("排版完成", slog.String("strategy", r.Name()), slog.Int("lines", len(lines)))

	if opts.DebugPath != "" {
		if err := writeDebug(opts, strategy, lines); err != nil {
			log.Warn("写入调试 JSON 失败", slog.String("path", opts.DebugPath), slog.Any("error", err))
		}
	}

	pages, err := r.Render(lines)
	if err != nil {
		return nil, nil, fmt.Errorf("%s 渲染失败: %w", r.Name(), err)
	}
	if len(pages) == 0 {
		return nil, nil, fmt.Errorf("%w: %s 渲染没有生成页面", renderer.ErrLayoutOverflow, r.Name())
	}
	return pages, r, nil
}

func writeDebug(opts Options, strategy Strategy, lines []layout.Line) error {
	dump := &layout.DebugDump{Strategy: string(strategy), Lines: lines}
	if strategy == StrategyRaster {
		dump.Frames = layout.PaginateByHeight(lines, opts.PageHeight, opts.Margins.Y)
	} else {
		dump.Pages = layout.PaginateByCount(lines, textrenderer.LinesPerPage(lines, opts.textOptions()))
	}
	return layout.WriteDebugJSON(dump, opts.DebugPath)
}

// verify 重新解析输出，任何结构问题都视为内部不变量被破坏。
func verify(data []byte, pages int) error {
	rep, err := pdfwriter.Inspect(data)
	if err != nil {
		return fmt.Errorf("%w: 自检失败: %v", renderer.ErrLayoutOverflow, err)
	}
	if rep.Count != pages {
		return fmt.Errorf("%w: 页树声明 %d 页，实际 %d 页", renderer.ErrLayoutOverflow, rep.Count, pages)
	}
	return nil
}

// Filename 由标题生成下载文件名：保留任意文字的字母与数字，其余连续字符替换为 "-"。
func Filename(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFC.String(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		dash = true
	}
	name := b.String()
	if name == "" {
		name = "document"
	}
	return name + ".pdf"
}
