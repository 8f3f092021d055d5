package document

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/folio/layout"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	textrenderer "github.com/ByLCY/folio/renderer/text"
)

// Strategy 选择页面生成方式。
type Strategy string

const (
	// StrategyRaster 每页绘制为位图后以 JPEG 嵌入，能正确显示阿拉伯文。
	StrategyRaster Strategy = "raster"
	// StrategyText 直接写入文本操作符，体积小，不依赖绘制能力。
	StrategyText Strategy = "text"
)

// ParseStrategy 解析 raster|text。
func ParseStrategy(s string) (Strategy, error) {
	switch v := Strategy(strings.ToLower(strings.TrimSpace(s))); v {
	case StrategyRaster, StrategyText:
		return v, nil
	case "image", "bitmap":
		return StrategyRaster, nil
	case "legacy":
		return StrategyText, nil
	}
	return "", fmt.Errorf("未知的渲染策略 %q（可选 raster/text）", s)
}

// Meta 写入文档信息字典，标题总是取 Render 的 title。
type Meta struct {
	Author   string
	Subject  string
	Keywords string
	Creator  string
}

// Options 配置一次渲染。长度单位均为 pt。
type Options struct {
	Strategy     Strategy
	PageWidth    float64
	PageHeight   float64
	Margins      layout.Margins
	TitleSize    float64
	BodySize     float64
	LineHeight   layout.LineHeightSpec
	ParagraphGap float64 // 段后空白占正文行高的比例
	LinesPerPage int     // 仅文本策略
	Scale        float64 // 仅位图策略
	Quality      int     // 仅位图策略
	Align        canvasrenderer.Align

	// FontData/BoldFontData 覆盖位图策略的内置字体。
	FontData     []byte
	BoldFontData []byte

	Meta         Meta
	CreationDate time.Time // 零值时不写入

	// Fallback 为 true 时，位图策略不可用则记录警告并改用文本策略。
	Fallback bool
	// Verify 为 true 时，组装完成后重新解析输出并校验结构。
	Verify bool
	// DebugPath 非空时把排版与分页结果写成 JSON。
	DebugPath string
	Logger    *slog.Logger
}

// DefaultOptions 返回默认配置：A4、位图策略、左右上下边距 40pt。
func DefaultOptions() Options {
	w, h, _ := layout.PageSize("A4")
	return Options{
		Strategy:     StrategyRaster,
		PageWidth:    w,
		PageHeight:   h,
		Margins:      layout.Margins{X: 40, Y: 40},
		TitleSize:    18,
		BodySize:     12,
		LineHeight:   layout.LineHeightSpec{Kind: layout.LineHeightFactor, Factor: 1.4},
		ParagraphGap: 0.5,
		LinesPerPage: textrenderer.DefaultLinesPerPage,
		Scale:        2,
		Quality:      90,
		Align:        canvasrenderer.AlignRight,
		Fallback:     true,
		Verify:       true,
	}
}

// Apply 按键值设置选项，键名与请求文件和命令行一致。未知键或非法值返回错误。
func (o *Options) Apply(settings map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(settings)) {
		if err := o.set(key, settings[key]); err != nil {
			return fmt.Errorf("设置 %s: %w", key, err)
		}
	}
	return nil
}

func (o *Options) set(key, value string) error {
	switch strings.ToLower(key) {
	case "strategy":
		s, err := ParseStrategy(value)
		if err != nil {
			return err
		}
		o.Strategy = s
	case "page-size":
		w, h, err := layout.PageSize(value)
		if err != nil {
			return err
		}
		o.PageWidth, o.PageHeight = w, h
	case "margin":
		v, err := parsePT(value)
		if err != nil {
			return err
		}
		o.Margins = layout.Margins{X: v, Y: v}
	case "margin-x":
		v, err := parsePT(value)
		if err != nil {
			return err
		}
		o.Margins.X = v
	case "margin-y":
		v, err := parsePT(value)
		if err != nil {
			return err
		}
		o.Margins.Y = v
	case "title-size":
		v, err := parsePositivePT(value)
		if err != nil {
			return err
		}
		o.TitleSize = v
	case "body-size":
		v, err := parsePositivePT(value)
		if err != nil {
			return err
		}
		o.BodySize = v
	case "line-height":
		spec, err := layout.ParseLineHeight(value)
		if err != nil {
			return err
		}
		o.LineHeight = spec
	case "paragraph-gap":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("段落间距必须为正数: %q", value)
		}
		o.ParagraphGap = f
	case "lines-per-page":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return fmt.Errorf("每页行数必须为正整数: %q", value)
		}
		o.LinesPerPage = n
	case "scale":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("缩放倍数必须为正数: %q", value)
		}
		o.Scale = f
	case "quality":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > 100 {
			return fmt.Errorf("JPEG 质量必须在 1..100 之间: %q", value)
		}
		o.Quality = n
	case "align":
		a, err := canvasrenderer.ParseAlign(value)
		if err != nil {
			return err
		}
		o.Align = a
	case "author":
		o.Meta.Author = value
	case "subject":
		o.Meta.Subject = value
	case "keywords":
		o.Meta.Keywords = value
	case "creator":
		o.Meta.Creator = value
	default:
		return fmt.Errorf("未知的设置项")
	}
	return nil
}

func parsePT(value string) (float64, error) {
	l, err := layout.ParseRawLengthStr(value)
	if err != nil {
		return 0, err
	}
	if l.Value < 0 {
		return 0, fmt.Errorf("长度不能为负数: %q", value)
	}
	return l.ToPT(), nil
}

func parsePositivePT(value string) (float64, error) {
	v, err := parsePT(value)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("长度必须为正数: %q", value)
	}
	return v, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) layoutOptions() layout.Options {
	return layout.Options{
		PageWidth:       o.PageWidth,
		Margins:         o.Margins,
		TitleLineHeight: o.LineHeight.Resolve(o.TitleSize),
		BodyLineHeight:  o.LineHeight.Resolve(o.BodySize),
		ParagraphGap:    o.ParagraphGap,
	}
}

func (o Options) rasterOptions() canvasrenderer.Options {
	return canvasrenderer.Options{
		PageWidth:    o.PageWidth,
		PageHeight:   o.PageHeight,
		Margins:      o.Margins,
		TitleSize:    o.TitleSize,
		BodySize:     o.BodySize,
		Scale:        o.Scale,
		Quality:      o.Quality,
		Align:        o.Align,
		FontData:     o.FontData,
		BoldFontData: o.BoldFontData,
	}
}

func (o Options) textOptions() textrenderer.Options {
	return textrenderer.Options{
		PageWidth:    o.PageWidth,
		PageHeight:   o.PageHeight,
		Margins:      o.Margins,
		TitleSize:    o.TitleSize,
		BodySize:     o.BodySize,
		LinesPerPage: o.LinesPerPage,
	}
}
