// Package renderer 定义页面生成器接口：把排版后的行转换为可交给 pdfwriter 组装的页面。
package renderer

import (
	"errors"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pdfwriter"
)

// MediaType 是输出文件的 MIME 类型。
const MediaType = "application/pdf"

var (
	// ErrRenderingUnavailable 表示宿主无法绘制文字（例如没有可用字体）。
	ErrRenderingUnavailable = errors.New("renderer: rendering unavailable")
	// ErrEncodingFailure 表示页面图像编码失败或输出为空。
	ErrEncodingFailure = errors.New("renderer: image encoding failed")
	// ErrLayoutOverflow 表示内部不变量被破坏，例如组装结果无法通过自检。
	ErrLayoutOverflow = errors.New("renderer: layout invariant violated")
)

// Renderer 将排版结果输出为页面，例如位图页或文本操作符页。
// 它同时负责测量文本宽度，排版阶段用它作为 layout.Typesetter。
type Renderer interface {
	layout.Typesetter
	// Render 把行分页并生成每一页的内容，至少返回一页。
	Render(lines []layout.Line) ([]pdfwriter.Page, error)
	// Fonts 返回页面内容引用的字体资源，位图页不需要字体。
	Fonts() []pdfwriter.Font
	// Name 返回策略名称（raster 或 text）。
	Name() string
}
