package layout

const (
	defaultTitleSize    = 18.0
	defaultBodySize     = 12.0
	defaultLineFactor   = 1.4
	defaultParagraphGap = 0.5
)

// Options 配置排版阶段所需的页面尺寸、行高与排版后端。
type Options struct {
	PageWidth       float64 // pt
	Margins         Margins // pt
	TitleLineHeight float64 // pt，<=0 时取 18pt*1.4
	BodyLineHeight  float64 // pt，<=0 时取 12pt*1.4
	ParagraphGap    float64 // 段后空白占正文行高的比例，<=0 时取 0.5
	Typesetter      Typesetter
}

// Typesetter 负责测量文本宽度，返回值单位为 pt。
// 光栅策略由画布字体实现，文本策略由等宽位图字体估算。
type Typesetter interface {
	TextWidth(text string, style StyleTag) float64
}

func (o Options) availableWidth() float64 {
	return o.PageWidth - 2*o.Margins.X
}

func (o Options) titleLineHeight() float64 {
	if o.TitleLineHeight > 0 {
		return o.TitleLineHeight
	}
	return defaultTitleSize * defaultLineFactor
}

func (o Options) bodyLineHeight() float64 {
	if o.BodyLineHeight > 0 {
		return o.BodyLineHeight
	}
	return defaultBodySize * defaultLineFactor
}

func (o Options) paragraphGap() float64 {
	if o.ParagraphGap > 0 {
		return o.ParagraphGap
	}
	return defaultParagraphGap
}
