package layout

// 该文件定义排版结果的数据结构，供两种渲染策略与调试 JSON 共用。

// StyleTag 标记一行文本使用的样式（标题或正文）。
type StyleTag int

const (
	StyleBody StyleTag = iota
	StyleTitle
)

func (s StyleTag) String() string {
	switch s {
	case StyleTitle:
		return "title"
	default:
		return "body"
	}
}

// MarshalText 让调试 JSON 输出可读的样式名。
func (s StyleTag) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Line 是排版后的一行文本，单位为 pt。
// Text 为空表示段落间隔或占位行，仍然占用 LineHeight，不能被丢弃。
type Line struct {
	Text       string   `json:"text"`
	Style      StyleTag `json:"style"`
	LineHeight float64  `json:"lineHeight"`
}

// IsBlank 报告该行是否不需要绘制任何字形。
func (l Line) IsBlank() bool { return l.Text == "" }

// Margins 为页面水平/垂直边距（pt），左右、上下对称。
type Margins struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placed 记录一行在页面上的位置：Top 为该行顶部距页面上边缘的距离（pt）。
type Placed struct {
	Line
	Top float64 `json:"top"`
}

// Frame 是按高度分页后的一页内容。
type Frame struct {
	Lines []Placed `json:"lines"`
}

// HasGlyphs 报告该页是否至少有一行需要绘制文字。
func (f Frame) HasGlyphs() bool {
	for _, p := range f.Lines {
		if !p.IsBlank() {
			return true
		}
	}
	return false
}
