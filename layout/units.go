package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths, line-height specs and page presets.
// The layout engine itself works in points (1/72 in); the raster surface works in mm.

// Unit represents the original unit of a length value as written by the caller.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPT converts the length to points. Unit-less values are taken as points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	default:
		return l.Value
	}
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 { return l.ToPT() * PtToMm }

// ParseRawLengthStr parses a length such as "40pt", "15mm" or "1in" preserving its unit.
func ParseRawLengthStr(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec is either a factor of the font size (1.4x) or an absolute length (18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Resolve computes the absolute line height in points for a font size in points.
func (s LineHeightSpec) Resolve(fontSizePT float64) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.ToPT()
	default:
		if s.Factor <= 0 {
			return fontSizePT * defaultLineFactor
		}
		return fontSizePT * s.Factor
	}
}

// ParseLineHeight accepts "1.4x", "1.4" (factor) or an absolute length like "18pt".
func ParseLineHeight(value string) (LineHeightSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		if f <= 0 {
			return LineHeightSpec{}, fmt.Errorf("行高倍数必须为正数: %q", value)
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, nil
	}
	l, err := ParseRawLengthStr(v)
	if err != nil {
		return LineHeightSpec{}, err
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, nil
}

// pagePresets 以 pt 为单位（宽, 高），纵向。
var pagePresets = map[string][2]float64{
	"A4":     {595, 842},
	"A5":     {420, 595},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// PageSize 返回预设纸张的宽高（pt）；name 末尾可带 "-landscape"。
func PageSize(name string) (float64, float64, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	landscape := false
	if k, ok := strings.CutSuffix(key, "-LANDSCAPE"); ok {
		key, landscape = k, true
	}
	base, ok := pagePresets[key]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", name)
	}
	if landscape {
		return base[1], base[0], nil
	}
	return base[0], base[1], nil
}
