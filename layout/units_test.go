package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 595, 842, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
	// A4 宽 210mm ≈ 595pt
	if got := 210 * MmToPt; math.Abs(got-595.28) > 0.01 {
		t.Fatalf("210mm 应约为 595.28pt，实际 %g", got)
	}
}

func TestParseRawLengthStr(t *testing.T) {
	cases := []struct {
		in   string
		want float64 // pt
	}{
		{"40pt", 40},
		{"40", 40},
		{"1in", 72},
		{"25.4mm", 72},
		{"2.54cm", 72},
		{" 12PT ", 12},
	}
	for _, c := range cases {
		l, err := ParseRawLengthStr(c.in)
		if err != nil {
			t.Fatalf("%q 解析失败: %v", c.in, err)
		}
		if got := l.ToPT(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%q 转 pt 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
	if _, err := ParseRawLengthStr("abc"); err == nil {
		t.Fatalf("非法长度应返回错误")
	}
	if _, err := ParseRawLengthStr(""); err == nil {
		t.Fatalf("空长度应返回错误")
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义。
func TestLineHeightResolve(t *testing.T) {
	factor, err := ParseLineHeight("1.2x")
	if err != nil {
		t.Fatalf("解析 1.2x 失败: %v", err)
	}
	if got := factor.Resolve(12); math.Abs(got-14.4) > 1e-9 {
		t.Fatalf("1.2x 行高期望 14.4pt，实际 %g", got)
	}
	abs, err := ParseLineHeight("6mm")
	if err != nil {
		t.Fatalf("解析 6mm 失败: %v", err)
	}
	if got := abs.Resolve(12); math.Abs(got-6*MmToPt) > 1e-9 {
		t.Fatalf("6mm 行高期望 %g，实际 %g", 6*MmToPt, got)
	}
	var zero LineHeightSpec
	if got := zero.Resolve(10); math.Abs(got-14) > 1e-9 {
		t.Fatalf("默认行高应为 1.4 倍，实际 %g", got)
	}
	if _, err := ParseLineHeight("-1x"); err == nil {
		t.Fatalf("负倍数应返回错误")
	}
}

func TestPageSize(t *testing.T) {
	w, h, err := PageSize("a4")
	if err != nil || w != 595 || h != 842 {
		t.Fatalf("A4 期望 595x842，实际 %gx%g err=%v", w, h, err)
	}
	w, h, err = PageSize("A4-landscape")
	if err != nil || w != 842 || h != 595 {
		t.Fatalf("A4 横向期望 842x595，实际 %gx%g err=%v", w, h, err)
	}
	if _, _, err := PageSize("B7"); err == nil {
		t.Fatalf("未知纸张应返回错误")
	}
}
