// Package fonts 提供内置字体（DejaVu Sans，含阿拉伯文字形）以及按路径加载字体文件。
package fonts

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-fonts/dejavu/dejavusans"
	"github.com/go-fonts/dejavu/dejavusansbold"
)

// 内置字体名称，可写为 "embed:DejaVuSans"。
const (
	Regular = "DejaVuSans"
	Bold    = "DejaVuSans-Bold"
)

var builtin = map[string][]byte{
	Regular: dejavusans.TTF,
	Bold:    dejavusansbold.TTF,
}

// Load 返回字体字节数据。src 可以是 "embed:DejaVuSans"、内置名称本身，或者字体文件路径。
func Load(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	name := strings.TrimPrefix(src, "embed:")
	if data, ok := builtin[name]; ok {
		if len(data) == 0 {
			return nil, fmt.Errorf("内置字体 %s 为空", name)
		}
		return data, nil
	}
	if strings.HasPrefix(src, "embed:") {
		return nil, fmt.Errorf("找不到内置字体 %s", src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
