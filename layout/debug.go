package layout

import (
	"encoding/json"
	"os"
)

// DebugDump 是调试 JSON 的顶层结构：排版得到的行以及分页后的结果。
type DebugDump struct {
	Strategy string   `json:"strategy"`
	Lines    []Line   `json:"lines"`
	Frames   []Frame  `json:"frames,omitempty"`
	Pages    [][]Line `json:"pages,omitempty"`
}

// WriteDebugJSON 将排版结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(dump *DebugDump, path string) error {
	if dump == nil {
		return nil
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
