// Package binding 把 JSON 数据填入标题与正文中的 ${path} 占位符。
package binding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Decode 读取 JSON 数据。数字保留原始写法，避免 1000000 被输出为 1e+06。
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("解析 JSON 数据失败: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("解析 JSON 数据失败: 存在多余内容")
	}
	return data, nil
}

// DecodeBytes 是 Decode 的便捷形式。
func DecodeBytes(b []byte) (any, error) { return Decode(bytes.NewReader(b)) }

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径支持 a.b[0].c；若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholderPath(match)
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return format(val)
		}
		return match
	})
}

// Missing 返回文本中无法从 data 解析的占位符路径，按出现顺序去重。
func Missing(text string, data any) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllString(text, -1) {
		path := placeholderPath(m)
		if path == "" || seen[path] {
			continue
		}
		if data != nil {
			if _, ok := resolvePath(data, path); ok {
				continue
			}
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}

func placeholderPath(match string) string {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return ""
	}
	return strings.TrimSpace(groups[1])
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name, rest, found := strings.Cut(segment, "[")
	if !found {
		return segment, nil
	}
	var indexes []string
	rest = "[" + rest
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, strings.TrimSpace(rest[1:end]))
		rest = rest[end+1:]
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	c, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := c[key]
	return val, ok
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok {
		return nil, false
	}
	if idx < 0 {
		idx += len(c)
	}
	if idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
