package layout

// PaginateByHeight 按页面可用高度分页，返回的每一页都带有行的纵向位置。
//
// 游标从 marginY 开始；若 cursor+lineHeight > pageHeight-marginY，且当前页已有内容，
// 则先提交当前页再放置该行。恰好相等时该行仍留在当前页。
// 空行同样推进游标并计为“有内容”，因此只含段落间隔的页也会输出。
// 结果至少包含一页。
func PaginateByHeight(lines []Line, pageHeight, marginY float64) []Frame {
	bottom := pageHeight - marginY
	var frames []Frame
	var current Frame
	hasContent := false
	cursor := marginY

	for _, line := range lines {
		if hasContent && cursor+line.LineHeight > bottom {
			frames = append(frames, current)
			current = Frame{}
			hasContent = false
			cursor = marginY
		}
		current.Lines = append(current.Lines, Placed{Line: line, Top: cursor})
		cursor += line.LineHeight
		hasContent = true
	}
	if hasContent || len(frames) == 0 {
		frames = append(frames, current)
	}
	return frames
}

// PaginateByCount 按固定行数分页（文本策略没有字体度量，不按高度计算）。
// perPage <= 0 时所有行放在同一页。结果至少包含一页。
func PaginateByCount(lines []Line, perPage int) [][]Line {
	if perPage <= 0 || len(lines) <= perPage {
		return [][]Line{lines}
	}
	pages := make([][]Line, 0, (len(lines)+perPage-1)/perPage)
	for start := 0; start < len(lines); start += perPage {
		end := min(start+perPage, len(lines))
		pages = append(pages, lines[start:end])
	}
	return pages
}
