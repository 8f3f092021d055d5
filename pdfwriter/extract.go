package pdfwriter

// ExtractText returns, per page in page tree order, the strings shown by the Tj, ' and "
// operators of the page content, with escapes resolved. Raster pages yield no strings.
func ExtractText(data []byte) ([][]string, error) {
	rep, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	pages := make([][]string, len(rep.Kids))
	for i := range rep.Kids {
		content, err := rep.PageContent(i)
		if err != nil {
			return nil, err
		}
		pages[i] = shownStrings(content)
	}
	return pages, nil
}

// shownStrings scans a content stream and collects the operand of every text showing
// operator. Other operators and operands are skipped.
func shownStrings(content []byte) []string {
	var out []string
	var pending []byte
	havePending := false
	for i := 0; i < len(content); {
		c := content[i]
		switch {
		case c == '(':
			s, n := readLiteral(content[i:])
			pending, havePending = s, true
			i += n
		case c == '\'' || c == '"':
			if havePending {
				out = append(out, string(pending))
			}
			havePending = false
			i++
		case isRegular(c):
			start := i
			for i < len(content) && isRegular(content[i]) {
				i++
			}
			op := string(content[start:i])
			if op == "Tj" && havePending {
				out = append(out, string(pending))
			}
			if !isNumber(op) {
				havePending = false
			}
		default:
			i++
		}
	}
	return out
}

// readLiteral decodes the literal string starting with '(' at b[0]. It returns the
// decoded bytes and the number of input bytes consumed, including both parentheses.
func readLiteral(b []byte) ([]byte, int) {
	var out []byte
	depth := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '(':
			if depth > 0 {
				out = append(out, c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out, i + 1
			}
			out = append(out, c)
		case '\\':
			i++
			if i >= len(b) {
				return out, i
			}
			switch e := b[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if i+1 < len(b) && b[i+1] == '\n' {
					i++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := 0
				j := 0
				for ; j < 3 && i+j < len(b) && b[i+j] >= '0' && b[i+j] <= '7'; j++ {
					v = v*8 + int(b[i+j]-'0')
				}
				i += j - 1
				out = append(out, byte(v))
			default:
				out = append(out, e)
			}
		default:
			out = append(out, c)
		}
	}
	return out, len(b)
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\f', 0,
		'(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '\'', '"':
		return false
	}
	return true
}

func isNumber(tok string) bool {
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' {
			return false
		}
	}
	return tok != ""
}
