package pdfwriter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformed reports a file that does not have the structure Assemble produces.
var ErrMalformed = errors.New("pdfwriter: malformed file")

var (
	lengthPattern = regexp.MustCompile(`/Length\s+(\d+)`)
	sizePattern   = regexp.MustCompile(`/Size\s+(\d+)`)
	countPattern  = regexp.MustCompile(`/Count\s+(\d+)`)
	kidsPattern   = regexp.MustCompile(`/Kids\s*\[([^\]]*)\]`)
)

// Report is what Inspect learned about a file.
type Report struct {
	Version    string
	Size       int // trailer /Size: highest id + 1
	Root       int
	Info       int
	XrefOffset int
	Offsets    OffsetTable
	Count      int   // page tree /Count
	Kids       []int // page ids in page tree order

	dicts   map[int][]byte
	streams map[int][]byte
}

// Dict returns the dictionary (or other non-stream body) of object id.
func (r *Report) Dict(id int) []byte { return r.dicts[id] }

// Stream returns the body of stream object id, delimited by its /Length.
func (r *Report) Stream(id int) ([]byte, bool) {
	s, ok := r.streams[id]
	return s, ok
}

// Inspect reads a file back the way a conforming reader would: it follows startxref
// to the cross-reference table, checks that every record points at "<id> 0 obj", and
// fails on any reference to an object that is not in the table.
func Inspect(data []byte) (*Report, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, fmt.Errorf("%w: missing header line", ErrMalformed)
	}
	rep := &Report{
		Version: string(data[5:nl]),
		dicts:   map[int][]byte{},
		streams: map[int][]byte{},
	}
	if !bytes.HasSuffix(bytes.TrimRight(data, "\r\n "), []byte("%%EOF")) {
		return nil, fmt.Errorf("%w: missing %%%%EOF", ErrMalformed)
	}

	sx := bytes.LastIndex(data, []byte("startxref"))
	if sx < 0 {
		return nil, fmt.Errorf("%w: missing startxref", ErrMalformed)
	}
	xref, _, err := readInt(data, sx+len("startxref"))
	if err != nil || xref <= 0 || xref >= sx {
		return nil, fmt.Errorf("%w: bad startxref", ErrMalformed)
	}
	rep.XrefOffset = xref

	if err := rep.readXref(data); err != nil {
		return nil, err
	}
	for id := 1; id < rep.Size; id++ {
		if err := rep.readObject(data, id); err != nil {
			return nil, err
		}
	}
	if err := rep.checkReferences(); err != nil {
		return nil, err
	}
	if err := rep.readPageTree(); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Report) readXref(data []byte) error {
	pos := r.XrefOffset
	if !bytes.HasPrefix(data[pos:], []byte("xref\n")) {
		return fmt.Errorf("%w: startxref does not point at xref", ErrMalformed)
	}
	pos += len("xref\n")
	first, pos, err := readInt(data, pos)
	if err != nil || first != 0 {
		return fmt.Errorf("%w: xref subsection must start at 0", ErrMalformed)
	}
	n, pos, err := readInt(data, pos)
	if err != nil || n < 1 {
		return fmt.Errorf("%w: bad xref count", ErrMalformed)
	}
	pos = skipSpace(data, pos)
	if len(data) < pos+20*n {
		return fmt.Errorf("%w: truncated xref", ErrMalformed)
	}
	if string(data[pos:pos+20]) != xrefFree {
		return fmt.Errorf("%w: entry 0 must be the free list head", ErrMalformed)
	}
	r.Offsets = make(OffsetTable, n-1)
	for id := 1; id < n; id++ {
		rec := data[pos+20*id : pos+20*id+20]
		if !bytes.HasSuffix(rec, []byte(" 00000 n \n")) {
			return fmt.Errorf("%w: xref record %d: %q", ErrMalformed, id, rec)
		}
		off, err := strconv.Atoi(string(rec[:10]))
		if err != nil {
			return fmt.Errorf("%w: xref record %d: %v", ErrMalformed, id, err)
		}
		r.Offsets[id] = off
	}
	r.Size = n

	trailer := data[pos+20*n:]
	if !bytes.HasPrefix(trailer, []byte("trailer")) {
		return fmt.Errorf("%w: missing trailer", ErrMalformed)
	}
	if m := sizePattern.FindSubmatch(trailer); m == nil || atoi(m[1]) != n {
		return fmt.Errorf("%w: trailer /Size does not match xref", ErrMalformed)
	}
	if r.Root = namedRef(trailer, "Root"); r.Root == 0 {
		return fmt.Errorf("%w: trailer has no /Root", ErrMalformed)
	}
	r.Info = namedRef(trailer, "Info")
	return nil
}

func (r *Report) readObject(data []byte, id int) error {
	off := r.Offsets[id]
	head := strconv.Itoa(id) + " 0 obj"
	if off <= 0 || off >= r.XrefOffset || !bytes.HasPrefix(data[off:], []byte(head)) {
		return fmt.Errorf("%w: xref offset %d of object %d does not start with %q", ErrMalformed, off, id, head)
	}
	pos := skipSpace(data, off+len(head))
	end, err := skipValue(data, pos)
	if err != nil {
		return fmt.Errorf("object %d: %w", id, err)
	}
	dict := data[pos:end]
	r.dicts[id] = dict

	pos = skipSpace(data, end)
	if bytes.HasPrefix(data[pos:], []byte("stream")) {
		m := lengthPattern.FindSubmatch(dict)
		if m == nil {
			return fmt.Errorf("%w: stream %d has no /Length", ErrMalformed, id)
		}
		pos += len("stream")
		if bytes.HasPrefix(data[pos:], []byte("\r\n")) {
			pos += 2
		} else if pos < len(data) && data[pos] == '\n' {
			pos++
		}
		length := atoi(m[1])
		if pos+length > len(data) {
			return fmt.Errorf("%w: stream %d overruns the file", ErrMalformed, id)
		}
		r.streams[id] = data[pos : pos+length]
		pos = skipSpace(data, pos+length)
		if !bytes.HasPrefix(data[pos:], []byte("endstream")) {
			return fmt.Errorf("%w: stream %d /Length does not end at endstream", ErrMalformed, id)
		}
		pos = skipSpace(data, pos+len("endstream"))
	}
	if !bytes.HasPrefix(data[pos:], []byte("endobj")) {
		return fmt.Errorf("%w: object %d has no endobj", ErrMalformed, id)
	}
	return nil
}

func (r *Report) checkReferences() error {
	check := func(from, to int) error {
		if to < 1 || to >= r.Size {
			return fmt.Errorf("%w: object %d refers to %d (size %d)", ErrDanglingReference, from, to, r.Size)
		}
		return nil
	}
	if err := check(0, r.Root); err != nil {
		return err
	}
	if r.Info != 0 {
		if err := check(0, r.Info); err != nil {
			return err
		}
	}
	for id, dict := range r.dicts {
		for _, to := range references(string(stripStrings(dict))) {
			if err := check(id, to); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) readPageTree() error {
	pages := namedRef(r.dicts[r.Root], "Pages")
	if pages == 0 {
		return fmt.Errorf("%w: catalog has no /Pages", ErrMalformed)
	}
	tree := r.dicts[pages]
	m := countPattern.FindSubmatch(tree)
	if m == nil {
		return fmt.Errorf("%w: page tree has no /Count", ErrMalformed)
	}
	r.Count = atoi(m[1])
	k := kidsPattern.FindSubmatch(tree)
	if k == nil {
		return fmt.Errorf("%w: page tree has no /Kids", ErrMalformed)
	}
	r.Kids = references(string(k[1]))
	if len(r.Kids) != r.Count {
		return fmt.Errorf("%w: /Count %d but %d kids", ErrMalformed, r.Count, len(r.Kids))
	}
	for _, kid := range r.Kids {
		if namedRef(r.dicts[kid], "Parent") != pages {
			return fmt.Errorf("%w: page %d does not point back at its parent", ErrMalformed, kid)
		}
	}
	return nil
}

// PageContent returns the content stream of the i-th page (0-based).
func (r *Report) PageContent(i int) ([]byte, error) {
	if i < 0 || i >= len(r.Kids) {
		return nil, fmt.Errorf("pdfwriter: page %d out of range", i)
	}
	id := namedRef(r.dicts[r.Kids[i]], "Contents")
	s, ok := r.streams[id]
	if !ok {
		return nil, fmt.Errorf("%w: page %d has no content stream", ErrMalformed, i)
	}
	return s, nil
}

func namedRef(dict []byte, key string) int {
	re := regexp.MustCompile(`/` + key + `\s+(\d+)\s+\d+\s+R`)
	m := re.FindSubmatch(dict)
	if m == nil {
		return 0
	}
	return atoi(m[1])
}

func atoi(b []byte) int {
	n, _ := strconv.Atoi(string(b))
	return n
}

func readInt(data []byte, pos int) (int, int, error) {
	pos = skipSpace(data, pos)
	start := pos
	for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
		pos++
	}
	if start == pos {
		return 0, pos, fmt.Errorf("%w: expected integer at %d", ErrMalformed, start)
	}
	n, err := strconv.Atoi(string(data[start:pos]))
	return n, pos, err
}

func skipSpace(data []byte, pos int) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\n', '\r', '\t', '\f', 0:
			pos++
		default:
			return pos
		}
	}
	return pos
}

// skipValue returns the end of the dictionary (or simple value) starting at pos.
func skipValue(data []byte, pos int) (int, error) {
	if !bytes.HasPrefix(data[pos:], []byte("<<")) {
		end := bytes.Index(data[pos:], []byte("endobj"))
		if end < 0 {
			return 0, fmt.Errorf("%w: unterminated object", ErrMalformed)
		}
		return pos + end, nil
	}
	depth := 0
	for i := pos; i < len(data); {
		switch {
		case bytes.HasPrefix(data[i:], []byte("<<")):
			depth++
			i += 2
		case bytes.HasPrefix(data[i:], []byte(">>")):
			depth--
			i += 2
			if depth == 0 {
				return i, nil
			}
		case data[i] == '(':
			_, n := readLiteral(data[i:])
			i += n
		case data[i] == '<':
			end := bytes.IndexByte(data[i:], '>')
			if end < 0 {
				return 0, fmt.Errorf("%w: unterminated hex string", ErrMalformed)
			}
			i += end + 1
		default:
			i++
		}
	}
	return 0, fmt.Errorf("%w: unterminated dictionary", ErrMalformed)
}

// stripStrings removes literal and hex strings so that their content is not mistaken
// for syntax.
func stripStrings(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		switch {
		case b[i] == '(':
			_, n := readLiteral(b[i:])
			out = append(out, ' ')
			i += n
		case b[i] == '<' && !bytes.HasPrefix(b[i:], []byte("<<")):
			end := bytes.IndexByte(b[i:], '>')
			if end < 0 {
				return out
			}
			out = append(out, ' ')
			i += end + 1
		case bytes.HasPrefix(b[i:], []byte("<<")), bytes.HasPrefix(b[i:], []byte(">>")):
			out = append(out, b[i:i+2]...)
			i += 2
		default:
			out = append(out, b[i])
			i++
		}
	}
	return out
}
