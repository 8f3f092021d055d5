package pdfwriter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// header is the version line followed by a comment with high-bit bytes so that
// transfer tools treat the file as binary.
const header = "%PDF-1.4\n%\xE2\xE3\xCF\xD3\n"

// xrefFree is the fixed record for object 0, the head of the free list.
const xrefFree = "0000000000 65535 f \n"

var (
	// ErrObjectIDs reports object ids that are not exactly 1..N in ascending order.
	ErrObjectIDs = errors.New("pdfwriter: object ids must be 1..N in ascending order")
	// ErrDanglingReference reports an "N 0 R" token without a matching object.
	ErrDanglingReference = errors.New("pdfwriter: dangling object reference")
)

var refPattern = regexp.MustCompile(`(?:^|[^0-9.])(\d+)\s+(\d+)\s+R\b`)

// OffsetTable maps an object id to the byte offset of its first byte in the output.
type OffsetTable map[int]int

// Assemble serializes objects into a complete PDF file.
//
// Objects are written in ascending id order after the header, the offset of each one
// recorded before it is appended. The cross-reference table lists ids 0..N with fixed
// 20-byte records, and the trailer names the root (and info, when infoID > 0) object and
// the offset of the cross-reference table. On error no bytes are returned.
func Assemble(objects []Object, rootID, infoID int) ([]byte, error) {
	if err := validate(objects, rootID, infoID); err != nil {
		return nil, err
	}

	out := make([]byte, 0, estimateSize(objects))
	out = append(out, header...)
	offsets := make(OffsetTable, len(objects))
	for _, obj := range objects {
		offsets[obj.ID] = len(out)
		out = obj.appendTo(out)
	}

	xrefStart := len(out)
	out = offsets.appendXref(out, len(objects))

	out = append(out, "trailer\n<< /Size "...)
	out = strconv.AppendInt(out, int64(len(objects)+1), 10)
	out = append(out, " /Root "+Ref(rootID)...)
	if infoID > 0 {
		out = append(out, " /Info "+Ref(infoID)...)
	}
	out = append(out, " >>\nstartxref\n"...)
	out = strconv.AppendInt(out, int64(xrefStart), 10)
	out = append(out, "\n%%EOF\n"...)
	return out, nil
}

// appendXref writes the cross-reference section for ids 0..highest.
func (t OffsetTable) appendXref(dst []byte, highest int) []byte {
	dst = append(dst, "xref\n0 "...)
	dst = strconv.AppendInt(dst, int64(highest+1), 10)
	dst = append(dst, '\n')
	dst = append(dst, xrefFree...)
	for id := 1; id <= highest; id++ {
		dst = fmt.Appendf(dst, "%010d 00000 n \n", t[id])
	}
	return dst
}

func validate(objects []Object, rootID, infoID int) error {
	if len(objects) == 0 {
		return fmt.Errorf("%w: no objects", ErrObjectIDs)
	}
	for i, obj := range objects {
		if obj.ID != i+1 {
			return fmt.Errorf("%w: position %d holds id %d", ErrObjectIDs, i, obj.ID)
		}
	}
	highest := len(objects)
	if rootID < 1 || rootID > highest {
		return fmt.Errorf("%w: root %d", ErrDanglingReference, rootID)
	}
	if infoID < 0 || infoID > highest {
		return fmt.Errorf("%w: info %d", ErrDanglingReference, infoID)
	}
	for _, obj := range objects {
		for _, f := range obj.Payload {
			t, ok := f.(Text)
			if !ok {
				continue
			}
			for _, id := range references(string(t)) {
				if id < 1 || id > highest {
					return fmt.Errorf("%w: object %d refers to %d", ErrDanglingReference, obj.ID, id)
				}
			}
		}
	}
	return nil
}

// references returns the object numbers of all "N G R" tokens in s.
func references(s string) []int {
	var ids []int
	for _, m := range refPattern.FindAllStringSubmatch(s, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			ids = append(ids, -1)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func estimateSize(objects []Object) int {
	n := len(header) + 64 + 20*(len(objects)+1)
	for _, obj := range objects {
		n += 24
		for _, f := range obj.Payload {
			switch v := f.(type) {
			case Text:
				n += len(v)
			case Raw:
				n += len(v)
			}
		}
	}
	return n
}
