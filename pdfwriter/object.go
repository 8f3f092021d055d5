// Package pdfwriter assembles PDF files byte by byte: numbered indirect objects, a
// cross-reference table of their byte offsets and a trailer. Objects refer to each other
// only through "N 0 R" tokens embedded in their payload.
package pdfwriter

import (
	"strconv"
)

// Fragment is one piece of an object payload.
type Fragment interface {
	appendTo(dst []byte) []byte
}

// Text is structural PDF syntax (dictionaries, arrays, keywords). Reference tokens inside
// Text fragments are validated by Assemble.
type Text string

// Raw is opaque data appended verbatim: stream bodies and user supplied strings.
type Raw []byte

func (t Text) appendTo(dst []byte) []byte { return append(dst, t...) }
func (r Raw) appendTo(dst []byte) []byte  { return append(dst, r...) }

// Object is an indirect object with generation 0.
type Object struct {
	ID      int
	Payload []Fragment
}

// NewObject builds an object from fragments.
func NewObject(id int, payload ...Fragment) Object {
	return Object{ID: id, Payload: payload}
}

// StreamObject builds a stream object. dict holds the dictionary entries without the
// surrounding << >>; /Length is the byte length of data and is appended here.
func StreamObject(id int, dict string, data []byte) Object {
	head := "<< "
	if dict != "" {
		head += dict + " "
	}
	head += "/Length " + strconv.Itoa(len(data)) + " >>\nstream\n"
	return NewObject(id, Text(head), Raw(data), Text("\nendstream"))
}

// Ref formats an indirect reference to id.
func Ref(id int) string {
	return strconv.Itoa(id) + " 0 R"
}

func (o Object) appendTo(dst []byte) []byte {
	dst = strconv.AppendInt(dst, int64(o.ID), 10)
	dst = append(dst, " 0 obj\n"...)
	for _, f := range o.Payload {
		dst = f.appendTo(dst)
	}
	return append(dst, "\nendobj\n"...)
}

// Bytes returns the serialized form "<id> 0 obj\n<payload>\nendobj\n".
func (o Object) Bytes() []byte { return o.appendTo(nil) }
