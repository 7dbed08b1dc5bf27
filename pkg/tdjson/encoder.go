package tdjson

import (
	"io"
	"math"
	"strconv"
	"time"

	"github.com/wot-td/wot-go/pkg/model"
)

// encoder emits JSON tokens straight into the windowed writer.
type encoder struct {
	w    *WindowWriter
	lang string
	buf  [64]byte
}

func (e *encoder) raw(s string) {
	_, _ = e.w.WriteString(s)
}

func (e *encoder) bytes(b []byte) {
	_, _ = e.w.Write(b)
}

const hex = "0123456789abcdef"

// escape writes s with JSON string escaping, passing unescaped runs
// through in a single write.
func (e *encoder) escape(s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			e.raw(s[start:i])
		}
		switch c {
		case '"':
			e.raw(`\"`)
		case '\\':
			e.raw(`\\`)
		case '\n':
			e.raw(`\n`)
		case '\r':
			e.raw(`\r`)
		case '\t':
			e.raw(`\t`)
		default:
			e.bytes([]byte{'\\', 'u', '0', '0', hex[c>>4], hex[c&0xf]})
		}
		start = i + 1
	}
	if start < len(s) {
		e.raw(s[start:])
	}
}

func (e *encoder) str(s string) {
	e.raw(`"`)
	e.escape(s)
	e.raw(`"`)
}

func (e *encoder) uri(u *model.URI) {
	e.raw(`"`)
	if u != nil {
		e.escape(u.Scheme)
		e.escape(u.Value)
	}
	e.raw(`"`)
}

func (e *encoder) boolean(b bool) {
	if b {
		e.raw("true")
	} else {
		e.raw("false")
	}
}

func (e *encoder) integer(v int64) {
	e.bytes(strconv.AppendInt(e.buf[:0], v, 10))
}

func (e *encoder) number(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.raw("null")
		return
	}
	e.bytes(strconv.AppendFloat(e.buf[:0], v, 'g', -1, 64))
}

func (e *encoder) date(t *time.Time) {
	e.raw(`"`)
	e.bytes(t.AppendFormat(e.buf[:0], time.RFC3339))
	e.raw(`"`)
}

// scope tracks whether a separator is due inside an object or array.
type scope struct {
	e *encoder
	n int
}

func (e *encoder) object() *scope {
	e.raw("{")
	return &scope{e: e}
}

func (e *encoder) array() *scope {
	e.raw("[")
	return &scope{e: e}
}

// elem starts the next array element.
func (s *scope) elem() {
	if s.n > 0 {
		s.e.raw(",")
	}
	s.n++
}

// key starts the next object member.
func (s *scope) key(k string) {
	s.elem()
	s.e.str(k)
	s.e.raw(":")
}

func (s *scope) closeObject() { s.e.raw("}") }
func (s *scope) closeArray()  { s.e.raw("]") }

var _ io.StringWriter = (*WindowWriter)(nil)
