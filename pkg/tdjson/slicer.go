package tdjson

import (
	"io"
	"math"
)

// Slicer restricts delivery to the inclusive byte window [Start, End] of
// the rendered document. Cur counts every byte the serializer produces in
// one run, delivered or not.
type Slicer struct {
	Start int64
	End   int64
	Cur   int64
}

// NewWindow returns a Slicer covering size bytes from offset.
func NewWindow(offset, size int64) *Slicer {
	return &Slicer{Start: offset, End: offset + size - 1}
}

// Full returns a Slicer covering the whole document.
func Full() *Slicer {
	return &Slicer{End: math.MaxInt64}
}

// Size returns the number of bytes the window can hold.
func (s *Slicer) Size() int64 {
	return s.End - s.Start + 1
}

// More reports whether the last run produced bytes past the window.
func (s *Slicer) More() bool {
	return s.End != math.MaxInt64 && s.Cur > s.End+1
}

// Next returns the window of the same size following s.
func (s *Slicer) Next() *Slicer {
	return NewWindow(s.End+1, s.Size())
}

// Writer returns an io.Writer that forwards only the bytes falling inside
// the window to dst and advances Cur over all of them. Writes never fail;
// the first error from dst is kept and reported by Err.
func (s *Slicer) Writer(dst io.Writer) *WindowWriter {
	return &WindowWriter{dst: dst, s: s}
}

// WindowWriter is the filtering writer returned by Slicer.Writer.
type WindowWriter struct {
	dst io.Writer
	s   *Slicer
	err error
}

// Write forwards the part of p inside the window.
func (w *WindowWriter) Write(p []byte) (int, error) {
	if from, to, ok := w.span(len(p)); ok && w.err == nil {
		_, w.err = w.dst.Write(p[from:to])
	}
	w.s.Cur += int64(len(p))
	return len(p), nil
}

// WriteString forwards the part of str inside the window.
func (w *WindowWriter) WriteString(str string) (int, error) {
	if from, to, ok := w.span(len(str)); ok && w.err == nil {
		_, w.err = io.WriteString(w.dst, str[from:to])
	}
	w.s.Cur += int64(len(str))
	return len(str), nil
}

// Err returns the first error returned by the destination writer.
func (w *WindowWriter) Err() error {
	return w.err
}

// span returns the sub-range of an n byte write at Cur that overlaps the
// window.
func (w *WindowWriter) span(n int) (from, to int, ok bool) {
	lo := w.s.Cur
	hi := lo + int64(n)
	if n == 0 || w.s.End < w.s.Start || hi <= w.s.Start || lo > w.s.End {
		return 0, 0, false
	}
	f := max(w.s.Start-lo, 0)
	t := int64(n)
	if w.s.End < hi-1 {
		t = w.s.End + 1 - lo
	}
	return int(f), int(t), true
}
