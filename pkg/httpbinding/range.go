package httpbinding

import (
	"strconv"
	"strings"
)

// rangeSpec is a single parsed bytes range. A suffix range has start -1 and
// asks for the last suffix bytes; an open range has end -1.
type rangeSpec struct {
	start, end int64
	suffix     int64
}

// parseRange interprets a Range header. Only a single bytes range is
// honored; ok is false when the header is absent, malformed or lists several
// ranges, in which case the whole document is served.
func parseRange(header string) (rangeSpec, bool) {
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(spec, ",") {
		return rangeSpec{}, false
	}
	first, last, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return rangeSpec{}, false
	}

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n < 0 {
			return rangeSpec{}, false
		}
		return rangeSpec{start: -1, end: -1, suffix: n}, true
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return rangeSpec{}, false
	}
	if last == "" {
		return rangeSpec{start: start, end: -1}, true
	}
	end, err := strconv.ParseInt(last, 10, 64)
	if err != nil || end < start {
		return rangeSpec{}, false
	}
	return rangeSpec{start: start, end: end}, true
}

// resolve clamps r to a document of size bytes and returns the inclusive
// bounds. ok is false when the range is not satisfiable.
func (r rangeSpec) resolve(size int64) (start, end int64, ok bool) {
	if size == 0 {
		return 0, 0, false
	}
	if r.start < 0 {
		if r.suffix == 0 {
			return 0, 0, false
		}
		n := min(r.suffix, size)
		return size - n, size - 1, true
	}
	if r.start >= size {
		return 0, 0, false
	}
	end = size - 1
	if r.end >= 0 && r.end < end {
		end = r.end
	}
	return r.start, end, true
}
