package tdjson

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowWriter(t *testing.T) {
	tests := []struct {
		name   string
		start  int64
		end    int64
		writes []string
		want   string
	}{
		{"all", 0, 100, []string{"abc", "def"}, "abcdef"},
		{"inside one write", 1, 2, []string{"abcd"}, "bc"},
		{"across writes", 2, 4, []string{"abc", "def"}, "cde"},
		{"before", 10, 20, []string{"abc", "def"}, ""},
		{"single byte", 3, 3, []string{"abc", "def"}, "d"},
		{"empty writes", 0, 1, []string{"", "a", "", "b"}, "ab"},
		{"inverted", 3, 2, []string{"abcdef"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := &Slicer{Start: tt.start, End: tt.end}
			w := s.Writer(&buf)
			total := 0
			for _, str := range tt.writes {
				n, err := w.WriteString(str)
				require.NoError(t, err)
				assert.Equal(t, len(str), n)
				total += len(str)
			}
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, int64(total), s.Cur)
		})
	}
}

func TestSlicerWindow(t *testing.T) {
	s := NewWindow(16, 16)
	assert.Equal(t, int64(16), s.Start)
	assert.Equal(t, int64(31), s.End)
	assert.Equal(t, int64(16), s.Size())

	next := s.Next()
	assert.Equal(t, int64(32), next.Start)
	assert.Equal(t, int64(47), next.End)

	s.Cur = 32
	assert.False(t, s.More())
	s.Cur = 33
	assert.True(t, s.More())

	full := Full()
	full.Cur = 1 << 40
	assert.False(t, full.More())
}

// Concatenated windows must reproduce the whole document byte for byte.
func TestSlicePartition(t *testing.T) {
	thing := lampThing(t)
	full := render(t, thing)
	total := int64(len(full))

	for _, size := range []int64{1, 2, 3, 7, 16, 64, 100, 1024, total, total + 10} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			var out bytes.Buffer
			s := NewWindow(0, size)
			for blocks := 0; ; blocks++ {
				require.Less(t, blocks, len(full)+1, "no progress")
				require.NoError(t, Serialize(&out, thing, s))
				assert.Equal(t, total, s.Cur, "cursor must count the whole document")
				if !s.More() {
					break
				}
				s = s.Next()
			}
			assert.Equal(t, full, out.String())
		})
	}

	t.Run("three uneven windows", func(t *testing.T) {
		k := total / 3
		var out bytes.Buffer
		for _, s := range []*Slicer{
			{Start: 0, End: k - 1},
			{Start: k, End: 2*k - 1},
			{Start: 2 * k, End: total - 1},
		} {
			require.NoError(t, Serialize(&out, thing, s))
		}
		assert.Equal(t, full, out.String())
	})

	t.Run("past the end", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Serialize(&out, thing, NewWindow(total, 64)))
		assert.Zero(t, out.Len())
	})
}
