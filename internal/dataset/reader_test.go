package dataset

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// oneByteReader forces multi-byte sequences to straddle read boundaries.
type oneByteReader struct{ r io.Reader }

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

// ----------------------------------------------------------------------------
// prepareReader Tests
// ----------------------------------------------------------------------------

func TestPrepareReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain ascii passes through",
			input: "store_id,name\n1,Gas N Go\n",
			want:  "store_id,name\n1,Gas N Go\n",
		},
		{
			name:  "bom stripped",
			input: "\xEF\xBB\xBFstore_id\n",
			want:  "store_id\n",
		},
		{
			name:  "valid multibyte preserved",
			input: "café,naïve\n",
			want:  "café,naïve\n",
		},
		{
			name:  "invalid bytes replaced",
			input: "bad\xFF\xFEdata\n",
			want:  "bad??data\n",
		},
		{
			name:  "short input without bom",
			input: "ab",
			want:  "ab",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(prepareReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepareReaderSplitSequences(t *testing.T) {
	// Multi-byte runes arriving one byte per read must not be mangled.
	input := "\xEF\xBB\xBFcafé über\n"
	got, err := io.ReadAll(prepareReader(oneByteReader{strings.NewReader(input)}))
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if want := "café über\n"; string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrepareReaderLargeASCII(t *testing.T) {
	input := bytes.Repeat([]byte("row,data,here\n"), 4096)
	got, err := io.ReadAll(prepareReader(bytes.NewReader(input)))
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Error("ascii fast path altered the data")
	}
}
