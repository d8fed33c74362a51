package agent

import (
	"strings"
	"testing"
)

func TestSplitChunks_Empty(t *testing.T) {
	if got := splitChunks("", 4); got != nil {
		t.Fatalf("splitChunks(\"\") = %v, want nil", got)
	}
}

func TestSplitChunks_Count(t *testing.T) {
	cases := []struct {
		length, size, want int
	}{
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{8, 4, 2},
		{9, 4, 3},
		{ChunkSize, ChunkSize, 1},
		{ChunkSize + 1, ChunkSize, 2},
		{3*ChunkSize - 1, ChunkSize, 3},
	}
	for _, tc := range cases {
		in := strings.Repeat("a", tc.length)
		got := splitChunks(in, tc.size)
		if len(got) != tc.want {
			t.Errorf("len=%d size=%d: chunks = %d, want %d", tc.length, tc.size, len(got), tc.want)
		}
	}
}

func TestSplitChunks_Roundtrip(t *testing.T) {
	in := strings.Repeat("SGVsbG8sIHdvcmxkIQ==", 37)
	chunks := splitChunks(in, 16)

	for i, c := range chunks[:len(chunks)-1] {
		if len(c) != 16 {
			t.Errorf("chunk %d length = %d, want 16", i, len(c))
		}
	}
	if strings.Join(chunks, "") != in {
		t.Fatal("concatenated chunks do not restore the input")
	}
}

func TestSplitChunks_DefaultSize(t *testing.T) {
	in := strings.Repeat("x", ChunkSize+10)
	got := splitChunks(in, 0)
	if len(got) != 2 {
		t.Fatalf("chunks = %d, want 2 with default size", len(got))
	}
	if len(got[0]) != ChunkSize {
		t.Errorf("first chunk = %d, want %d", len(got[0]), ChunkSize)
	}
}
