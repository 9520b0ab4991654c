package adapter

import (
	"strings"
	"testing"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()

	got := splitText("hello", 10)
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("splitText = %v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("line one\n", 5) + "tail"
	chunks := splitText(text, 30)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for i, c := range chunks {
		if len([]rune(c)) > 30 {
			t.Errorf("chunk %d exceeds limit: %q", i, c)
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	if strings.Join(strings.Fields(strings.Join(chunks, "\n")), " ") != strings.Join(strings.Fields(text), " ") {
		t.Error("content lost across chunks")
	}
}
