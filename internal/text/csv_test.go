package text

import (
	"slices"
	"testing"
)

func TestSplitCSVLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"trims cells", " a , b ,c ", []string{"a", "b", "c"}},
		{"quoted comma", `"a,b",c`, []string{"a,b", "c"}},
		{"escaped quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"empty cells", "a,,c,", []string{"a", "", "c", ""}},
		{"single cell", "hello", []string{"hello"}},
		{"empty line", "", []string{}},
		{"unterminated quote", `"open,still open`, []string{"open,still open"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitCSVLine(tt.line)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitCSVLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	got := Lines("a\r\nb\nc")
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Lines() = %q", got)
	}
}
