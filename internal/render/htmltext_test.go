package render

import (
	"testing"

	"mnemoniq/pkg/domain"
)

func TestHTMLText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraphs",
			in:   "<p>First block.</p><p>Second block.</p>",
			want: "First block.\n\nSecond block.",
		},
		{
			name: "list to bullets",
			in:   "<p>Key points:</p><ul><li>Cells divide</li><li>DNA replicates</li></ul>",
			want: "Key points:\n\n- Cells divide\n- DNA replicates",
		},
		{
			name: "inline tags keep word boundaries",
			in:   "<p>The <b>mitochondria</b> makes ATP.</p>",
			want: "The mitochondria makes ATP.",
		},
		{
			name: "heading and break",
			in:   "<h2>Summary</h2>Line one<br>Line two",
			want: "Summary\n\nLine one\nLine two",
		},
		{
			name: "plain text untouched",
			in:   "Just a plain sentence.",
			want: "Just a plain sentence.",
		},
		{
			name: "failure sentinel passes through",
			in:   domain.SummaryFailed,
			want: domain.SummaryFailed,
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLText(tt.in); got != tt.want {
				t.Fatalf("HTMLText(%q)\n got: %q\nwant: %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarkdownNeverLosesContent(t *testing.T) {
	// Rendering is cosmetic; whatever happens, the words must survive.
	out := Markdown("**ATP** is the cell's energy currency.", 60)
	if out == "" {
		t.Fatal("rendered markdown is empty")
	}
}
