package segment

import (
	"strings"
	"testing"

	"papyrus/repository"
)

// bodyText returns n characters of non-space filler that contains no
// header keywords, so cleaning and extraction leave it untouched.
func bodyText(n int) string {
	const alphabet = "bcdefghijklmnopqrstuvwxyz"
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[i%len(alphabet)])
	}
	return sb.String()
}

func TestSegment_WindowOffsets(t *testing.T) {
	text := bodyText(2400)
	chunks := Segment(text, "")

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantSpans := [][2]int{{0, 1000}, {825, 1825}, {1650, 2400}}
	for i, span := range wantSpans {
		want := text[span[0]:span[1]]
		if chunks[i].Text != want {
			t.Errorf("chunk %d: expected span [%d,%d), got different text", i, span[0], span[1])
		}
		if chunks[i].Kind != repository.ChunkBody {
			t.Errorf("chunk %d: expected body kind, got %s", i, chunks[i].Kind)
		}
		if chunks[i].Position != i+1 {
			t.Errorf("chunk %d: expected position %d, got %d", i, i+1, chunks[i].Position)
		}
	}
}

func TestSegment_PositionsStrictlyIncreasing(t *testing.T) {
	chunks := Segment(bodyText(5000), "A known abstract supplied by the caller.")

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if chunks[0].Kind != repository.ChunkAbstract || chunks[0].Position != 0 {
		t.Fatalf("expected abstract at position 0, got %s at %d", chunks[0].Kind, chunks[0].Position)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Position != chunks[i-1].Position+1 {
			t.Errorf("position not strictly increasing at index %d: %d after %d",
				i, chunks[i].Position, chunks[i-1].Position)
		}
		if chunks[i].Kind != repository.ChunkBody {
			t.Errorf("chunk %d: expected body kind", i)
		}
	}
}

func TestSegment_MinimumBodyLength(t *testing.T) {
	for _, n := range []int{100, 1100, 2400, 3000} {
		chunks := Segment(bodyText(n), "")
		for _, c := range chunks {
			if len(c.Text) <= 200 {
				t.Errorf("text length %d: body chunk of %d chars survived the discard", n, len(c.Text))
			}
		}
	}
}

func TestSegment_ShortTailDiscarded(t *testing.T) {
	// 900 chars: first window covers [0:900), the next starts at 825
	// leaving a 75-char tail that falls under the minimum.
	chunks := Segment(bodyText(900), "")
	if len(chunks) != 1 {
		t.Fatalf("expected the 75-char tail to be dropped, got %d chunks", len(chunks))
	}
}

func TestSegment_EmptyAndMalformed(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"Empty", ""},
		{"OnlyWhitespace", "  \n\n \t \n"},
		{"TooShort", "a short note"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if chunks := Segment(tc.text, ""); len(chunks) != 0 {
				t.Errorf("expected no chunks, got %d", len(chunks))
			}
		})
	}
}

func TestRemoveReferences(t *testing.T) {
	testCases := []struct {
		name   string
		marker string
	}{
		{"References", "References"},
		{"ReferencesLower", "references"},
		{"ReferencesUpper", "REFERENCES"},
		{"Bibliography", "Bibliography"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := bodyText(1500) + "\n" + tc.marker + "\n[1] Some citation that must not be indexed."
			got := RemoveReferences(text)
			if strings.Contains(got, "citation") {
				t.Error("reference section survived stripping")
			}

			chunks := Segment(text, "")
			for _, c := range chunks {
				if strings.Contains(c.Text, "citation") {
					t.Error("reference text leaked into a chunk")
				}
			}
		})
	}
}

func TestRemoveReferences_NoMarker(t *testing.T) {
	text := bodyText(500)
	if got := RemoveReferences(text); got != text {
		t.Error("text without a terminal section was modified")
	}
}

func TestCleanText(t *testing.T) {
	text := "First line of content\n\n\u00a9 2024 All rights reserved.\nThis paper is submitted to some venue\nSecond line of content"
	got := CleanText(text)

	want := "First line of content\nSecond line of content"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtractAbstract(t *testing.T) {
	longAbstract := "This work studies the retrieval behavior of dense paper indexes under domain shift and presents a simple mitigation."

	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "PlainHeader",
			text: "Some Title\nAbstract\n" + longAbstract + "\n\nIntroduction follows here",
			want: longAbstract,
		},
		{
			name: "LatexEnvironment",
			text: "preamble text\n\\begin{abstract}" + longAbstract + "\\end{abstract}\nmore",
			want: longAbstract,
		},
		{
			// The plain-header pattern matches before the colon variant
			// and keeps the separator in its capture. Preserved as-is.
			name: "ColonSeparator",
			text: "Title\nAbstract: " + longAbstract + "\n\nSection 1",
			want: ": " + longAbstract,
		},
		{
			name: "TooShortCapture",
			text: "Abstract\nshort\n\nIntroduction",
			want: "",
		},
		{
			name: "NoHeader",
			text: bodyText(400),
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractAbstract(tc.text)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractAbstract_Truncation(t *testing.T) {
	huge := strings.Repeat("long abstract sentence repeated many times. ", 100)
	text := "Abstract\n" + huge + "\n\nIntroduction"

	got := ExtractAbstract(text)
	if got == "" {
		t.Fatal("expected an abstract")
	}
	if n := len([]rune(got)); n > 2000 {
		t.Errorf("abstract not truncated: %d chars", n)
	}
}

func TestSegment_SuppliedAbstractWins(t *testing.T) {
	supplied := "The abstract supplied by the extraction collaborator."
	text := "Abstract\nA different inline abstract that would otherwise be extracted from the raw paper text here.\n\nIntroduction\n" + bodyText(1200)

	chunks := Segment(text, supplied)
	if len(chunks) == 0 || chunks[0].Text != supplied {
		t.Fatal("supplied abstract was not preferred over extraction")
	}
}

func TestSegment_NoAbstractIsNotAnError(t *testing.T) {
	chunks := Segment(bodyText(1200), "")
	for _, c := range chunks {
		if c.Kind == repository.ChunkAbstract {
			t.Fatal("unexpected abstract chunk")
		}
	}
	if len(chunks) == 0 {
		t.Fatal("expected body chunks")
	}
	if chunks[0].Position != 1 {
		t.Errorf("first body chunk should be position 1, got %d", chunks[0].Position)
	}
}
