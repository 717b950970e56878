package segment

import (
	"regexp"
	"strings"

	"papyrus/repository"
)

const (
	// Sliding-window parameters over the cleaned body text. Consecutive
	// windows overlap by WindowOverlap characters; the final window may
	// be shorter than WindowSize.
	WindowSize    = 1000
	WindowOverlap = 175

	// Trimmed window candidates at or below this length are discarded.
	// This can silently drop a short tail, which is expected behavior:
	// fragments that small carry too little signal to retrieve on.
	minChunkLen = 200

	// Extracted abstracts shorter than this are rejected as false
	// positives; accepted abstracts are capped at maxAbstractLen.
	minAbstractLen = 50
	maxAbstractLen = 2000
)

// Terminal sections. Everything from the first matching header onward
// is discarded before chunking.
var terminalSections = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\nreferences\n`),
	regexp.MustCompile(`(?i)\nbibliography\n`),
}

// Abstract header patterns, tried in order against the raw text. The
// first match whose captured span is substantial wins.
var abstractPatterns = []*regexp.Regexp{
	// Standard "Abstract" header
	regexp.MustCompile(`(?is)abstract\s*(.+?)(\n\s*\n|introduction|\n1\s)`),
	// LaTeX style
	regexp.MustCompile(`(?is)\\begin\{abstract\}(.+?)\\end\{abstract\}`),
	// All caps
	regexp.MustCompile(`(?is)ABSTRACT\s*(.+?)(\n\s*\n|INTRODUCTION|\n1\s)`),
	// With colon/dash
	regexp.MustCompile(`(?is)abstract\s*[:\-—]\s*(.+?)(\n\s*\n|introduction|\n1\s)`),
	// Numbered section
	regexp.MustCompile(`(?is)abstract\s*\n(.+?)(\n\s*\n|\n1\.|introduction)`),
}

var boilerplateMarkers = []string{
	"all rights reserved",
	"this paper is submitted to",
}

// Segment turns raw extracted paper text into an ordered chunk
// sequence. If knownAbstract is empty an extraction is attempted
// against the uncleaned text; a paper without a recognizable abstract
// is not an error. Segment never fails on malformed input: the worst
// case is an empty sequence.
func Segment(rawText, knownAbstract string) []repository.PaperChunk {
	abstract := strings.TrimSpace(knownAbstract)
	if abstract == "" {
		abstract = ExtractAbstract(rawText)
	}

	body := RemoveReferences(rawText)
	body = CleanText(body)
	windows := chunkBody(body)

	chunks := make([]repository.PaperChunk, 0, len(windows)+1)
	if abstract != "" {
		chunks = append(chunks, repository.PaperChunk{
			Text:     abstract,
			Kind:     repository.ChunkAbstract,
			Position: 0,
		})
	}
	for i, w := range windows {
		chunks = append(chunks, repository.PaperChunk{
			Text:     w,
			Kind:     repository.ChunkBody,
			Position: i + 1,
		})
	}
	return chunks
}

// ExtractAbstract tries the header pattern ladder in order and returns
// the first substantial capture, truncated to maxAbstractLen. Empty
// string means no abstract was found.
func ExtractAbstract(text string) string {
	for _, pat := range abstractPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		abstract := strings.TrimSpace(m[1])
		if len([]rune(abstract)) > minAbstractLen {
			r := []rune(abstract)
			if len(r) > maxAbstractLen {
				abstract = string(r[:maxAbstractLen])
			}
			return abstract
		}
	}
	return ""
}

// RemoveReferences drops everything from the first terminal-section
// header onward. Text without such a header is returned unchanged.
func RemoveReferences(text string) string {
	for _, pat := range terminalSections {
		if loc := pat.FindStringIndex(text); loc != nil {
			return text[:loc[0]]
		}
	}
	return text
}

// CleanText drops blank lines and pure boilerplate lines. Cleaning is
// deliberately light: recall is worth more than precision here, so
// nothing that might be content is removed.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		l := strings.ToLower(strings.TrimSpace(line))
		if l == "" {
			continue
		}
		if isBoilerplate(l) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

func isBoilerplate(lowered string) bool {
	for _, marker := range boilerplateMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// chunkBody slides a fixed-size window over the cleaned text, advancing
// by WindowSize-WindowOverlap characters per step.
func chunkBody(text string) []string {
	runes := []rune(text)

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + WindowSize
		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:sliceEnd]))
		if len([]rune(chunk)) > minChunkLen {
			chunks = append(chunks, chunk)
		}

		start = end - WindowOverlap
	}

	return chunks
}
