package document

import (
	"sort"
	"strings"
)

// Line is a visual line of word tokens, left to right.
type Line struct {
	Tokens []Token
}

// Text joins the line's tokens with single spaces.
func (l Line) Text() string {
	words := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		words[i] = t.Text
	}
	return strings.Join(words, " ")
}

// GroupLines buckets tokens into visual lines: a token joins the current
// line while its Y is within tolerance of the line's first token. Lines are
// returned top of page first, tokens left to right.
func GroupLines(tokens []Token, tolerance float64) []Line {
	if len(tokens) == 0 {
		return nil
	}

	ordered := make([]Token, len(tokens))
	copy(ordered, tokens)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	var lines []Line
	var lineY float64
	for _, t := range ordered {
		if len(lines) == 0 || abs(lineY-t.Y) > tolerance {
			lines = append(lines, Line{Tokens: []Token{t}})
			lineY = t.Y
			continue
		}
		lines[len(lines)-1].Tokens = append(lines[len(lines)-1].Tokens, t)
	}

	for i := range lines {
		sort.SliceStable(lines[i].Tokens, func(a, b int) bool {
			return lines[i].Tokens[a].X < lines[i].Tokens[b].X
		})
	}
	return lines
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
