// Package document normalizes raw PDF bytes into the page content model the
// extraction strategies consume: per-page plain text plus positioned word
// tokens in reading order.
package document

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Token is a word-level text run with its page-space position. X grows
// rightward, Y grows upward (PDF coordinates), W is the rendered width.
type Token struct {
	Text     string
	X, Y, W  float64
	FontSize float64
}

// Page holds one page's tokens in reading order plus the plain text
// synthesized from them.
type Page struct {
	Number int
	Tokens []Token
	Text   string
}

// Document is a fully loaded statement ready for extraction.
type Document struct {
	Pages []Page
}

const (
	// charJoinGap is the minimum horizontal gap, as a fraction of font
	// size, that separates two character runs into distinct words.
	charJoinGap = 0.3

	// textLineTolerance groups character runs into lines when
	// synthesizing plain text.
	textLineTolerance = 2.0

	// wideGapPts is the horizontal gap above which synthesized text gets
	// a double space, keeping label/value pairs splittable downstream.
	wideGapPts = 18.0
)

// Load parses raw PDF bytes into the page content model. This is the only
// fatal path in the core: bytes that are not an openable document return an
// error. Pages whose content streams are malformed contribute zero tokens.
func Load(data []byte) (doc *Document, err error) {
	// The reader panics on some malformed cross-reference tables; those
	// bytes are still just "not a parseable document" to the caller.
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = eris.Errorf("document: open pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "document: open pdf")
	}

	doc = &Document{}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		runs := pageRuns(page, i)
		tokens := assembleWords(runs)
		doc.Pages = append(doc.Pages, Page{
			Number: i,
			Tokens: tokens,
			Text:   synthesizeText(tokens),
		})
	}
	return doc, nil
}

// pageRuns pulls the raw character runs off a page. Content parsing panics
// on some malformed streams; such pages yield no runs.
func pageRuns(page pdf.Page, num int) (texts []pdf.Text) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Debug("document: unreadable page content",
				zap.Int("page", num), zap.Any("cause", rec))
			texts = nil
		}
	}()

	content := page.Content()
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		texts = append(texts, t)
	}
	return texts
}

// assembleWords merges adjacent character runs into word tokens and orders
// them top-to-bottom, left-to-right.
func assembleWords(texts []pdf.Text) []Token {
	if len(texts) == 0 {
		return nil
	}

	rows := groupRuns(texts, textLineTolerance)

	var tokens []Token
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var cur *Token
		for _, t := range row {
			threshold := charJoinGap * t.FontSize
			if threshold < 2.0 {
				threshold = 2.0
			}
			if cur != nil && t.X-(cur.X+cur.W) <= threshold {
				cur.Text += t.S
				cur.W = t.X + t.W - cur.X
				continue
			}
			if cur != nil {
				tokens = append(tokens, *cur)
			}
			cur = &Token{Text: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize}
		}
		if cur != nil {
			tokens = append(tokens, *cur)
		}
	}
	return tokens
}

// groupRuns buckets character runs into visual rows by Y proximity and
// returns the rows top of page first.
func groupRuns(texts []pdf.Text, tolerance float64) [][]pdf.Text {
	ordered := make([]pdf.Text, len(texts))
	copy(ordered, texts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y > ordered[j].Y // higher Y = higher on page
		}
		return ordered[i].X < ordered[j].X
	})

	var rows [][]pdf.Text
	var rowY float64
	for _, t := range ordered {
		if len(rows) == 0 || rowY-t.Y > tolerance {
			rows = append(rows, []pdf.Text{t})
			rowY = t.Y
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], t)
	}
	return rows
}

// synthesizeText renders tokens back into plain text. Wide horizontal gaps
// become double spaces so labeled figures stay splittable on `\s{2,}`.
func synthesizeText(tokens []Token) string {
	lines := GroupLines(tokens, textLineTolerance)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, tok := range line.Tokens {
			if j > 0 {
				gap := tok.X - (line.Tokens[j-1].X + line.Tokens[j-1].W)
				if gap > wideGapPts {
					b.WriteString("  ")
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

// PlainText concatenates every page's text.
func (d *Document) PlainText() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// SampleText returns the text of the first n pages, used for template
// anchor matching.
func (d *Document) SampleText(n int) string {
	if n > len(d.Pages) {
		n = len(d.Pages)
	}
	parts := make([]string, 0, n)
	for _, p := range d.Pages[:n] {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// LikelyScanned reports whether the document has almost no extractable text
// across its first three pages, the marker for image-only scans.
func (d *Document) LikelyScanned(charThreshold int) bool {
	if len(d.Pages) == 0 {
		return false
	}
	sample := d.Pages
	if len(sample) > 3 {
		sample = sample[:3]
	}
	chars := 0
	for _, p := range sample {
		chars += len(p.Text)
	}
	return chars < charThreshold
}

// Bounds returns the horizontal extent of a page's tokens. Ok is false for
// a page without tokens.
func (p *Page) Bounds() (minX, maxX float64, ok bool) {
	if len(p.Tokens) == 0 {
		return 0, 0, false
	}
	minX, maxX = p.Tokens[0].X, p.Tokens[0].X+p.Tokens[0].W
	for _, t := range p.Tokens[1:] {
		if t.X < minX {
			minX = t.X
		}
		if t.X+t.W > maxX {
			maxX = t.X + t.W
		}
	}
	return minX, maxX, true
}

// Halves renders the page's left and right halves as separate text, split
// at the horizontal midpoint. Two-column statements interleave their
// columns in reading order; rendering each half alone restores every
// column's own line structure.
func (p *Page) Halves() (left, right string) {
	minX, maxX, ok := p.Bounds()
	if !ok {
		return "", ""
	}
	mid := (minX + maxX) / 2

	var lt, rt []Token
	for _, t := range p.Tokens {
		if t.X < mid {
			lt = append(lt, t)
		} else {
			rt = append(rt, t)
		}
	}
	return synthesizeText(lt), synthesizeText(rt)
}
