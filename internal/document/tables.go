package document

import "sort"

// Table is a detected tabular region: rows of cell text, row 0 first on
// the page.
type Table struct {
	Rows [][]string
}

const (
	// columnGapPts is the minimum horizontal gap treated as a column
	// separator.
	columnGapPts = 30.0

	// gapBucketPts buckets gap centers so slightly ragged columns still
	// vote for the same boundary.
	gapBucketPts = 20.0

	// tableLineTolerance groups tokens into table rows.
	tableLineTolerance = 3.5
)

// Tables detects tabular regions on a page from token alignment. The PDF
// layer exposes no ruled lines, so columns are inferred from horizontal
// gaps that recur across lines: every line votes for the gaps it contains,
// and gap positions present on enough lines become column boundaries.
// Maximal runs of consecutive lines filling at least two columns become
// tables; runs shorter than two rows are discarded.
func (p *Page) Tables() []Table {
	lines := GroupLines(p.Tokens, tableLineTolerance)
	if len(lines) < 2 {
		return nil
	}

	boundaries := columnBoundaries(lines)
	if len(boundaries) == 0 {
		return nil
	}

	cols := len(boundaries) + 1
	var tables []Table
	var run [][]string
	flush := func() {
		if len(run) >= 2 {
			tables = append(tables, Table{Rows: run})
		}
		run = nil
	}

	for _, line := range lines {
		cells := splitByBoundaries(line, boundaries, cols)
		filled := 0
		for _, c := range cells {
			if c != "" {
				filled++
			}
		}
		if filled >= 2 {
			run = append(run, cells)
		} else {
			flush()
		}
	}
	flush()
	return tables
}

// columnBoundaries builds the gap histogram and returns the X positions
// that separate columns, ascending.
func columnBoundaries(lines []Line) []float64 {
	counts := make(map[int]int)
	for _, line := range lines {
		for i := 0; i < len(line.Tokens)-1; i++ {
			left := line.Tokens[i].X + line.Tokens[i].W
			right := line.Tokens[i+1].X
			if right-left < columnGapPts {
				continue
			}
			bucket := int((left + right) / 2 / gapBucketPts)
			counts[bucket]++
		}
	}

	minVotes := len(lines) * 25 / 100
	if minVotes < 2 {
		minVotes = 2
	}

	var raw []float64
	for bucket, n := range counts {
		if n >= minVotes {
			raw = append(raw, float64(bucket)*gapBucketPts+gapBucketPts/2)
		}
	}
	sort.Float64s(raw)

	// Merge boundaries closer than two buckets; ragged columns vote for
	// adjacent buckets.
	var merged []float64
	for _, b := range raw {
		if len(merged) == 0 || b-merged[len(merged)-1] > gapBucketPts*2 {
			merged = append(merged, b)
		}
	}
	return merged
}

// splitByBoundaries assigns a line's tokens to columns by center X and
// joins each column's tokens into one cell.
func splitByBoundaries(line Line, boundaries []float64, cols int) []string {
	cells := make([]string, cols)
	for _, t := range line.Tokens {
		center := t.X + t.W/2
		col := sort.SearchFloat64s(boundaries, center)
		if cells[col] != "" {
			cells[col] += " "
		}
		cells[col] += t.Text
	}
	return cells
}
