package reconcile

import (
	"context"
	"sort"
)

// hintPenalty is the objective cost, in cents, of contradicting one
// hint. Small enough that any closer match to the expected delta wins,
// large enough to break ties toward the hints.
const hintPenalty int64 = 1

// solve picks a sign per magnitude minimizing
//
//	|sum(sign*mag) - expected| + hintPenalty * disagreements
//
// by depth-first branch and bound over cents. The hint assignment seeds
// the incumbent, so the result never reconciles worse than the
// heuristic. Returns the best signs found and whether the search ran to
// completion; false means the node budget or context expired first.
func solve(ctx context.Context, mags []int64, hints []int8, expected int64, maxNodes int) ([]int8, bool) {
	n := len(mags)
	best := make([]int8, n)
	copy(best, hints)
	bestObj := objective(mags, hints, best, expected)
	if bestObj == 0 {
		return best, true
	}

	// Largest magnitudes first: the deviation bound tightens fastest
	// when the big swings are fixed early.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return mags[order[a]] > mags[order[b]] })

	suffix := make([]int64, n+1)
	for d := n - 1; d >= 0; d-- {
		suffix[d] = suffix[d+1] + mags[order[d]]
	}

	s := &bnb{
		ctx:      ctx,
		mags:     mags,
		hints:    hints,
		order:    order,
		suffix:   suffix,
		expected: expected,
		maxNodes: maxNodes,
		cur:      make([]int8, n),
		best:     best,
		bestObj:  bestObj,
	}
	s.dfs(0, 0, 0)
	return s.best, !s.aborted
}

type bnb struct {
	ctx      context.Context
	mags     []int64
	hints    []int8
	order    []int
	suffix   []int64
	expected int64
	maxNodes int
	visited  int
	aborted  bool
	cur      []int8
	best     []int8
	bestObj  int64
}

func (s *bnb) dfs(depth int, sum, penalty int64) {
	if s.aborted {
		return
	}
	s.visited++
	if s.visited&2047 == 0 && s.ctx.Err() != nil {
		s.aborted = true
		return
	}
	if s.visited > s.maxNodes {
		s.aborted = true
		return
	}

	if depth == len(s.order) {
		if obj := abs64(sum-s.expected) + penalty; obj < s.bestObj {
			s.bestObj = obj
			copy(s.best, s.cur)
		}
		return
	}

	// Remaining items can move the sum by at most the suffix total, and
	// penalties already paid never come back.
	lb := abs64(sum-s.expected) - s.suffix[depth]
	if lb < 0 {
		lb = 0
	}
	if lb+penalty >= s.bestObj {
		return
	}

	idx := s.order[depth]
	h := s.hints[idx]
	s.branch(depth, idx, h, sum, penalty)
	s.branch(depth, idx, -h, sum, penalty+hintPenalty)
}

func (s *bnb) branch(depth, idx int, sign int8, sum, penalty int64) {
	if s.aborted {
		return
	}
	s.cur[idx] = sign
	s.dfs(depth+1, sum+int64(sign)*s.mags[idx], penalty)
}

func objective(mags []int64, hints, signs []int8, expected int64) int64 {
	var sum, pen int64
	for i := range mags {
		sum += int64(signs[i]) * mags[i]
		if signs[i] != hints[i] {
			pen += hintPenalty
		}
	}
	return abs64(sum-expected) + pen
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
