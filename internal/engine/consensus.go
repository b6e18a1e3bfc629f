package engine

import "github.com/sells-group/statement-cli/internal/model"

// aggregate clusters the candidate pool by cluster key and votes. A cluster
// seen by enough strategies is trusted; beyond that a bounded number of
// singletons is let through so a document only one strategy could read
// still parses. Every arriving candidate counts, including repeats from
// one strategy: repetition is the signal.
//
// Accepted clusters contribute one representative each, the first
// candidate observed for the key, in first-observation order. Returns the
// accepted transactions and the total cluster count.
func aggregate(pool []model.Candidate, minSupport, singletonAllowance int) ([]model.Transaction, int) {
	type cluster struct {
		first model.Transaction
		count int
	}

	byKey := make(map[string]*cluster, len(pool))
	order := make([]string, 0, len(pool))
	for _, c := range pool {
		k := c.ClusterKey()
		if cl, ok := byKey[k]; ok {
			cl.count++
			continue
		}
		byKey[k] = &cluster{first: c.Transaction, count: 1}
		order = append(order, k)
	}

	accepted := make([]model.Transaction, 0, len(order))
	singles := 0
	for _, k := range order {
		cl := byKey[k]
		switch {
		case cl.count >= minSupport:
			accepted = append(accepted, cl.first)
		case cl.count == 1 && singles < singletonAllowance:
			accepted = append(accepted, cl.first)
			singles++
		}
	}
	return accepted, len(order)
}
