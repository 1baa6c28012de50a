// Package engine implements the financial aggregation and reporting
// engine: pure, synchronous functions that turn a set of dated,
// categorized money movements into derived metrics. Nothing in this
// package mutates its inputs or holds state between calls; every result
// is recomputed from the authoritative record set it is given.
package engine

import (
	"sort"

	"bilancio/internal/core"
)

// Select returns the subset of transactions matching the filter. All
// present filter fields are ANDed; date bounds are inclusive on both ends.
// The result order follows the input; callers wanting a particular order
// use one of the sort views below.
func Select(txs []core.Transaction, f core.Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matches(tx, f) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matches(tx core.Transaction, f core.Filter) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if !f.Start.IsZero() && !tx.Date.OnOrAfter(f.Start) {
		return false
	}
	if !f.End.IsZero() && !tx.Date.OnOrBefore(f.End) {
		return false
	}
	return true
}

// SortByDateDesc returns a copy sorted most-recent first, the order tables
// present transactions in. Ties keep their relative input order.
func SortByDateDesc(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
