package csl

import "github.com/benz9527/csl/lib/infra"

// Comparator reports whether a sorts strictly before b. A valid comparator
// is a strict weak ordering: it must never report true for a == b, and for
// any NaN-valued float key it must report false in both directions (which
// the ordinary < operator already does).
type Comparator[K infra.NumericKey] func(a, b K) bool

func ascending[K infra.NumericKey]() Comparator[K] {
	return func(a, b K) bool { return a < b }
}

func equalUnderComparator[K infra.NumericKey](cmp Comparator[K], a, b K) bool {
	return !cmp(a, b) && !cmp(b, a)
}
