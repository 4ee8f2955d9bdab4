package ir

import "github.com/k0kubun/pp/v3"

// Dump pretty-prints a Query's full structure for debugging, mirroring
// cst.Dump (same teacher dependency, k0kubun/pp/v3).
func (q *Query) Dump() string {
	return pp.Sprint(q)
}
