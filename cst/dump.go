package cst

import "github.com/k0kubun/pp/v3"

// Dump pretty-prints node's full structure for debugging (SPEC_FULL
// ambient stack: "Debug/inspection", teacher dependency k0kubun/pp/v3).
// Never used by the translation pipeline itself — only by tests and by
// an embedding caller's own debug logging.
func Dump(n Node) string {
	return pp.Sprint(n)
}
