package cst

// Transform performs a bottom-up (post-order) rewrite of node: every child
// is transformed first, then fn is applied to the node with its (possibly
// rewritten) children. If none of a node's children changed and fn returns
// its input unchanged, the original node reference is preserved rather
// than allocating a copy — this is the "shared subtrees in unchanged
// branches" property spec §9 calls for.
//
// Grounded on the teacher's schema/normalize.go walk-and-rebuild shape.
func Transform(node Node, fn func(Node) Node) Node {
	if node == nil {
		return nil
	}
	children := node.Children()
	changed := false
	newChildren := make([]Node, len(children))
	for i, c := range children {
		rewritten := Transform(c, fn)
		newChildren[i] = rewritten
		if rewritten != c {
			changed = true
		}
	}
	current := node
	if changed {
		current = node.WithChildren(newChildren)
	}
	result := fn(current)
	return result
}

// Walk visits node and every descendant in pre-order, calling visit on
// each. It suits read-only passes that don't need to rebuild the tree.
func Walk(node Node, visit func(Node)) {
	if node == nil {
		return
	}
	visit(node)
	for _, c := range node.Children() {
		Walk(c, visit)
	}
}
