package ir

// topologicalSort orders items by dependency using three-color DFS, the
// same shape as the teacher's schema/tsort.go topologicalSort[T]. Unlike
// the teacher (which silently returns an empty slice on a cycle, since a
// DDL ordering failure there is recovered by falling back to declaration
// order), a cyclic calculation dependency here is a Build error (spec §3
// "the dependency graph must be acyclic"), so this variant reports the
// first node found on a cycle instead of discarding the result.
func topologicalSort[T any](items []T, dependencies map[string][]string, getID func(T) string) (sorted []T, cycleAt string, ok bool) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	itemMap := make(map[string]T)

	for _, item := range items {
		itemMap[getID(item)] = item
	}

	var cycleNode string
	var visit func(string) bool
	visit = func(id string) bool {
		if visiting[id] {
			cycleNode = id
			return false
		}
		if visited[id] {
			return true
		}
		visiting[id] = true
		for _, dep := range dependencies[id] {
			if _, exists := itemMap[dep]; exists {
				if !visit(dep) {
					return false
				}
			}
		}
		visiting[id] = false
		visited[id] = true
		if item, exists := itemMap[id]; exists {
			sorted = append(sorted, item)
		}
		return true
	}

	for _, item := range items {
		id := getID(item)
		if !visited[id] {
			if !visit(id) {
				return nil, cycleNode, false
			}
		}
	}
	return sorted, "", true
}

// OrderCalculations topologically sorts calculations by their expression
// dependencies on other calculation names, for DEFINE block ordering
// (spec §4.C "dependencies" / §4.F "DEFINE"). Returns ok=false and the
// offending calculation name when a cycle is detected.
func OrderCalculations(calcs []Calculation) (sorted []Calculation, cycleAt string, ok bool) {
	deps := make(map[string][]string, len(calcs))
	names := make(map[string]bool, len(calcs))
	for _, c := range calcs {
		names[c.Name] = true
	}
	for _, c := range calcs {
		deps[c.Name] = calcDependencies(c.Expression, names)
	}
	return topologicalSort(calcs, deps, func(c Calculation) string { return c.Name })
}

func calcDependencies(e Expr, names map[string]bool) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch e.Kind {
		case ExprMeasureRef:
			if names[e.MeasureName] {
				out = append(out, e.MeasureName)
			}
		case ExprMemberRef:
			if names[e.RefMember] {
				out = append(out, e.RefMember)
			}
		case ExprBinary:
			walk(*e.Left)
			walk(*e.Right)
		case ExprUnary:
			walk(*e.Operand)
		case ExprFunctionCall:
			for _, a := range e.Args {
				walk(a)
			}
		case ExprIif:
			walk(*e.IifCond)
			walk(*e.IifThen)
			walk(*e.IifElse)
		case ExprCase:
			for _, arm := range e.CaseArms {
				walk(arm.Cond)
				walk(arm.Then)
			}
			if e.CaseElse != nil {
				walk(*e.CaseElse)
			}
		}
	}
	walk(e)
	return out
}
