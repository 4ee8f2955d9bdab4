package ir

// Dependencies is the result of Query.Dependencies: the distinct names the
// generator needs to resolve DEFINE block ordering and measure/dimension
// projection (spec §4.C "dependency extraction").
type Dependencies struct {
	Measures     []string
	Dimensions   []string
	Calculations []string
}

// Dependencies extracts the distinct measure, dimension, and calculation
// names a query touches, in first-seen order.
func (q *Query) Dependencies() Dependencies {
	var d Dependencies
	seenM, seenD, seenC := map[string]bool{}, map[string]bool{}, map[string]bool{}

	for _, m := range q.Measures {
		if !seenM[m.Name] {
			seenM[m.Name] = true
			d.Measures = append(d.Measures, m.Name)
		}
	}
	for _, dim := range q.Dimensions {
		key := dim.Hierarchy.Table + "." + dim.Level.Name
		if !seenD[key] {
			seenD[key] = true
			d.Dimensions = append(d.Dimensions, key)
		}
	}
	for _, c := range q.Calculations {
		if !seenC[c.Name] {
			seenC[c.Name] = true
			d.Calculations = append(d.Calculations, c.Name)
		}
	}
	return d
}
