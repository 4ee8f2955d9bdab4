package ir

import "fmt"

// Validate runs the read-only structural checks of spec §4.C: unknown
// measure references in measure filters, cyclic calculation
// dependencies, and empty Specific selections (the latter is actually
// unreachable since NewSpecificSelection enforces it at construction, but
// a defensive check stays here since IR can also be built by hand, e.g.
// in tests).
func (q *Query) Validate() []Issue {
	var issues []Issue

	known := make(map[string]bool, len(q.Measures)+len(q.Calculations))
	for _, m := range q.Measures {
		known[m.Name] = true
	}
	for _, c := range q.Calculations {
		if c.Kind == CalcMeasure {
			known[c.Name] = true
		}
	}

	for _, f := range q.Filters {
		if f.Kind == KindMeasureFilter && !known[f.Measure] {
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("measure filter references unknown measure %q", f.Measure),
				Severity: SeverityError,
			})
		}
	}

	for _, d := range q.Dimensions {
		if d.Members.Kind == SelectSpecific && len(d.Members.Members) == 0 {
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("dimension %s.%s has an empty Specific member selection", d.Hierarchy.Table, d.Level.Name),
				Severity: SeverityError,
			})
		}
	}

	if _, cycleAt, ok := OrderCalculations(q.Calculations); !ok {
		issues = append(issues, Issue{
			Message:  fmt.Sprintf("cyclic calculation dependency involving %q", cycleAt),
			Severity: SeverityError,
		})
	}

	if len(q.Dimensions) > 6 {
		issues = append(issues, Issue{
			Message:  fmt.Sprintf("query projects %d dimensions; DAX tables with this many group columns are often slow", len(q.Dimensions)),
			Severity: SeverityWarning,
		})
	}

	return issues
}

// Errors returns only the error-severity issues from Validate.
func (q *Query) Errors() []Issue {
	var out []Issue
	for _, i := range q.Validate() {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}
