package dax

import "strings"

// formatCall renders `name(arg1, arg2, ...)`. When cfg.FormatOutput is
// set, each argument gets its own line indented by cfg.IndentSize spaces
// per nesting level (spec §4.F "one statement per line, indented
// multi-line call arguments"); otherwise everything collapses to a
// single line.
//
// indentLevel is the nesting depth of THIS call's own argument lines; a
// call built from an argument that is itself a multi-line formatCall
// result must pass indentLevel+1 for that inner call so its argument
// lines land one level deeper than this call's closing paren.
func formatCall(name string, args []string, indentLevel int, cfg Config) string {
	if !cfg.FormatOutput || len(args) == 0 {
		return name + "(" + strings.Join(args, ", ") + ")"
	}
	indent := strings.Repeat(" ", cfg.IndentSize*(indentLevel+1))
	closeIndent := strings.Repeat(" ", cfg.IndentSize*indentLevel)
	return name + "(\n" + indent + strings.Join(args, ",\n"+indent) + "\n" + closeIndent + ")"
}
