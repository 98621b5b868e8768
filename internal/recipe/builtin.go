package recipe

const (
	// CheckRecipe runs the quality checks with the stable toolchain.
	CheckRecipe = "check"
	// CheckTipRecipe runs the same checks with the development toolchain.
	CheckTipRecipe = "check-tip"
)

// checkSteps returns the quality check sequence for the given go toolchain binary.
func checkSteps(toolchain string) []Step {
	return []Step{
		{Name: "format", Command: toolchain, Args: []string{"fmt", "./..."}},
		{Name: "lint", Command: toolchain, Args: []string{"vet", "./..."}},
		{Name: "test", Command: toolchain, Args: []string{"test", "./..."}},
		{Name: "doc", Command: toolchain, Args: []string{"list", "-f", "{{.ImportPath}}: {{.Doc}}", "./..."}},
		{Name: "unused-deps", Command: toolchain, Args: []string{"mod", "tidy", "-diff"}},
		{Name: "update", Command: toolchain, Args: []string{"get", "-u", "./..."}},
		{Name: "audit", Command: "govulncheck", Args: []string{"./..."}},
	}
}

// Builtin returns the recipes available without configuration.
func Builtin() map[string]Recipe {
	return map[string]Recipe{
		CheckRecipe: {
			Name:        CheckRecipe,
			Description: "format, lint, test, doc, unused deps, update and audit (stable toolchain)",
			Steps:       checkSteps("go"),
		},
		CheckTipRecipe: {
			Name:        CheckTipRecipe,
			Description: "format, lint, test, doc, unused deps, update and audit (gotip)",
			Steps:       checkSteps("gotip"),
		},
	}
}
