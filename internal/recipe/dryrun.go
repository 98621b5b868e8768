package recipe

import (
	"fmt"
	"io"
)

// DryRun prints the steps of rec without executing them.
func DryRun(rec Recipe, w io.Writer) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Recipe %s (%d steps)\n", rec.Name, len(rec.Steps)); err != nil {
		return err
	}
	for i, s := range rec.Steps {
		line := fmt.Sprintf("  %d. %-12s %s", i+1, s.DisplayName(), s.CommandLine())
		if s.Dir != "" {
			line += fmt.Sprintf("  (in %s)", s.Dir)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
