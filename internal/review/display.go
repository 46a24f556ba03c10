package review

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/steveyegge/partsbin/internal/deduplication"
	"github.com/steveyegge/partsbin/internal/types"
)

// show prints the current component, its candidates and a merge preview for each
func (s *Session) show() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	c := s.current
	fmt.Fprintf(s.out, "\n%s [%d/%d]\n", cyan("Reviewing"), s.pos+1, len(s.queue))
	fmt.Fprintf(s.out, "  %s\n", describe(c))

	fmt.Fprintf(s.out, "\n%s\n", yellow("Candidates:"))
	for _, candidate := range s.candidates {
		preview := deduplication.MergePreview(candidate, c)
		fmt.Fprintf(s.out, "  %s\n", describe(candidate))
		fmt.Fprintf(s.out, "    %s qty %d, specs %q, storage %q\n",
			gray("merge preview:"), preview.Quantity, preview.Specifications, preview.Storage)
	}
	fmt.Fprintln(s.out)
}

func describe(c *types.Component) string {
	line := fmt.Sprintf("#%d %s [%s] qty %d", c.ID, c.Name, c.Category, c.Quantity)
	if c.Specifications != "" {
		line += " | " + c.Specifications
	}
	if c.Storage != "" {
		line += " @ " + c.Storage
	}
	return line
}

func (s *Session) printSummary() {
	green := color.New(color.FgGreen).SprintFunc()
	if s.done {
		fmt.Fprintf(s.out, "\n%s No more probable duplicates.\n", green("✓"))
	}
	fmt.Fprintf(s.out, "Merged %d, marked not similar %d.\n", s.merged, s.suppressed)
}
