package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/steveyegge/partsbin/internal/types"
)

var listSimilarOnly bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all components, flagging probable duplicates",
	Long: `List every component grouped by category.

Components marked ⚠ share a category and name with another component that
has not been marked as not similar. Use 'partsbin similar <id>' to see the
candidates, or 'partsbin review' to walk them all.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rows, err := engine.ListAnnotated(context.Background(), types.ComponentFilter{})
		if err != nil {
			fatalf("%v", err)
		}
		if listSimilarOnly {
			rows = similarOnly(rows)
		}

		if jsonOutput {
			printJSON(rows)
			return
		}
		printRows(rows)
	},
}

func similarOnly(rows []*types.AnnotatedComponent) []*types.AnnotatedComponent {
	out := rows[:0:0]
	for _, row := range rows {
		if row.HasSimilar {
			out = append(out, row)
		}
	}
	return out
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one component",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := store.GetComponent(context.Background(), mustParseID(args[0]))
		if err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(c)
			return
		}
		printComponent(c)
	},
}

// searchFlags holds the raw search command flags
type searchFlags struct {
	categories []string
	minQty     int
	maxQty     int
	storage    string
	after      string
	before     string
	zeroOnly   bool
	inStock    bool
	limit      int
}

var search searchFlags

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search components by text and filters",
	Long: `Search components. The query matches name, specifications, source,
category and storage. Filters narrow the result further.

Examples:
  partsbin search resistor
  partsbin search --category Capacitor --min-qty 10
  partsbin search --storage "Drawer 3" --after 2024-01-01
  partsbin search --zero`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		filter, err := buildFilter(query, search, cmd.Flags().Changed("min-qty"), cmd.Flags().Changed("max-qty"))
		if err != nil {
			fatalf("%v", err)
		}

		rows, err := engine.ListAnnotated(context.Background(), filter)
		if err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(rows)
			return
		}
		printRows(rows)
		fmt.Printf("%d result(s)\n", len(rows))
	},
}

// buildFilter turns search flags into a storage filter
func buildFilter(query string, f searchFlags, hasMin, hasMax bool) (types.ComponentFilter, error) {
	filter := types.ComponentFilter{
		Query:   strings.TrimSpace(query),
		Storage: strings.TrimSpace(f.storage),
		Limit:   f.limit,
	}

	for _, c := range f.categories {
		if c = strings.TrimSpace(c); c != "" {
			filter.Categories = append(filter.Categories, c)
		}
	}

	if hasMin {
		minQty := f.minQty
		filter.MinQuantity = &minQty
	}
	if hasMax {
		maxQty := f.maxQty
		filter.MaxQuantity = &maxQty
	}
	if hasMin && hasMax && f.minQty > f.maxQty {
		return filter, fmt.Errorf("--min-qty (%d) is greater than --max-qty (%d)", f.minQty, f.maxQty)
	}

	if f.zeroOnly && f.inStock {
		return filter, fmt.Errorf("--zero and --in-stock cannot be combined")
	}
	if f.zeroOnly || f.inStock {
		zero := f.zeroOnly
		filter.ZeroQuantity = &zero
	}

	if f.after != "" {
		t, err := parseDate(f.after)
		if err != nil {
			return filter, fmt.Errorf("invalid --after: %w", err)
		}
		filter.CreatedAfter = &t
	}
	if f.before != "" {
		t, err := parseDate(f.before)
		if err != nil {
			return filter, fmt.Errorf("invalid --before: %w", err)
		}
		filter.CreatedBefore = &t
	}

	if f.limit < 0 {
		return filter, fmt.Errorf("--limit cannot be negative")
	}

	return filter, nil
}

// parseDate accepts a date or an RFC 3339 timestamp, in local time
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)

	listCmd.Flags().BoolVar(&listSimilarOnly, "similar-only", false, "Show only components with probable duplicates")

	searchCmd.Flags().StringSliceVarP(&search.categories, "category", "c", nil, "Only these categories (repeatable)")
	searchCmd.Flags().IntVar(&search.minQty, "min-qty", 0, "Minimum quantity")
	searchCmd.Flags().IntVar(&search.maxQty, "max-qty", 0, "Maximum quantity")
	searchCmd.Flags().StringVar(&search.storage, "storage", "", "Storage location contains")
	searchCmd.Flags().StringVar(&search.after, "after", "", "Added on or after (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&search.before, "before", "", "Added before (YYYY-MM-DD)")
	searchCmd.Flags().BoolVar(&search.zeroOnly, "zero", false, "Only components with quantity 0")
	searchCmd.Flags().BoolVar(&search.inStock, "in-stock", false, "Only components with quantity above 0")
	searchCmd.Flags().IntVar(&search.limit, "limit", 0, "Maximum results (0 = no limit)")
}
