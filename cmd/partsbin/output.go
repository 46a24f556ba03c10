package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/steveyegge/partsbin/internal/types"
)

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("failed to encode JSON: %v", err)
	}
}

// parseID parses a component id argument
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid component id %q", arg)
	}
	return id, nil
}

func mustParseID(arg string) int64 {
	id, err := parseID(arg)
	if err != nil {
		fatalf("%v", err)
	}
	return id
}

// printComponent prints one component in detail
func printComponent(c *types.Component) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("%s %s\n", cyan(fmt.Sprintf("#%d", c.ID)), c.Name)
	fmt.Printf("  Category:       %s\n", c.Category)
	fmt.Printf("  Quantity:       %d\n", c.Quantity)
	fmt.Printf("  Specifications: %s\n", orDash(c.Specifications))
	fmt.Printf("  Source:         %s\n", orDash(c.Source))
	fmt.Printf("  Storage:        %s\n", orDash(c.Storage))
	fmt.Printf("  Added:          %s\n", gray(c.CreatedAt.Local().Format("2006-01-02 15:04:05")))
}

// printRows prints one line per component, marking probable duplicates
func printRows(rows []*types.AnnotatedComponent) {
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(rows) == 0 {
		fmt.Printf("%s\n", gray("No components"))
		return
	}

	category := ""
	for _, row := range rows {
		if row.Category != category {
			category = row.Category
			fmt.Printf("\n%s\n", color.New(color.Bold).Sprint(category))
		}

		marker := " "
		if row.HasSimilar {
			marker = yellow("⚠")
		}
		fmt.Printf("  %s %5d  %-32s qty %-5d %s\n", marker, row.ID, truncate(row.Name, 32), row.Quantity, gray(row.Storage))
	}
	fmt.Println()
}

// printComponents prints one line per component
func printComponents(components []*types.Component) {
	rows := make([]*types.AnnotatedComponent, len(components))
	for i, c := range components {
		rows[i] = &types.AnnotatedComponent{Component: *c}
	}
	printRows(rows)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-1]) + "…"
}
