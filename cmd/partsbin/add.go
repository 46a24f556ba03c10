package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/partsbin/internal/parser"
	"github.com/steveyegge/partsbin/internal/types"
)

var addFile string

var addCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Add components from free text",
	Long: `Parse a free-text description into a component and add it to the inventory.

With --file, every non-empty line of the file (or stdin for "-") is parsed and added.

Examples:
  partsbin add 10 pcs 10k resistor 1/4W, digikey.com:/product/123
  partsbin add --file parts.txt`,
	Annotations: map[string]string{createsDatabase: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var lines []string
		if addFile != "" {
			var err error
			lines, err = readLines(addFile)
			if err != nil {
				fatalf("%v", err)
			}
		} else {
			if len(args) == 0 {
				fatalf("provide a description or --file")
			}
			lines = []string{strings.Join(args, " ")}
		}

		p := newParser(cfg, logger)
		components, err := parser.ParseBatch(ctx, p, lines, cfg.Parser.Concurrency)
		if err != nil {
			fatalf("failed to parse: %v", err)
		}

		for _, c := range components {
			if err := store.CreateComponent(ctx, c); err != nil {
				fatalf("failed to add %q: %v", c.Name, err)
			}
		}

		if jsonOutput {
			printJSON(components)
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		for _, c := range components {
			fmt.Printf("%s Added #%d %s [%s] qty %d\n", green("✓"), c.ID, c.Name, c.Category, c.Quantity)
		}
	},
}

var parseCmd = &cobra.Command{
	Use:         "parse <text...>",
	Short:       "Show how a description would be parsed without saving it",
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{skipsDatabase: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		p := newParser(cfg, logger)
		c, err := p.Parse(context.Background(), strings.Join(args, " "))
		if err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(c)
			return
		}
		printParsed(c)
	},
}

func printParsed(c *types.Component) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("  Name:           %s\n", cyan(c.Name))
	fmt.Printf("  Category:       %s\n", c.Category)
	fmt.Printf("  Quantity:       %d\n", c.Quantity)
	fmt.Printf("  Specifications: %s\n", orDash(c.Specifications))
	fmt.Printf("  Source:         %s\n", orDash(c.Source))
}

// readLines returns the non-empty lines of path ("-" reads stdin)
func readLines(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(parseCmd)
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Read one description per line from a file (- for stdin)")
}
