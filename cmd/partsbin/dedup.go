package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/partsbin/internal/deduplication"
	"github.com/steveyegge/partsbin/internal/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar <id>",
	Short: "List probable duplicates of a component",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		id := mustParseID(args[0])

		target, err := store.GetComponent(ctx, id)
		if err != nil {
			fatalf("%v", err)
		}
		candidates, err := engine.FindCandidates(ctx, id)
		if err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(candidates)
			return
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Printf("Candidates for #%d %s:\n", target.ID, target.Name)
		if len(candidates) == 0 {
			fmt.Printf("  %s\n", gray("No probable duplicates"))
			return
		}
		printComponents(candidates)
		fmt.Printf("%s\n", gray(fmt.Sprintf("partsbin merge <source> %d  # fold a candidate into #%d", id, id)))
	},
}

var mergeDryRun bool

var mergeCmd = &cobra.Command{
	Use:   "merge <source-id> <target-id>",
	Short: "Merge a duplicate component into another",
	Long: `Fold the source component into the target and delete the source.

The target keeps its name, category, source and creation time. Quantities
are added. Specifications and storage are combined as "target; source"
unless the source value is empty or identical.

Use --dry-run to print the merged result without changing anything.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		sourceID := mustParseID(args[0])
		targetID := mustParseID(args[1])

		if mergeDryRun {
			preview, err := previewMerge(ctx, sourceID, targetID)
			if err != nil {
				fatalf("%v", err)
			}
			if jsonOutput {
				printJSON(preview)
				return
			}
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("%s merging #%d into #%d would give:\n", yellow("Dry run:"), sourceID, targetID)
			printComponent(preview)
			return
		}

		merged, err := engine.Merge(ctx, sourceID, targetID)
		if err != nil {
			if errors.Is(err, deduplication.ErrPartialMerge) {
				fatalf("%v\n%s", err, partialMergeHint(sourceID, targetID))
			}
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(merged)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Merged #%d into #%d\n\n", green("✓"), sourceID, targetID)
		printComponent(merged)
	},
}

// partialMergeHint explains a failed source delete. The merge transaction
// has been rolled back by then.
func partialMergeHint(sourceID, targetID int64) string {
	return fmt.Sprintf("Deleting #%d failed, so the merge was rolled back. Check #%d and #%d with 'partsbin show' before retrying.",
		sourceID, sourceID, targetID)
}

// previewMerge validates the pair like Merge does and returns the would-be target
func previewMerge(ctx context.Context, sourceID, targetID int64) (*types.Component, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: cannot merge component %d into itself", deduplication.ErrInvalidArgument, sourceID)
	}
	source, err := store.GetComponent(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := store.GetComponent(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return deduplication.MergePreview(source, target), nil
}

var notSimilarCmd = &cobra.Command{
	Use:   "not-similar <id> <id>",
	Short: "Mark two components as not duplicates",
	Long: `Record that two components are different parts. The pair is never
flagged again, in either order. Marking a pair twice has no effect.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustParseID(args[0])
		b := mustParseID(args[1])

		if err := engine.Suppress(context.Background(), a, b); err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{"a": a, "b": b, "suppressed": true})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s #%d and #%d will no longer be flagged as duplicates\n", green("✓"), a, b)
	},
}

var exclusionsCmd = &cobra.Command{
	Use:   "exclusions [list|prune]",
	Short: "List or prune not-similar pairs",
	Long: `List every pair marked as not similar, or prune pairs that reference
components which no longer exist (for example after a merge).`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"list", "prune"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		action := "list"
		if len(args) == 1 {
			action = args[0]
		}

		switch action {
		case "list":
			pairs, err := engine.ListExclusions(ctx)
			if err != nil {
				fatalf("%v", err)
			}
			if jsonOutput {
				printJSON(pairs)
				return
			}
			gray := color.New(color.FgHiBlack).SprintFunc()
			if len(pairs) == 0 {
				fmt.Printf("%s\n", gray("No exclusions"))
				return
			}
			for _, p := range pairs {
				fmt.Printf("  #%-6d #%-6d %s\n", p.Low, p.High, gray(p.CreatedAt.Local().Format("2006-01-02 15:04")))
			}

		case "prune":
			removed, err := engine.PruneExclusions(ctx)
			if err != nil {
				fatalf("%v", err)
			}
			if jsonOutput {
				printJSON(map[string]int{"removed": removed})
				return
			}
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("%s Removed %d stale exclusion(s)\n", green("✓"), removed)

		default:
			fatalf("unknown action %q (expected list or prune)", action)
		}
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show merge history",
	Long:  `Show recorded merges, newest first. With an id, only merges into or out of that component.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var id int64
		if len(args) == 1 {
			id = mustParseID(args[0])
		}

		records, err := engine.MergeHistory(context.Background(), id, historyLimit)
		if err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(records)
			return
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		if len(records) == 0 {
			fmt.Printf("%s\n", gray("No merges recorded"))
			return
		}
		for _, r := range records {
			fmt.Printf("  %s  #%d %q (qty %d) → #%d\n",
				gray(r.MergedAt.Local().Format("2006-01-02 15:04")), r.SourceID, r.SourceName, r.SourceQuantity, r.TargetID)
		}
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(notSimilarCmd)
	rootCmd.AddCommand(exclusionsCmd)
	rootCmd.AddCommand(historyCmd)

	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Show the result without merging")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum records to show (0 = all)")
}
