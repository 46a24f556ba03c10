package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update component fields",
	Long: `Update one or more fields of a component.

Example:
  partsbin update 12 --name "NE555 timer" --storage "Drawer 4"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		id := mustParseID(args[0])

		updates, err := collectUpdates(cmd.Flags())
		if err != nil {
			fatalf("%v", err)
		}
		if len(updates) == 0 {
			fatalf("no fields to update (see 'partsbin update --help')")
		}

		applyUpdates(ctx, id, updates)
	},
}

// updateFlags maps flag names to component fields
var updateFlags = map[string]string{
	"name":           "name",
	"category":       "category",
	"specifications": "specifications",
	"source":         "source",
	"storage":        "storage",
	"quantity":       "quantity",
}

// collectUpdates builds an update map from the flags the user set
func collectUpdates(flags *pflag.FlagSet) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	for flagName, field := range updateFlags {
		if !flags.Changed(flagName) {
			continue
		}
		if field == "quantity" {
			n, err := flags.GetInt(flagName)
			if err != nil {
				return nil, err
			}
			updates[field] = clampQuantity(n)
			continue
		}
		value, err := flags.GetString(flagName)
		if err != nil {
			return nil, err
		}
		updates[field] = value
	}
	return updates, nil
}

var qtyCmd = &cobra.Command{
	Use:   "qty <id> <quantity>",
	Short: "Set a component's quantity (negative values become 0)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustParseID(args[0])
		n, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			fatalf("invalid quantity %q", args[1])
		}
		applyUpdates(context.Background(), id, map[string]interface{}{"quantity": clampQuantity(n)})
	},
}

var storageCmd = &cobra.Command{
	Use:   "storage <id> <location...>",
	Short: "Set where a component is kept",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustParseID(args[0])
		location := strings.TrimSpace(strings.Join(args[1:], " "))
		applyUpdates(context.Background(), id, map[string]interface{}{"storage": location})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a component",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustParseID(args[0])
		if err := store.DeleteComponent(context.Background(), id); err != nil {
			fatalf("%v", err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{"id": id, "deleted": true})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted #%d\n", green("✓"), id)
	},
}

// clampQuantity maps negative quantities to zero
func clampQuantity(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// applyUpdates writes updates and prints the resulting component
func applyUpdates(ctx context.Context, id int64, updates map[string]interface{}) {
	if err := store.UpdateComponent(ctx, id, updates); err != nil {
		fatalf("%v", err)
	}
	c, err := store.GetComponent(ctx, id)
	if err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		printJSON(c)
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Updated #%d\n\n", green("✓"), id)
	printComponent(c)
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(qtyCmd)
	rootCmd.AddCommand(storageCmd)
	rootCmd.AddCommand(deleteCmd)

	updateCmd.Flags().String("name", "", "New name")
	updateCmd.Flags().String("category", "", "New category")
	updateCmd.Flags().String("specifications", "", "New specifications")
	updateCmd.Flags().String("source", "", "New vendor source")
	updateCmd.Flags().String("storage", "", "New storage location")
	updateCmd.Flags().Int("quantity", 0, "New quantity (negative values become 0)")
}
