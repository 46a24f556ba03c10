package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/steveyegge/partsbin/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Walk probable duplicates interactively",
	Long: `Start an interactive session that visits every component flagged as a
probable duplicate, shows its candidates with a merge preview, and accepts:

  merge <id>   fold candidate <id> into the current component
  into <id>    fold the current component into candidate <id>
  not <id>     mark the pair as not similar
  skip         move on
  quit         stop

Type 'help' in the session for the full list.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := review.New(&review.Config{
			Store:  store,
			Engine: engine,
		})
		if err != nil {
			fatalf("failed to start review: %v", err)
		}

		if err := s.Run(context.Background()); err != nil {
			fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
