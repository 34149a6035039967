package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	categorizeAmount string
	categoriesJSON   bool
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize <description>",
	Short: "Shows the category of a transaction description",
	Long: `Classifies a description the way extracted transactions are classified
and lists up to three alternative categories with their confidence.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, err := newClassifier()
		if err != nil {
			return err
		}
		desc := strings.Join(args, " ")

		category := classifier.Classify(desc)
		if categorizeAmount != "" {
			amount, err := decimal.NewFromString(categorizeAmount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", categorizeAmount, err)
			}
			category = classifier.ClassifyAmount(desc, amount)
		}

		printSuggestions(cmd.OutOrStdout(), category, classifier.Suggest(desc))
		return nil
	},
}

func printSuggestions(w io.Writer, category string, suggestions []categorizer.Suggestion) {
	fmt.Fprintf(w, "Category: %s\n", category)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "Suggestions:")
	for _, s := range suggestions {
		fmt.Fprintf(w, "  %-16s %3.0f%%\n", s.Category, s.Confidence*100)
	}
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Lists the registered categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, err := newClassifier()
		if err != nil {
			return err
		}
		if categoriesJSON {
			return ledger.WriteJSON(cmd.OutOrStdout(), classifier.Categories())
		}
		printCategories(cmd.OutOrStdout(), classifier.Categories())
		return nil
	},
}

func printCategories(w io.Writer, cats []categorizer.Category) {
	for _, c := range cats {
		fmt.Fprintf(w, "%-16s %s  %s\n", c.Name, c.Color, strings.Join(c.Keywords, ", "))
	}
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(categoriesCmd)

	categorizeCmd.Flags().StringVarP(&categorizeAmount, "amount", "a", "", "transaction amount, used when no keyword matches")
	categoriesCmd.Flags().BoolVar(&categoriesJSON, "json", false, "print the registry as JSON")
}
