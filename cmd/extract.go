package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/ledgr/extractor"
	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outputPath      string
	transactionOnly bool
	summaryOnly     bool
	showProgress    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|folder]...",
	Short: "Extracts statement(s) into a ledger",
	Long: `Extracts the given statements and exports into one ledger.

PDF and text files go through bank format detection and transaction
parsing; CSV and XLSX files need Date, Description and Amount columns.
Every record is cleaned and categorized before it is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	var docs []common.Document
	for _, path := range args {
		found, err := extractor.CollectDocuments(path)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Int("files", len(found)).Msg("scanning")
		docs = append(docs, found...)
	}

	var progress common.ProgressFunc
	if showProgress {
		progress = func(message string, percent int, detail string) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s (%s)\n", percent, message, detail)
		}
	}

	classifier, err := newClassifier()
	if err != nil {
		return err
	}

	res, err := extractor.Process(context.Background(), newPipeline(progress), classifier, docs)
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		log.Warn().Err(f.Err).Str("document", f.Document).Msg("document skipped")
	}
	log.Info().
		Int("transactions", len(res.Transactions)).
		Int("removed", res.Issues.RemovedRows).
		Int("duplicates", len(res.Issues.Duplicates)).
		Msg("ledger ready")

	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return writeResult(w, res, outputFormat(outputPath, cfg.Output.Format))
}

// outputFormat prefers the extension of the output file over the configured
// format.
func outputFormat(path, configured string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	}
	if configured == "" {
		return "json"
	}
	return configured
}

func writeResult(w io.Writer, res extractor.Result, format string) error {
	if format == "csv" {
		return ledger.WriteCSV(w, res.Transactions)
	}
	return ledger.WriteJSON(w, extractor.Shape(res, transactionOnly, summaryOnly))
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the ledger to a file instead of stdout")
	extractCmd.Flags().StringP("format", "f", "", "output format: json or csv")
	extractCmd.Flags().BoolVar(&transactionOnly, "transaction-only", false, "print only the transactions")
	extractCmd.Flags().BoolVar(&summaryOnly, "summary-only", false, "print only the summary and issue report")
	extractCmd.Flags().BoolVarP(&showProgress, "progress", "p", false, "report progress on stderr")
	viper.BindPFlag("output.format", extractCmd.Flags().Lookup("format"))
}
