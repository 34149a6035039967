package cmd

import (
	"fmt"
	"os"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/aqlanhadi/ledgr/config"
	"github.com/aqlanhadi/ledgr/extractor"
	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
	log     = zerolog.Nop()
	rootCmd = &cobra.Command{
		Use:   "ledgr [file...]",
		Short: "Turn bank statements into a categorized ledger",
		Long: `ledgr extracts transactions from PDF bank statements and CSV/XLSX
exports, cleans them into a single ledger and assigns spending categories.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runExtract(cmd, args)
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging, initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.ledgr.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	log = logger.New(verbose)
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	if err := config.Read(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		os.Exit(1)
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = c

	if err := common.SetLicenseKey(cfg.PDF.LicenseKey); err != nil {
		log.Warn().Err(err).Msg("table detection falls back to row geometry")
	}
	log.Debug().Str("file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func newPipeline(progress common.ProgressFunc) *extractor.Pipeline {
	opts := append(cfg.PipelineOptions(), extractor.WithLogger(log))
	if progress != nil {
		opts = append(opts, extractor.WithProgress(progress))
	}
	return extractor.New(opts...)
}

func newClassifier() (*categorizer.Classifier, error) {
	return cfg.Classifier()
}
