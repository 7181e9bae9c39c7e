package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/examsift/examsift/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "examsift",
	Short: "Examsift - Extract structured exam questions from OCR'd dumps",
	Long: `Examsift turns OCR'd certification-exam dumps into structured,
reviewable question banks.

It cleans known OCR corruption and dump-site noise, finds question
boundaries, separates community discussion from question content, parses
numbered questions with lettered answer options, attaches voted community
answers, and scores every record so low-confidence extractions can be
filtered out instead of silently trusted.

Optionally an LLM provider proposes its own answer per question, and a
small review server lets you inspect and correct the results.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Examsift.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("examsift v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.examsift/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search the home config dir, then the working directory
		viper.AddConfigPath(home + "/.examsift")
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match EXAMSIFT_*
	viper.SetEnvPrefix("EXAMSIFT")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig returns the effective configuration: documented defaults with
// the values of whatever config file viper found layered on top.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Structured records go to stderr so files
// and stdout stay machine-readable; info level requires --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
