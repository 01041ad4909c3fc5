package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/logging"
	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/pipeline"
)

// Version is set at build time
var Version = "dev"

const metricsNamespace = "medqa"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "medqa",
	Short: "medqa - Medical question answering over a knowledge graph",
	Long: `medqa answers Chinese medical questions from a Neo4j knowledge graph.

It recognizes diseases, symptoms, drugs and other entities in a question,
classifies what is being asked, and answers either with a multi-hop
reasoning chain or with templated graph lookups. An optional LLM turns
retrieved graph facts into a conversational answer.

medqa is not a doctor. Answers are informational only.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve and chat.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "medqa %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.medqa/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("lexicon-dir", "", "directory holding the entity dictionaries")
	rootCmd.PersistentFlags().String("graph-uri", "", "Neo4j bolt URI")
	rootCmd.PersistentFlags().String("llm-provider", "", "LLM provider (openai, deepseek, anthropic, ollama)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "disable the graph result cache")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("lexicon.dir", rootCmd.PersistentFlags().Lookup("lexicon-dir"))
	_ = viper.BindPFlag("graph.uri", rootCmd.PersistentFlags().Lookup("graph-uri"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("llm-provider"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".medqa"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configure(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// app is everything a command needs to answer questions
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *metrics.Collector
	pipeline *pipeline.Pipeline
	close    func(context.Context) error
}

// newApp loads the configuration and builds the engine
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	m := metrics.NewCollector(metricsNamespace)
	p, closeGraph, err := pipeline.Build(ctx, cfg, m, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		pipeline: p,
		close:    closeGraph,
	}, nil
}

// shutdown releases the graph connection and flushes logs
func (a *app) shutdown(ctx context.Context) {
	if err := a.close(ctx); err != nil {
		a.logger.Warn("close graph", zap.Error(err))
	}
	_ = a.logger.Sync()
}
