package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/medqa/internal/model"
)

// secretEnv lists extra environment variables for keys that are left out of
// the generated config file. The first variable that is set wins.
var secretEnv = map[string][]string{
	"graph.password":       {"MEDQA_GRAPH_PASSWORD", "NEO4J_PASSWORD"},
	"llm.api_key":          {"MEDQA_LLM_API_KEY", "DEEPSEEK_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.base_url":         {"MEDQA_LLM_BASE_URL", "OLLAMA_BASE_URL"},
	"cache.redis.password": {"MEDQA_CACHE_REDIS_PASSWORD", "REDIS_PASSWORD"},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage medqa configuration",
	Long: `Manage medqa configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (MEDQA_*, e.g. MEDQA_GRAPH_URI)
3. Config file (~/.medqa/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, environment variables and flags. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(masked(cfg))
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.medqa/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}
		configPath := filepath.Join(home, ".medqa", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the effective configuration:\n")
		fmt.Fprintf(out, "  medqa config show\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// configure registers defaults and environment lookups on v. Environment
// variables match MEDQA_<KEY>, e.g. MEDQA_GRAPH_URI for graph.uri.
func configure(v *viper.Viper) error {
	v.SetEnvPrefix("MEDQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindSecrets(v)
	return setDefaults(v, model.DefaultConfig())
}

func loadConfig() (*model.Config, error) {
	return loadConfigFrom(viper.GetViper())
}

// loadConfigFrom decodes the merged settings of v onto the defaults and
// validates the result
func loadConfigFrom(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every field of cfg as a viper default so that
// environment variables resolve for keys absent from the config file
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setTree(v, "", tree)
	return nil
}

func setTree(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setTree(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

func bindSecrets(v *viper.Viper) {
	for key, envs := range secretEnv {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// masked returns a copy of cfg safe to print
func masked(cfg *model.Config) *model.Config {
	out := *cfg
	mask := func(s *string) {
		if *s != "" {
			*s = "********"
		}
	}
	mask(&out.Graph.Password)
	mask(&out.LLM.APIKey)
	mask(&out.Cache.Redis.Password)
	return &out
}

// writeDefaultConfig creates path with the default configuration. An
// existing file is never overwritten.
func writeDefaultConfig(path string) (err error) {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'medqa config show' to view it, or delete it first to recreate", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# medqa configuration\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (MEDQA_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")
	printf("%s", yamlData)
	printf("\n# Secrets are best kept in the environment:\n")
	printf("#   export MEDQA_GRAPH_PASSWORD=...\n")
	printf("#   export DEEPSEEK_API_KEY=sk-...\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
	return err
}
