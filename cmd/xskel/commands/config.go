package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quenby/xskel/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage xskel configuration",
	Long: `Manage xskel configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (XSKEL_* prefix)
3. Project config (xskel.toml, searched upward from the working directory)
4. User config (~/.xskel/xskel.toml)
5. System config (/etc/xskel/xskel.toml)
6. Default values

An explicit --config FILE replaces the cascade: that file is loaded
over the built-in defaults and nothing else.

Examples:
  xskel config show               # Effective configuration as TOML
  xskel config show --json        # Same, as JSON
  xskel config init               # Write ~/.xskel/xskel.toml with defaults
  xskel config validate           # Check the effective configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Display the configuration after merging all sources",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default configuration file",
	Long: `Write a configuration file populated with the defaults.

Without PATH the user config (~/.xskel/xskel.toml) is written. An
existing file is kept unless --force is given; --force rotates the
old file into a .back1 backup first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Long:  "Validate the configuration after merging all sources",
	RunE:  runConfigValidate,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file (keeps a backup)")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		// Round-trip through TOML so the JSON keys match the file syntax
		text, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		var tree map[string]interface{}
		if err := toml.Unmarshal(text, &tree); err != nil {
			return fmt.Errorf("failed to rebuild config tree: %w", err)
		}
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	text, err := config.Render(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Printf("# xskel configuration\n%s", text)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	written, err := config.Init(path, force)
	if err != nil {
		return err
	}

	pterm.Printf("✓ Wrote default configuration to %s\n", written)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}
