package cli

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/config"
	"golang.org/x/term"
)

var (
	configInitDefaults bool
	configInitForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing showcase configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file.

On a terminal this asks for the backend location, playback engine and theme.
Use --defaults to write the default values without asking.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  backend.api_url        Backend API base URL
  backend.media_url      Base URL for uploaded media
  backend.timeout        Request timeout in seconds
  backend.cache_ttl      Catalog cache lifetime in seconds (0 disables)
  player.engine          mpv or sim
  player.mpv_path        Path to the mpv binary
  player.audio_volume    Initial audio volume (0-100)
  player.video_volume    Initial video volume (0-100)
  tui.theme              auto, dark or light
  tui.refresh_interval   Redraw interval in milliseconds
  remote.listen          Remote server address
  log.level              trace, debug, info, warn or error
  log.file               Log file path
  log.format             text or json

Examples:
  showcase config set backend.api_url https://showcase.uiu.ac.bd/api
  showcase config set player.engine sim`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var intKeys = map[string]bool{
	"backend.timeout":      true,
	"backend.cache_ttl":    true,
	"player.audio_volume":  true,
	"player.video_volume":  true,
	"tui.refresh_interval": true,
}

var stringKeys = map[string]bool{
	"backend.api_url":   true,
	"backend.media_url": true,
	"player.engine":     true,
	"player.mpv_path":   true,
	"tui.theme":         true,
	"remote.listen":     true,
	"log.level":         true,
	"log.file":          true,
	"log.format":        true,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitDefaults, "defaults", false, "write defaults without asking")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return printJSON(map[string]any{"path": path, "exists": exists})
	}
	if exists {
		fmt.Println(path)
	} else {
		fmt.Printf("%s (not created yet)\n", path)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'showcase config init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	newCfg := config.Default()
	if !configInitDefaults && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := configWizard(newCfg); err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
	}

	if err := newCfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(newCfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'showcase catalog' to check the backend is reachable")
	fmt.Println("  2. Run 'showcase ui' to start browsing")
	return nil
}

// configWizard asks for the settings people usually change.
func configWizard(c *config.Config) error {
	validURL := func(s string) error {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("enter a full URL such as http://localhost:8000/api")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend API URL").
				Description("Where posts/list.php lives").
				Value(&c.Backend.APIURL).
				Validate(validURL),
			huh.NewInput().
				Title("Media URL").
				Description("Base URL for uploaded audio and video").
				Value(&c.Backend.MediaURL).
				Validate(validURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Playback engine").
				Options(
					huh.NewOption("mpv (plays real media)", "mpv"),
					huh.NewOption("sim (simulated, no audio output)", "sim"),
				).
				Value(&c.Player.Engine),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", "auto"),
					huh.NewOption("Dark (Mocha)", "dark"),
					huh.NewOption("Light (Latte)", "light"),
				).
				Value(&c.TUI.Theme),
		),
	).WithTheme(huh.ThemeCatppuccin())

	return form.Run()
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := config.FindConfigFile(); path != "" {
		return path
	}
	return config.DefaultPath()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'showcase config init' first", configPath)
	}

	// Read the current config file as raw TOML so unknown keys survive.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var rawConfig map[string]any
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if rawConfig == nil {
		rawConfig = make(map[string]any)
	}

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}
	sectionMap[field] = typedValue

	// Validate before writing so a bad value never lands on disk.
	var check config.Config
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(rawConfig); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if _, err := toml.Decode(buf.String(), &check); err != nil {
		return fmt.Errorf("failed to check config: %w", err)
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// parseConfigValue converts value to the type key holds.
func parseConfigValue(key, value string) (any, error) {
	switch {
	case intKeys[key]:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return n, nil
	case stringKeys[key]:
		return value, nil
	default:
		return nil, fmt.Errorf("unknown key %q. Run 'showcase config set --help' for the list", key)
	}
}
