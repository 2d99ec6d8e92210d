package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Engine    string `json:"engine"`
	Backend   string `json:"backend"`
	Remote    string `json:"remote"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and player setup",
	Long: `Show the showcase version together with the configured playback
engine, content backend and remote control address.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if cfg != nil {
		info.Engine = cfg.Player.Engine
		if cfg.Player.Engine == "mpv" && cfg.Player.MPVPath != "" {
			info.Engine += " (" + cfg.Player.MPVPath + ")"
		}
		info.Backend = cfg.Backend.APIURL
		info.Remote = cfg.Remote.Listen
	}

	if JSONOutput() {
		return printJSON(info)
	}

	fmt.Printf("showcase %s\n", info.Version)
	if info.Engine != "" {
		fmt.Printf("  engine:  %s\n", info.Engine)
		fmt.Printf("  backend: %s\n", info.Backend)
	}
	if Verbose() {
		fmt.Printf("  remote:     %s\n", info.Remote)
		fmt.Printf("  commit:     %s\n", info.Commit)
		fmt.Printf("  built:      %s\n", info.BuildDate)
		fmt.Printf("  go version: %s\n", info.GoVersion)
		fmt.Printf("  platform:   %s\n", info.Platform)
	}
	return nil
}
