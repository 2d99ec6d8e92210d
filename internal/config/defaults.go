package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			APIURL:   "http://localhost:8000/api",
			MediaURL: "http://localhost:8000",
			Timeout:  10,
			CacheTTL: 60,
		},
		Player: PlayerConfig{
			Engine:      "mpv",
			MPVPath:     "mpv",
			AudioVolume: 70,
			VideoVolume: 80,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 250,
		},
		Remote: RemoteConfig{
			Listen: "127.0.0.1:7373",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Backend
	if c.Backend.APIURL == "" {
		c.Backend.APIURL = d.Backend.APIURL
	}
	if c.Backend.MediaURL == "" {
		c.Backend.MediaURL = d.Backend.MediaURL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = d.Backend.Timeout
	}
	if c.Backend.CacheTTL == 0 {
		c.Backend.CacheTTL = d.Backend.CacheTTL
	}

	// Player
	if c.Player.Engine == "" {
		c.Player.Engine = d.Player.Engine
	}
	if c.Player.MPVPath == "" {
		c.Player.MPVPath = d.Player.MPVPath
	}
	if c.Player.AudioVolume == 0 {
		c.Player.AudioVolume = d.Player.AudioVolume
	}
	if c.Player.VideoVolume == 0 {
		c.Player.VideoVolume = d.Player.VideoVolume
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Remote
	if c.Remote.Listen == "" {
		c.Remote.Listen = d.Remote.Listen
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
