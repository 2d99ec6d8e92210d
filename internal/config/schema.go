package config

// Config is the root configuration structure.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Player  PlayerConfig  `toml:"player"`
	TUI     TUIConfig     `toml:"tui"`
	Remote  RemoteConfig  `toml:"remote"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig holds the content backend location.
type BackendConfig struct {
	APIURL   string `toml:"api_url"`
	MediaURL string `toml:"media_url"`
	Timeout  int    `toml:"timeout"`   // seconds
	CacheTTL int    `toml:"cache_ttl"` // seconds
}

// PlayerConfig holds playback engine settings.
type PlayerConfig struct {
	Engine      string `toml:"engine"` // mpv or sim
	MPVPath     string `toml:"mpv_path"`
	AudioVolume int    `toml:"audio_volume"` // percent
	VideoVolume int    `toml:"video_volume"` // percent
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// RemoteConfig holds settings for the remote control server.
type RemoteConfig struct {
	Listen string `toml:"listen"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Format string `toml:"format"`
}
