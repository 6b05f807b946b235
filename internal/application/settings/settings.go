// Package settings defines application-level configuration data.
package settings

import "time"

// APIConfig locates the publications backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" kong:"help='API base URL',default='http://127.0.0.1:8080'"`
	TimeoutSeconds int    `yaml:"timeout_seconds" kong:"help='Request timeout in seconds',default='10'"`
}

// Timeout returns the request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ListConfig tunes incremental list loading.
type ListConfig struct {
	PageSize        int  `yaml:"page_size" kong:"help='Items requested per page',default='10'"`
	Margin          int  `yaml:"margin" kong:"help='Rows before the end of a list that trigger the next page',default='3'"`
	PreserveOnReset bool `yaml:"preserve_on_reset" kong:"help='Keep items on screen while a filter change reloads',default='true'"`
}

// SearchConfig tunes the search box.
type SearchConfig struct {
	DebounceMS int `yaml:"debounce_ms" kong:"help='Delay before a search is sent, in milliseconds',default='400'"`
}

// Debounce returns the search delay.
func (c SearchConfig) Debounce() time.Duration {
	if c.DebounceMS < 0 {
		return 0
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// KeyMapConfig defines the configuration for keybindings.
type KeyMapConfig struct {
	Up           string `yaml:"up" kong:"help='Up key',default='k,up'"`
	Down         string `yaml:"down" kong:"help='Down key',default='j,down'"`
	UpPage       string `yaml:"up_page" kong:"help='Page Up key',default='ctrl+u,pgup'"`
	DownPage     string `yaml:"down_page" kong:"help='Page Down key',default='ctrl+d,pgdn'"`
	Top          string `yaml:"top" kong:"help='Top key',default='g'"`
	Bottom       string `yaml:"bottom" kong:"help='Bottom key',default='G'"`
	Open         string `yaml:"open" kong:"help='Open key',default='enter'"`
	Back         string `yaml:"back" kong:"help='Back key',default='esc'"`
	Quit         string `yaml:"quit" kong:"help='Quit key',default='q'"`
	SwitchView   string `yaml:"switch_view" kong:"help='Switch between public and dashboard key',default='tab'"`
	Search       string `yaml:"search" kong:"help='Search key',default='/'"`
	StatusFilter string `yaml:"status_filter" kong:"help='Cycle status filter key',default='f'"`
	Trash        string `yaml:"trash" kong:"help='Toggle trash key',default='t'"`
	Select       string `yaml:"select" kong:"help='Select key',default='space'"`
	New          string `yaml:"new" kong:"help='New publication key',default='n'"`
	Edit         string `yaml:"edit" kong:"help='Edit key',default='e'"`
	Delete       string `yaml:"delete" kong:"help='Delete or restore key',default='x'"`
	ToggleStatus string `yaml:"toggle_status" kong:"help='Publish/unpublish key',default='p'"`
	Retry        string `yaml:"retry" kong:"help='Retry failed load key',default='r'"`
	Logout       string `yaml:"logout" kong:"help='Log out key',default='O'"`
}

// ThemeConfig defines the color theme configuration.
type ThemeConfig struct {
	Accent string `yaml:"accent" kong:"help='Accent color',default='62'"`
	Muted  string `yaml:"muted" kong:"help='Secondary text color',default='244'"`
	Error  string `yaml:"error" kong:"help='Error color',default='160'"`

	// Markdown is a glamour style name (dark, light, notty, ...) or a style file path.
	Markdown string `yaml:"markdown" kong:"help='Detail view markdown style',default='dark'"`
}

// LogConfig controls the application log.
type LogConfig struct {
	Level string `yaml:"level" kong:"help='Log level (debug/info/warn/error)',default='info'"`
	File  string `yaml:"file" kong:"help='Log file path'"`
}

// ServerConfig configures the local development server.
type ServerConfig struct {
	Addr       string `yaml:"addr" kong:"help='Listen address',default='127.0.0.1:8080'"`
	Database   string `yaml:"database" kong:"help='Database file path'"`
	RequestLog bool   `yaml:"request_log" kong:"help='Log every request',default='true'"`
}

// Settings represents the application configuration.
type Settings struct {
	API         APIConfig    `yaml:"api" kong:"embed,prefix='api.'"`
	List        ListConfig   `yaml:"list" kong:"embed,prefix='list.'"`
	Search      SearchConfig `yaml:"search" kong:"embed,prefix='search.'"`
	KeyMap      KeyMapConfig `yaml:"keymap" kong:"embed,prefix='keymap.'"`
	Theme       ThemeConfig  `yaml:"theme" kong:"embed,prefix='theme.'"`
	Log         LogConfig    `yaml:"log" kong:"embed,prefix='log.'"`
	Server      ServerConfig `yaml:"server" kong:"embed,prefix='server.'"`
	SessionFile string       `yaml:"session_file" kong:"help='Session file path'"`
}
