package api

import "time"

// ServerConfig represents the server subcommand configuration.
type ServerConfig struct {
	Addr     string        `help:"API server listen address" default:":3270" env:"PASTEKEY_API_ADDR"`
	KeyDelay time.Duration `help:"Delay between injected keystrokes" default:"10ms" env:"PASTEKEY_KEY_DELAY"`
	Password string        `kong:"-"`
}
