// Package config defines the top-level CLI surface parsed by kong.
package config

import "github.com/kvmtools/pastekey/internal/cmd"

// LogOptions are the global logging flags shared by all commands.
type LogOptions struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"PASTEKEY_LOG_LEVEL"`
	File    string `help:"Log file path (logs to stdout/stderr when empty)" env:"PASTEKEY_LOG_FILE"`
	RawFile string `help:"File to dump raw keystroke packets to" env:"PASTEKEY_LOG_RAW_FILE"`
}

// CLI is the root command structure.
type CLI struct {
	Config string     `help:"Path to a configuration file" env:"PASTEKEY_CONFIG"`
	Log    LogOptions `embed:"" prefix:"log."`

	Server    cmd.Server        `cmd:"" help:"Run the paste/keystroke API server"`
	Paste     cmd.Paste         `cmd:"" help:"Send text to the attached target as keystrokes"`
	Capture   cmd.Capture       `cmd:"" help:"Control forwarding of console keystrokes"`
	Layouts   cmd.Layouts       `cmd:"" help:"List supported keyboard layouts"`
	Service   cmd.Service       `cmd:"" help:"Manage the systemd service"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file utilities"`
}
