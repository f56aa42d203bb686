//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoServiceSupport = errors.New("service management is only supported on Linux (systemd)")

func install(logger *slog.Logger) error {
	return errNoServiceSupport
}

func uninstall(logger *slog.Logger) error {
	return errNoServiceSupport
}
