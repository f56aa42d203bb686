package cmd

import "log/slog"

// Service groups the systemd service management subcommands.
type Service struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the server as a systemd service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the systemd service"`
}

type ServiceInstall struct{}

func (ServiceInstall) Run(logger *slog.Logger) error {
	return install(logger)
}

type ServiceUninstall struct{}

func (ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}
