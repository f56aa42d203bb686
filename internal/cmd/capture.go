package cmd

import (
	"fmt"
	"log/slog"
)

// Capture groups the capture-control subcommands.
type Capture struct {
	Enable  CaptureEnable  `cmd:"" help:"Resume forwarding console keystrokes to the target"`
	Disable CaptureDisable `cmd:"" help:"Suspend forwarding console keystrokes to the target"`
	Status  CaptureStatus  `cmd:"" help:"Show whether keystroke forwarding is active"`
}

type CaptureEnable struct {
	ClientOptions `embed:""`
}

func (c *CaptureEnable) Run(logger *slog.Logger) error {
	return setCapture(&c.ClientOptions, true)
}

type CaptureDisable struct {
	ClientOptions `embed:""`
}

func (c *CaptureDisable) Run(logger *slog.Logger) error {
	return setCapture(&c.ClientOptions, false)
}

type CaptureStatus struct {
	ClientOptions `embed:""`
}

func (c *CaptureStatus) Run(logger *slog.Logger) error {
	client, err := c.Client()
	if err != nil {
		return err
	}
	resp, err := client.CaptureStatus()
	if err != nil {
		return err
	}
	printCapture(resp.Enabled)
	return nil
}

func setCapture(o *ClientOptions, enabled bool) error {
	client, err := o.Client()
	if err != nil {
		return err
	}
	resp, err := client.CaptureSet(enabled)
	if err != nil {
		return err
	}
	printCapture(resp.Enabled)
	return nil
}

func printCapture(enabled bool) {
	if enabled {
		fmt.Println("capture: enabled")
	} else {
		fmt.Println("capture: disabled")
	}
}
