package cmd

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kvmtools/pastekey/apiclient"
)

// ClientOptions carries the flags shared by every command that talks to a
// running server.
type ClientOptions struct {
	Addr           string `help:"API server address" default:"localhost:3270" env:"PASTEKEY_ADDR"`
	Password       string `help:"API password (see the server key file)" env:"PASTEKEY_PASSWORD"`
	PromptPassword bool   `name:"prompt-password" short:"p" help:"Prompt for the API password on the terminal"`
}

// Client builds an API client, prompting for the password when requested.
func (o *ClientOptions) Client() (*apiclient.Client, error) {
	pwd := o.Password
	if o.PromptPassword {
		p, err := readPassword()
		if err != nil {
			return nil, err
		}
		pwd = p
	}
	if pwd == "" {
		return apiclient.New(o.Addr), nil
	}
	return apiclient.NewWithPassword(o.Addr, pwd), nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot prompt for password: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "API password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
