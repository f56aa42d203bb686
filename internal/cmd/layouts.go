package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kvmtools/pastekey/internal/i18n"
)

// Layouts lists the keyboard layouts the server supports.
type Layouts struct {
	ClientOptions `embed:""`

	Locale string `help:"Locale for layout names" enum:"en,ru" default:"en"`
}

func (l *Layouts) Run(logger *slog.Logger) error {
	client, err := l.Client()
	if err != nil {
		return err
	}
	resp, err := client.LayoutsList()
	if err != nil {
		return err
	}
	loc := i18n.Locale(l.Locale)
	for _, info := range resp.Layouts {
		fmt.Printf("%s\t%s\n", info.Language, i18n.T(loc, info.LabelKey))
	}
	return nil
}
