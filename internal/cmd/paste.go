package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/dialog"
	"github.com/kvmtools/pastekey/internal/i18n"
	"github.com/kvmtools/pastekey/layout"
)

// Paste sends text to the attached target as keystrokes. Text is taken from
// the arguments, or from stdin when none are given. On a terminal the
// stdin path becomes an interactive dialog session; piped input is sent
// directly.
type Paste struct {
	ClientOptions `embed:""`

	Language string   `help:"Keyboard layout the text was typed in" enum:"en,ru" default:"en"`
	Force    bool     `help:"Send even when the text does not match the selected layout"`
	Text     []string `arg:"" optional:"" help:"Text to paste (reads stdin when omitted)"`
}

func (p *Paste) Run(logger *slog.Logger) error {
	lang, err := layout.ParseLanguage(p.Language)
	if err != nil {
		return err
	}

	text := strings.Join(p.Text, " ")
	if text == "" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			client, err := p.Client()
			if err != nil {
				return err
			}
			ctrl := dialog.NewController(client, client, logger)
			return runDialogSession(context.Background(), ctrl, lang, os.Stdin, os.Stderr)
		}
		in, err := readStdinText()
		if err != nil {
			return err
		}
		text = in
	}
	if text == "" {
		return fmt.Errorf("nothing to paste")
	}
	if utf8.RuneCountInString(text) > layout.MaxTextLen {
		return fmt.Errorf("text exceeds %d characters", layout.MaxTextLen)
	}

	if !layout.Valid(text, lang) {
		if !p.Force {
			return fmt.Errorf("text contains characters outside the %q layout (use --force to send anyway)", lang)
		}
		logger.Warn("text does not match the selected layout", "language", lang)
	}
	if lang == layout.LangRU {
		text = layout.TranslateRuToEn(text)
	}

	client, err := p.Client()
	if err != nil {
		return err
	}
	resp, err := client.Paste(text, string(lang))
	if err != nil {
		return err
	}
	if resp.Status != apitypes.PasteOK {
		return fmt.Errorf("paste rejected: %s", resp.Message)
	}
	logger.Info("pasted", "chars", resp.Typed)
	return nil
}

// runDialogSession drives an interactive paste through the dialog
// controller: capture is suspended while the user types, invalid text is
// flagged but not blocked, a rejected paste keeps the text for another try,
// and an empty line cancels.
func runDialogSession(ctx context.Context, ctrl *dialog.Controller, lang layout.Language, in io.Reader, out io.Writer) error {
	loc := i18n.Locale(lang)

	if err := ctrl.Open(ctx); err != nil {
		return fmt.Errorf("open dialog: %w", err)
	}
	ctrl.SetLanguage(lang)

	fmt.Fprintf(out, "%s (%s)\n", i18n.T(loc, "paste.title"), i18n.T(loc, lang.LabelKey()))
	fmt.Fprintln(out, i18n.T(loc, "paste.placeholder"))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				_ = ctrl.Close(ctx)
				return err
			}
			return ctrl.Close(ctx)
		}
		line := scanner.Text()
		if line == "" {
			return ctrl.Close(ctx)
		}

		ctrl.SetText(line)
		if snap := ctrl.Snapshot(); !snap.Valid {
			fmt.Fprintln(out, i18n.T(loc, "paste.error.invalid"))
		}
		_ = ctrl.Submit(ctx)

		snap := ctrl.Snapshot()
		if snap.State == dialog.StateClosed {
			return nil
		}
		// rejected or failed: the controller kept the text, let the user retry
		switch {
		case snap.ErrorMessage != "":
			fmt.Fprintln(out, snap.ErrorMessage)
		case snap.ErrorKey != "":
			fmt.Fprintln(out, i18n.T(loc, snap.ErrorKey))
		}
	}
}

func readStdinText() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
