package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/kvmtools/pastekey/internal/configpaths"
	"github.com/kvmtools/pastekey/internal/log"
	"github.com/kvmtools/pastekey/internal/server/api"
	"github.com/kvmtools/pastekey/internal/server/api/auth"
	"github.com/kvmtools/pastekey/internal/server/api/handler"
	"github.com/kvmtools/pastekey/internal/server/injector"
	"github.com/kvmtools/pastekey/internal/util"
)

const keyFileName = "pastekey.key.txt"

type Server struct {
	ApiServerConfig api.ServerConfig `embed:"" prefix:"api."`
	NoAuth          bool             `help:"Disable API authentication (trusted networks only)" default:"false" env:"PASTEKEY_NO_AUTH"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("Starting pastekey server", "addr", s.ApiServerConfig.Addr)

	if !s.NoAuth {
		if err := s.loadOrCreateKey(logger); err != nil {
			return err
		}
	}

	if s.ApiServerConfig.Addr == "" {
		logger.Error("API server address must be set (default :3270).")
		return fmt.Errorf("API server address must be set (default :3270)")
	}

	inj := injector.New(s.ApiServerConfig.KeyDelay, logger, rawLogger)

	apiSrv, err := api.New(inj, s.ApiServerConfig, logger)
	if err != nil {
		return err
	}
	r := apiSrv.Router()
	r.Register("ping", handler.Ping())
	r.Register("paste", handler.Paste(inj))
	r.Register("layouts/list", handler.LayoutsList())
	r.Register("layouts/{language}", handler.LayoutGet())
	r.Register("capture/enable", handler.CaptureEnable(inj))
	r.Register("capture/disable", handler.CaptureDisable(inj))
	r.Register("capture/status", handler.CaptureStatus(inj))
	r.RegisterStream("target/attach", api.TargetAttachHandler(inj))
	r.RegisterStream("capture/stream", api.CaptureStreamHandler(inj))

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		if util.IsRunFromGUI() {
			fmt.Println("Press any key to exit...")
			var b []byte = make([]byte, 1)
			_, _ = os.Stdin.Read(b)
		}
		return err
	}

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	<-ctx.Done()
	apiSrv.Close()
	return nil
}

// loadOrCreateKey reads the API password from the key file, generating and
// persisting a fresh one on first start.
func (s *Server) loadOrCreateKey(logger *slog.Logger) error {
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		s.ApiServerConfig.Password = strings.TrimSpace(string(pwd))
		return nil
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return fmt.Errorf("failed to write new API password to file: %w", err)
	}
	s.ApiServerConfig.Password = newPwd
	logger.Info("Generated API server password", "path", keyFilePath)
	logger.Info("-------------------------------------")
	logger.Info("Your pastekey API server password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return nil
}
