package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/server/api"
)

const (
	ServerName = "pastekey"
	Version    = "0.1.0"
)

// Ping returns a handler answering with the server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out, err := json.Marshal(apitypes.PingResponse{Server: ServerName, Version: Version})
		if err != nil {
			return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(out)
		return nil
	}
}
