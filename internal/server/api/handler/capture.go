package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/server/api"
	"github.com/kvmtools/pastekey/internal/server/injector"
)

// CaptureEnable returns a handler resuming raw keystroke forwarding.
func CaptureEnable(inj *injector.Injector) api.HandlerFunc {
	return setCapture(inj, true)
}

// CaptureDisable returns a handler suspending raw keystroke forwarding while
// a paste dialog is open.
func CaptureDisable(inj *injector.Injector) api.HandlerFunc {
	return setCapture(inj, false)
}

// CaptureStatus returns a handler reporting the current capture flag.
func CaptureStatus(inj *injector.Injector) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return writeCapture(res, inj.Capture())
	}
}

func setCapture(inj *injector.Injector, enabled bool) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		inj.SetCapture(enabled)
		return writeCapture(res, enabled)
	}
}

func writeCapture(res *api.Response, enabled bool) error {
	out, err := json.Marshal(apitypes.CaptureResponse{Enabled: enabled})
	if err != nil {
		return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	res.JSON = string(out)
	return nil
}
