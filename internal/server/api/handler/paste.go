package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/server/api"
	apierror "github.com/kvmtools/pastekey/internal/server/api/error"
	"github.com/kvmtools/pastekey/internal/server/injector"
	"github.com/kvmtools/pastekey/layout"
)

// Paste returns a handler that replays the payload text as keystrokes on the
// attached target. The payload is a JSON PasteRequest whose text is expected
// to be already layout-translated; the language field is validated so a
// client cannot claim an unsupported layout.
func Paste(inj *injector.Injector) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var pasteReq apitypes.PasteRequest
		if err := json.Unmarshal([]byte(req.Payload), &pasteReq); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		if pasteReq.Text == "" {
			return apierror.ErrBadRequest("missing text")
		}
		if pasteReq.Language != "" {
			if _, err := layout.ParseLanguage(pasteReq.Language); err != nil {
				return apierror.ErrBadRequest(err.Error())
			}
		}

		resp, err := inj.Paste(pasteReq.Text)
		if err != nil {
			return apierror.ErrInternal(fmt.Sprintf("paste failed: %v", err))
		}
		if resp.Status != apitypes.PasteOK {
			logger.Warn("paste rejected", "status", resp.Status, "message", resp.Message)
		}

		out, err := json.Marshal(resp)
		if err != nil {
			return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(out)
		return nil
	}
}
