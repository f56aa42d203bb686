package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/server/api"
	apierror "github.com/kvmtools/pastekey/internal/server/api/error"
	"github.com/kvmtools/pastekey/layout"
)

// LayoutGet returns a handler resolving a single language by its code.
func LayoutGet() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		code, ok := req.Params["language"]
		if !ok {
			return apierror.ErrBadRequest("missing language parameter")
		}
		l, err := layout.ParseLanguage(code)
		if err != nil {
			return apierror.ErrNotFound(err.Error())
		}
		payload, err := json.Marshal(apitypes.LayoutInfo{
			Language: string(l),
			LabelKey: l.LabelKey(),
		})
		if err != nil {
			return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(payload)
		return nil
	}
}
