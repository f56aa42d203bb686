package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/server/api"
	"github.com/kvmtools/pastekey/layout"
)

// LayoutsList returns a handler listing all supported input languages.
func LayoutsList() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out := apitypes.LayoutsListResponse{Layouts: make([]apitypes.LayoutInfo, 0, len(layout.Languages))}
		for _, l := range layout.Languages {
			out.Layouts = append(out.Layouts, apitypes.LayoutInfo{
				Language: string(l),
				LabelKey: l.LabelKey(),
			})
		}
		payload, err := json.Marshal(out)
		if err != nil {
			return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(payload)
		return nil
	}
}
