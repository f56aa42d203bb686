package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// PasteRequest asks the server to replay text as keystrokes on the attached
// target. Text must already be layout-translated to US characters; Language
// records the layout the text was typed in.
type PasteRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// PasteResponse reports the outcome of a paste. Status 0 means every
// character was injected; any other value is a domain failure described by
// Message. Typed counts the keystrokes actually sent.
type PasteResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Typed   int    `json:"typed"`
}

// Paste status codes.
const (
	PasteOK           = 0
	PasteNoTarget     = 1
	PasteTooLong      = 2
	PasteUntypeable   = 3
	PasteWriteFailure = 4
)

type LayoutInfo struct {
	Language string `json:"language"`
	LabelKey string `json:"labelKey"`
}

type LayoutsListResponse struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// CaptureResponse reports whether raw keyboard capture is currently
// forwarded to the target.
type CaptureResponse struct {
	Enabled bool `json:"enabled"`
}
