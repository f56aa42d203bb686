package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/dialog"
	"github.com/kvmtools/pastekey/layout"
)

type scriptedPaster struct {
	responses []*apitypes.PasteResponse
	texts     []string
	langs     []string
}

func (p *scriptedPaster) PasteCtx(_ context.Context, text, language string) (*apitypes.PasteResponse, error) {
	p.texts = append(p.texts, text)
	p.langs = append(p.langs, language)
	resp := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return resp, nil
}

type recordingCapture struct {
	calls []bool
}

func (c *recordingCapture) CaptureSetCtx(_ context.Context, enabled bool) (*apitypes.CaptureResponse, error) {
	c.calls = append(c.calls, enabled)
	return &apitypes.CaptureResponse{Enabled: enabled}, nil
}

func TestDialogSessionPastesAndResumesCapture(t *testing.T) {
	paster := &scriptedPaster{responses: []*apitypes.PasteResponse{{Status: apitypes.PasteOK, Typed: 5}}}
	capture := &recordingCapture{}
	ctrl := dialog.NewController(paster, capture, nil)

	var out bytes.Buffer
	err := runDialogSession(context.Background(), ctrl, layout.LangEN, strings.NewReader("hello\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello"}, paster.texts)
	assert.Equal(t, []string{"en"}, paster.langs)
	// capture off while the dialog is open, back on after a successful paste
	assert.Equal(t, []bool{false, true}, capture.calls)
	assert.Equal(t, dialog.StateClosed, ctrl.Snapshot().State)
}

func TestDialogSessionTranslatesRussianInput(t *testing.T) {
	paster := &scriptedPaster{responses: []*apitypes.PasteResponse{{Status: apitypes.PasteOK}}}
	ctrl := dialog.NewController(paster, &recordingCapture{}, nil)

	var out bytes.Buffer
	err := runDialogSession(context.Background(), ctrl, layout.LangRU, strings.NewReader("привет\n"), &out)
	require.NoError(t, err)

	require.Len(t, paster.texts, 1)
	assert.Equal(t, "ghbdtn", paster.texts[0])
	assert.Equal(t, "ru", paster.langs[0])
	assert.Contains(t, out.String(), "Вставить текст")
}

func TestDialogSessionRetriesAfterRejection(t *testing.T) {
	paster := &scriptedPaster{responses: []*apitypes.PasteResponse{
		{Status: apitypes.PasteNoTarget, Message: "no target attached"},
		{Status: apitypes.PasteOK},
	}}
	capture := &recordingCapture{}
	ctrl := dialog.NewController(paster, capture, nil)

	var out bytes.Buffer
	err := runDialogSession(context.Background(), ctrl, layout.LangEN, strings.NewReader("first\nsecond\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, paster.texts)
	assert.Contains(t, out.String(), "no target attached")
	assert.Equal(t, []bool{false, true}, capture.calls)
}

func TestDialogSessionEmptyLineCancels(t *testing.T) {
	paster := &scriptedPaster{}
	capture := &recordingCapture{}
	ctrl := dialog.NewController(paster, capture, nil)

	var out bytes.Buffer
	err := runDialogSession(context.Background(), ctrl, layout.LangEN, strings.NewReader("\n"), &out)
	require.NoError(t, err)

	assert.Empty(t, paster.texts)
	assert.Equal(t, []bool{false, true}, capture.calls)
	assert.Equal(t, dialog.StateClosed, ctrl.Snapshot().State)
}

func TestDialogSessionEOFCloses(t *testing.T) {
	capture := &recordingCapture{}
	ctrl := dialog.NewController(&scriptedPaster{}, capture, nil)

	var out bytes.Buffer
	err := runDialogSession(context.Background(), ctrl, layout.LangEN, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, capture.calls)
}
