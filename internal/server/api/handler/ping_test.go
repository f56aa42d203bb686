package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kvmtools/pastekey/apiclient"
	"github.com/kvmtools/pastekey/internal/server/api"
	"github.com/kvmtools/pastekey/internal/server/api/handler"
	"github.com/kvmtools/pastekey/internal/server/injector"
	handlerTest "github.com/kvmtools/pastekey/internal/testing"
)

func TestPing(t *testing.T) {
	addr, _, done := handlerTest.StartAPIServer(t, func(r *api.Router, inj *injector.Injector, apiSrv *api.Server) {
		r.Register("ping", handler.Ping())
	})
	defer done()

	c := apiclient.NewTransport(addr)
	line, err := c.Do("ping", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, `{"server":"pastekey","version":"0.1.0"}`, line)
}
