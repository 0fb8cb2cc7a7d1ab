package rpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growerlab/kitbridge/pkg/wire"
)

type fakeConfigSource struct {
	configuration []byte
	err           error
}

func (f *fakeConfigSource) ActiveConfigurationJSON(_ context.Context, _ string) ([]byte, error) {
	return f.configuration, f.err
}

func encodeRequest(t *testing.T, req wire.ServerRequest) []byte {
	t.Helper()
	payload, err := wire.EncodeServerRequest(req)
	require.NoError(t, err)
	return payload
}

func handleOK(t *testing.T, h *ServerHandler, kit string, req wire.ServerRequest) wire.Response {
	t.Helper()
	payload, ok := h.Handle(context.Background(), kit, encodeRequest(t, req), false, 0)
	require.True(t, ok)
	resp, err := wire.DecodeServerResponse(payload)
	require.NoError(t, err)
	return resp
}

func TestHandleVersion(t *testing.T) {
	h := NewServerHandler("0.9.2", &fakeConfigSource{}, nil)

	resp := handleOK(t, h, "k-1", wire.ServerRequest{ID: 3, Method: wire.ServerMethodVersion})
	require.Nil(t, resp.Err)
	assert.Equal(t, uint64(3), resp.ID)
	assert.Equal(t, "0.9.2", string(resp.Result))
}

func TestHandleGetActiveConfiguration(t *testing.T) {
	configuration := []byte(`{"id":12,"peripherals":[]}`)
	h := NewServerHandler("0.9.2", &fakeConfigSource{configuration: configuration}, nil)

	resp := handleOK(t, h, "k-1", wire.ServerRequest{ID: 4, Method: wire.ServerMethodGetActiveConfiguration})
	require.Nil(t, resp.Err)
	assert.Equal(t, configuration, resp.Result)
}

func TestHandleNoActiveConfiguration(t *testing.T) {
	h := NewServerHandler("0.9.2", &fakeConfigSource{}, nil)

	resp := handleOK(t, h, "k-1", wire.ServerRequest{ID: 5, Method: wire.ServerMethodGetActiveConfiguration})
	require.Nil(t, resp.Err)
	assert.Equal(t, []byte("null"), resp.Result)
}

func TestHandleConfigurationStoreFailure(t *testing.T) {
	h := NewServerHandler("0.9.2", &fakeConfigSource{err: errors.New("storage down")}, nil)

	resp := handleOK(t, h, "k-1", wire.ServerRequest{ID: 6, Method: wire.ServerMethodGetActiveConfiguration})
	require.NotNil(t, resp.Err)
	assert.Equal(t, wire.ErrorOther, resp.Err.Kind)
}

func TestHandleUnknownMethodAnswersMethodNotFound(t *testing.T) {
	h := NewServerHandler("0.9.2", &fakeConfigSource{}, nil)

	payload := encodeRequest(t, wire.ServerRequest{ID: 8, Method: wire.ServerMethod(99)})
	response, ok := h.Handle(context.Background(), "k-1", payload, false, 0)
	require.True(t, ok, "a request with a recoverable id always gets a response")

	resp, err := wire.DecodeServerResponse(response)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), resp.ID)
	require.NotNil(t, resp.Err)
	assert.Equal(t, wire.ErrorMethodNotFound, resp.Err.Kind)
}

func TestHandleGarbageIsDropped(t *testing.T) {
	h := NewServerHandler("0.9.2", &fakeConfigSource{}, nil)

	response, ok := h.Handle(context.Background(), "k-1", []byte("garbage"), false, 0)
	assert.False(t, ok)
	assert.Nil(t, response)
}

func TestHandleRateLimitedAnswersWithWaitHint(t *testing.T) {
	h := NewServerHandler("0.9.2", &fakeConfigSource{}, nil)

	payload := encodeRequest(t, wire.ServerRequest{ID: 9, Method: wire.ServerMethodVersion})
	response, ok := h.Handle(context.Background(), "k-1", payload, true, 1500*time.Millisecond)
	require.True(t, ok)

	resp, err := wire.DecodeServerResponse(response)
	require.NoError(t, err)
	require.NotNil(t, resp.Err)
	assert.Equal(t, wire.ErrorRateLimited, resp.Err.Kind)
	assert.Equal(t, 1500*time.Millisecond, resp.Err.Wait)
}
