package rpc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// ConfigurationSource resolves a kit's active configuration,
// serialized for transport. A nil result with nil error means no
// configuration is active.
type ConfigurationSource interface {
	ActiveConfigurationJSON(ctx context.Context, kitSerial string) ([]byte, error)
}

// ServerHandler answers RPC requests kits make to the server. The kit
// is synchronously awaiting a response, so every decodable request
// gets one, including unknown methods and rate-limited calls.
type ServerHandler struct {
	version string
	configs ConfigurationSource
	logger  *zap.Logger
}

// NewServerHandler creates a handler reporting the given version
// string and serving configurations from configs.
func NewServerHandler(version string, configs ConfigurationSource, logger *zap.Logger) *ServerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServerHandler{version: version, configs: configs, logger: logger}
}

// noneActiveMarker is sent when a kit has no active configuration, so
// the kit can distinguish "none" from an error.
var noneActiveMarker = []byte("null")

// Handle decodes a server RPC request and produces the encoded
// response to publish back. ok is false only when the payload was too
// malformed to recover a request id, in which case nothing can be
// answered and the payload is dropped.
//
// limited and wait report the rate limiter's verdict for this request;
// a limited request is answered with an explicit rate-limit error
// carrying the wait hint rather than silently dropped.
func (h *ServerHandler) Handle(ctx context.Context, kitSerial string, payload []byte, limited bool, wait time.Duration) (response []byte, ok bool) {
	req, err := wire.DecodeServerRequest(payload)
	if err != nil {
		var decodeErr *wire.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.HasRequestID {
			h.logger.Debug("unknown server rpc method",
				zap.String("kitSerial", kitSerial), zap.Error(decodeErr))
			return h.encode(wire.Response{
				ID:  decodeErr.RequestID,
				Err: &wire.RPCError{Kind: wire.ErrorMethodNotFound},
			})
		}
		h.logger.Debug("malformed server rpc request",
			zap.String("kitSerial", kitSerial), zap.Error(err))
		return nil, false
	}

	metrics.RPCRequests.WithLabelValues("server", req.Method.String()).Inc()

	if limited {
		return h.encode(wire.Response{
			ID:  req.ID,
			Err: &wire.RPCError{Kind: wire.ErrorRateLimited, Wait: wait},
		})
	}

	return h.encode(h.dispatch(ctx, kitSerial, req))
}

func (h *ServerHandler) encode(resp wire.Response) ([]byte, bool) {
	payload, err := wire.EncodeServerResponse(resp)
	if err != nil {
		h.logger.Error("encoding server rpc response",
			zap.Uint64("requestID", resp.ID), zap.Error(err))
		return nil, false
	}
	return payload, true
}

func (h *ServerHandler) dispatch(ctx context.Context, kitSerial string, req wire.ServerRequest) wire.Response {
	switch req.Method {
	case wire.ServerMethodVersion:
		return wire.Response{ID: req.ID, Result: []byte(h.version)}

	case wire.ServerMethodGetActiveConfiguration:
		configuration, err := h.configs.ActiveConfigurationJSON(ctx, kitSerial)
		if err != nil {
			h.logger.Error("resolving active configuration",
				zap.String("kitSerial", kitSerial), zap.Error(err))
			return wire.Response{ID: req.ID, Err: &wire.RPCError{Kind: wire.ErrorOther}}
		}
		if configuration == nil {
			configuration = noneActiveMarker
		}
		return wire.Response{ID: req.ID, Result: configuration}

	default:
		// Unreachable: the codec rejects unknown methods.
		return wire.Response{ID: req.ID, Err: &wire.RPCError{Kind: wire.ErrorMethodNotFound}}
	}
}
