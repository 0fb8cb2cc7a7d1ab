package wire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"

	"github.com/growerlab/kitbridge/pkg/wire/wirepb"
)

//go:generate protoc --proto_path=wirepb --go_out=wirepb --go_opt=paths=source_relative wire.proto

// maxPayloadLen bounds the size of a payload accepted for decoding.
// Kits publish small envelopes; anything larger is hostile or broken.
const maxPayloadLen = 8 << 20

// DecodeError reports malformed or schema-violating input. When the
// envelope was intact enough to recover the request id, HasRequestID is
// set so RPC handlers can still answer the caller.
type DecodeError struct {
	Reason       string
	RequestID    uint64
	HasRequestID bool
}

func (e *DecodeError) Error() string {
	return "wire: " + e.Reason
}

func unmarshal(payload []byte, m proto.Message) error {
	if len(payload) > maxPayloadLen {
		return &DecodeError{Reason: fmt.Sprintf("payload of %d bytes exceeds %d byte limit", len(payload), maxPayloadLen)}
	}
	if err := proto.Unmarshal(payload, m); err != nil {
		return &DecodeError{Reason: err.Error()}
	}
	return nil
}

func uuidField(b []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.UUID{}, &DecodeError{Reason: fmt.Sprintf("id has %d bytes, want 16", len(b))}
	}
	return id, nil
}

// EncodeRawMeasurement serializes a raw measurement envelope.
func EncodeRawMeasurement(m RawMeasurement) ([]byte, error) {
	return proto.Marshal(&wirepb.RawMeasurement{
		Id:           m.ID[:],
		Datetime:     m.Datetime,
		Peripheral:   m.Peripheral,
		QuantityType: m.QuantityType,
		Value:        m.Value,
	})
}

// DecodeRawMeasurement parses a raw measurement envelope. Malformed
// input yields a *DecodeError.
func DecodeRawMeasurement(payload []byte) (RawMeasurement, error) {
	var pb wirepb.RawMeasurement
	if err := unmarshal(payload, &pb); err != nil {
		return RawMeasurement{}, err
	}
	id, err := uuidField(pb.GetId())
	if err != nil {
		return RawMeasurement{}, err
	}
	return RawMeasurement{
		ID:           id,
		Datetime:     pb.GetDatetime(),
		Peripheral:   pb.GetPeripheral(),
		QuantityType: pb.GetQuantityType(),
		Value:        pb.GetValue(),
	}, nil
}

// EncodeAggregateMeasurement serializes an aggregate measurement
// envelope.
func EncodeAggregateMeasurement(m AggregateMeasurement) ([]byte, error) {
	return proto.Marshal(&wirepb.AggregateMeasurement{
		Id:            m.ID[:],
		DatetimeStart: m.DatetimeStart,
		DatetimeEnd:   m.DatetimeEnd,
		Peripheral:    m.Peripheral,
		QuantityType:  m.QuantityType,
		Values:        m.Values,
	})
}

// DecodeAggregateMeasurement parses an aggregate measurement envelope.
func DecodeAggregateMeasurement(payload []byte) (AggregateMeasurement, error) {
	var pb wirepb.AggregateMeasurement
	if err := unmarshal(payload, &pb); err != nil {
		return AggregateMeasurement{}, err
	}
	id, err := uuidField(pb.GetId())
	if err != nil {
		return AggregateMeasurement{}, err
	}
	return AggregateMeasurement{
		ID:            id,
		DatetimeStart: pb.GetDatetimeStart(),
		DatetimeEnd:   pb.GetDatetimeEnd(),
		Peripheral:    pb.GetPeripheral(),
		QuantityType:  pb.GetQuantityType(),
		Values:        pb.GetValues(),
	}, nil
}

// EncodeServerRequest serializes a kit-to-server RPC request.
func EncodeServerRequest(r ServerRequest) ([]byte, error) {
	return proto.Marshal(&wirepb.ServerRequest{
		Id:      r.ID,
		Method:  wirepb.ServerMethod(r.Method),
		Payload: r.Payload,
	})
}

// DecodeServerRequest parses a kit-to-server RPC request. A request
// naming a method this server does not know yields a *DecodeError with
// HasRequestID set, so the handler can answer methodNotFound instead
// of leaving the kit waiting.
func DecodeServerRequest(payload []byte) (ServerRequest, error) {
	var pb wirepb.ServerRequest
	if err := unmarshal(payload, &pb); err != nil {
		return ServerRequest{}, err
	}
	req := ServerRequest{ID: pb.GetId(), Payload: pb.GetPayload()}
	switch pb.GetMethod() {
	case wirepb.ServerMethod_SERVER_METHOD_VERSION:
		req.Method = ServerMethodVersion
	case wirepb.ServerMethod_SERVER_METHOD_GET_ACTIVE_CONFIGURATION:
		req.Method = ServerMethodGetActiveConfiguration
	case wirepb.ServerMethod_SERVER_METHOD_UNSPECIFIED:
		return ServerRequest{}, &DecodeError{Reason: "server request has no method"}
	default:
		return ServerRequest{}, &DecodeError{
			Reason:       fmt.Sprintf("unknown server method %d", pb.GetMethod()),
			RequestID:    pb.GetId(),
			HasRequestID: true,
		}
	}
	return req, nil
}

// EncodeKitRequest serializes a server-to-kit RPC request.
func EncodeKitRequest(r KitRequest) ([]byte, error) {
	return proto.Marshal(&wirepb.KitRequest{
		Id:      r.ID,
		Method:  wirepb.KitMethod(r.Method),
		Payload: r.Payload,
	})
}

// DecodeKitRequest parses a server-to-kit RPC request.
func DecodeKitRequest(payload []byte) (KitRequest, error) {
	var pb wirepb.KitRequest
	if err := unmarshal(payload, &pb); err != nil {
		return KitRequest{}, err
	}
	req := KitRequest{ID: pb.GetId(), Payload: pb.GetPayload()}
	switch pb.GetMethod() {
	case wirepb.KitMethod_KIT_METHOD_VERSION:
		req.Method = KitMethodVersion
	case wirepb.KitMethod_KIT_METHOD_UPTIME:
		req.Method = KitMethodUptime
	case wirepb.KitMethod_KIT_METHOD_UNSPECIFIED:
		return KitRequest{}, &DecodeError{Reason: "kit request has no method"}
	default:
		return KitRequest{}, &DecodeError{
			Reason:       fmt.Sprintf("unknown kit method %d", pb.GetMethod()),
			RequestID:    pb.GetId(),
			HasRequestID: true,
		}
	}
	return req, nil
}

func encodeResponse(r Response) ([]byte, error) {
	pb := &wirepb.Response{Id: r.ID}
	if r.Err == nil {
		pb.Result = r.Result
	} else {
		pb.Error = &wirepb.RpcError{Kind: wirepb.ErrorKind(r.Err.Kind)}
		if r.Err.Kind == ErrorRateLimited {
			pb.Error.WaitMillis = uint64(r.Err.Wait / time.Millisecond)
		}
	}
	return proto.Marshal(pb)
}

func decodeResponse(payload []byte) (Response, error) {
	var pb wirepb.Response
	if err := unmarshal(payload, &pb); err != nil {
		return Response{}, err
	}
	resp := Response{ID: pb.GetId()}
	e := pb.GetError()
	if e == nil {
		resp.Result = pb.GetResult()
		return resp, nil
	}
	switch e.GetKind() {
	case wirepb.ErrorKind_ERROR_KIND_OTHER:
		resp.Err = &RPCError{Kind: ErrorOther}
	case wirepb.ErrorKind_ERROR_KIND_METHOD_NOT_FOUND:
		resp.Err = &RPCError{Kind: ErrorMethodNotFound}
	case wirepb.ErrorKind_ERROR_KIND_RATE_LIMITED:
		resp.Err = &RPCError{
			Kind: ErrorRateLimited,
			Wait: time.Duration(e.GetWaitMillis()) * time.Millisecond,
		}
	default:
		return Response{}, &DecodeError{
			Reason:       fmt.Sprintf("unknown error kind %d", e.GetKind()),
			RequestID:    pb.GetId(),
			HasRequestID: true,
		}
	}
	return resp, nil
}

// EncodeServerResponse serializes a server-to-kit RPC response.
func EncodeServerResponse(r Response) ([]byte, error) {
	return encodeResponse(r)
}

// DecodeServerResponse parses a server-to-kit RPC response.
func DecodeServerResponse(payload []byte) (Response, error) {
	return decodeResponse(payload)
}

// EncodeKitResponse serializes a kit-to-server RPC response.
func EncodeKitResponse(r Response) ([]byte, error) {
	return encodeResponse(r)
}

// DecodeKitResponse parses a kit-to-server RPC response.
func DecodeKitResponse(payload []byte) (Response, error) {
	return decodeResponse(payload)
}
