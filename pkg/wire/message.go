package wire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RawMeasurement is a single reading reported by a kit peripheral.
type RawMeasurement struct {
	ID           uuid.UUID
	Datetime     uint64 // milliseconds since the Unix epoch
	Peripheral   int32
	QuantityType int32
	Value        float64
}

// AggregateMeasurement summarizes raw readings over a time window. The
// Values map holds kit-defined aggregate statistics, e.g. minimum,
// maximum, average.
type AggregateMeasurement struct {
	ID            uuid.UUID
	DatetimeStart uint64
	DatetimeEnd   uint64
	Peripheral    int32
	QuantityType  int32
	Values        map[string]float64
}

// ServerMethod identifies an RPC method a kit may invoke on the server.
type ServerMethod byte

const (
	ServerMethodVersion ServerMethod = iota + 1
	ServerMethodGetActiveConfiguration
)

func (m ServerMethod) String() string {
	switch m {
	case ServerMethodVersion:
		return "version"
	case ServerMethodGetActiveConfiguration:
		return "getActiveConfiguration"
	default:
		return fmt.Sprintf("serverMethod(%d)", byte(m))
	}
}

// KitMethod identifies an RPC method the server may invoke on a kit.
type KitMethod byte

const (
	KitMethodVersion KitMethod = iota + 1
	KitMethodUptime
)

func (m KitMethod) String() string {
	switch m {
	case KitMethodVersion:
		return "version"
	case KitMethodUptime:
		return "uptime"
	default:
		return fmt.Sprintf("kitMethod(%d)", byte(m))
	}
}

// ServerRequest is an RPC request sent by a kit to the server.
type ServerRequest struct {
	ID      uint64
	Method  ServerMethod
	Payload []byte
}

// KitRequest is an RPC request sent by the server to a kit.
type KitRequest struct {
	ID      uint64
	Method  KitMethod
	Payload []byte
}

// ErrorKind classifies an RPC-level error carried in a response.
type ErrorKind byte

const (
	ErrorOther ErrorKind = iota + 1
	ErrorMethodNotFound
	ErrorRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorOther:
		return "other"
	case ErrorMethodNotFound:
		return "methodNotFound"
	case ErrorRateLimited:
		return "rateLimited"
	default:
		return fmt.Sprintf("errorKind(%d)", byte(k))
	}
}

// RPCError is a business-level error reported by the callee in a
// response envelope. It is distinct from DecodeError: the message
// itself was well-formed.
type RPCError struct {
	Kind ErrorKind
	// Wait hints how long the caller should back off before retrying.
	// Only meaningful when Kind is ErrorRateLimited.
	Wait time.Duration
}

func (e *RPCError) Error() string {
	if e.Kind == ErrorRateLimited {
		return fmt.Sprintf("rpc: rate limited, retry in %v", e.Wait)
	}
	return "rpc: " + e.Kind.String()
}

// Response is an RPC response envelope for either direction. Exactly
// one of Result and Err is meaningful: Err == nil means success.
type Response struct {
	ID     uint64
	Result []byte
	Err    *RPCError
}
