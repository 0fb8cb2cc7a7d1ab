// Package topic maps MQTT topic names to (kit serial, channel) pairs
// and back. It is the only place topic string syntax is known.
package topic

import "strings"

// Channel classifies a kit topic by the kind of traffic it carries.
type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelRawMeasurement
	ChannelAggregateMeasurement
	ChannelServerRPCRequest
	ChannelServerRPCResponse
	ChannelKitRPCRequest
	ChannelKitRPCResponse
)

func (c Channel) String() string {
	switch c {
	case ChannelRawMeasurement:
		return "rawMeasurement"
	case ChannelAggregateMeasurement:
		return "aggregateMeasurement"
	case ChannelServerRPCRequest:
		return "serverRpcRequest"
	case ChannelServerRPCResponse:
		return "serverRpcResponse"
	case ChannelKitRPCRequest:
		return "kitRpcRequest"
	case ChannelKitRPCResponse:
		return "kitRpcResponse"
	default:
		return "unknown"
	}
}

// SubscribeFilter covers every kit topic the bridge consumes.
const SubscribeFilter = "kit/#"

var suffixes = map[Channel]string{
	ChannelRawMeasurement:       "measurement/raw",
	ChannelAggregateMeasurement: "measurement/aggregate",
	ChannelServerRPCRequest:     "server-rpc/request",
	ChannelServerRPCResponse:    "server-rpc/response",
	ChannelKitRPCRequest:        "kit-rpc/request",
	ChannelKitRPCResponse:       "kit-rpc/response",
}

// Parse classifies an MQTT topic name. It returns ok=false for any
// topic outside the documented kit patterns; such topics are ignored
// upstream, never treated as fatal.
func Parse(topic string) (kitSerial string, ch Channel, ok bool) {
	rest, found := strings.CutPrefix(topic, "kit/")
	if !found {
		return "", ChannelUnknown, false
	}
	kitSerial, suffix, found := strings.Cut(rest, "/")
	if !found || kitSerial == "" {
		return "", ChannelUnknown, false
	}
	switch suffix {
	case suffixes[ChannelRawMeasurement]:
		ch = ChannelRawMeasurement
	case suffixes[ChannelAggregateMeasurement]:
		ch = ChannelAggregateMeasurement
	case suffixes[ChannelServerRPCRequest]:
		ch = ChannelServerRPCRequest
	case suffixes[ChannelServerRPCResponse]:
		ch = ChannelServerRPCResponse
	case suffixes[ChannelKitRPCRequest]:
		ch = ChannelKitRPCRequest
	case suffixes[ChannelKitRPCResponse]:
		ch = ChannelKitRPCResponse
	default:
		return "", ChannelUnknown, false
	}
	return kitSerial, ch, true
}

// Format builds the topic name for a kit and channel. It is the
// inverse of Parse for every known channel.
func Format(kitSerial string, ch Channel) string {
	suffix, ok := suffixes[ch]
	if !ok {
		return ""
	}
	return "kit/" + kitSerial + "/" + suffix
}
