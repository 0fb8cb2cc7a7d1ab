// Package wire implements the envelopes used on the MQTT topics
// between kits and the bridge: raw and aggregate measurements, and the
// RPC request/response envelopes for both directions. The schema is
// defined in wirepb/wire.proto and serialized as protobuf.
//
// Decoding is strict: truncated, malformed or schema-violating input
// yields a typed *DecodeError and never panics, since payloads arrive
// from untrusted publishers.
package wire
