// Package rpc layers request/response semantics on top of
// fire-and-forget MQTT publishes. The correlation table pairs
// responses with pending requests and synthesizes timeouts, the kit
// client issues server-to-kit calls, and the server handler answers
// kit-to-server calls.
package rpc
