// Package api defines the host-facing protocol types for the bote chat bridge.
//
// This package provides the data types of the chat exchange surface: chat
// messages whose content is plain text or a mixed list of text, tool-call,
// and tool-result parts; the ContentPart tagged union with its explicit
// type discriminant; streaming exchange events; the fixed model descriptor
// shape; token-count requests; error types; and exchange ID generation.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O.
//
// Core types:
//   - [ChatMessage]: one message of an exchange, text or part-list content
//   - [ContentPart]: tagged union of text, tool_call, and tool_result parts
//   - [ChatRequest]: client request for one streamed exchange
//   - [StreamEvent]: server-sent event of an exchange stream
//   - [Model]: catalog descriptor with token limits and capabilities
//   - [APIError]: structured error with type, code, param, and message
//
// Content discrimination:
//
// Parts are distinguished solely by their Type field. Consumers must switch
// on the discriminant; classifying a part by which payload fields happen to
// be populated is not supported.
package api
