// Package engine implements the core orchestration logic for bote.
// The Engine struct implements transport.ChatStreamer, bridging incoming
// chat requests to the upstream chat completions backend. It handles
// message translation, request building, stream event forwarding, token
// counting, and the conversion of every failure into a reported text
// part so that a started exchange always ends in a terminal event.
package engine
