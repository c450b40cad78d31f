// Package comm provides the matrix link protocol.
package comm

// The link protocol is communicated between a host and an LED matrix
// controller over a peer-to-peer byte stream (e.g. serial port) which has
// no delimiters of its own.
//
// An image is always one 64-byte payload of RGB332 pixels in row-major
// order. Two framings are supported:
//
//	ModeEcho:     [PAYLOAD(64)]
//	ModeChecksum: "START" [PAYLOAD(64)] "END" [SUM(1)]
//
// SUM is the unsigned 8-bit sum of the payload bytes, wrapping on overflow.
//
// In ModeEcho the controller mirrors the payload and the host compares the
// echo byte-for-byte. In ModeChecksum the receiver recomputes SUM and
// compares it to the trailer. Nothing is retried inside this package;
// callers decide whether to send again.
//
// Producer: host
// Consumer: LED matrix controller
