// transport.go - Shared types for the MIDI-like event ingress boundary of
// spec.md §6. Every transport in this package parses or accepts three-byte
// {status, data1, data2} messages and forwards them through an EventSink.

package transport

// EventSink receives parsed MIDI-like events from any transport. It is
// satisfied by *synth.Engine (HandleMIDI has exactly this signature); kept
// as a narrow local interface so this package does not import synth for
// anything but this one method shape.
type EventSink interface {
	HandleMIDI(status, data1, data2 byte)
}
