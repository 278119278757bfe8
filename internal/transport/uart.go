// uart.go - Serial MIDI bridge over a UART device, grounded on
// doismellburning-samoyed's use of github.com/pkg/term for its own
// serial bridging.

package transport

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"
)

// UARTBridge reads three-byte MIDI-like frames from a serial device.
type UARTBridge struct {
	port   *term.Term
	sink   EventSink
	logger *log.Logger
}

// OpenUART opens device at baud and returns a bridge ready for Serve.
func OpenUART(device string, baud int, sink EventSink, logger *log.Logger) (*UARTBridge, error) {
	port, err := term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, err
	}
	return &UARTBridge{port: port, sink: sink, logger: logger}, nil
}

// Serve reads frames until the port is closed or a read fails.
func (b *UARTBridge) Serve() error {
	frame := make([]byte, 3)
	for {
		if _, err := io.ReadFull(b.port, frame); err != nil {
			if err != io.EOF {
				b.logger.Warn("transport: uart read failed", "err", err)
			}
			return err
		}
		b.sink.HandleMIDI(frame[0], frame[1], frame[2])
	}
}

// Close releases the serial device.
func (b *UARTBridge) Close() error {
	return b.port.Close()
}
