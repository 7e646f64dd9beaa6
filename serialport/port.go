// Package serialport is the BKM-10r link over a local serial device.
package serialport

import (
	"errors"
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaud is the only rate the BKM-10r link runs at.
const DefaultBaud = 38400

// ErrNotOpen is returned by Write and Flush before Open or after Close.
var ErrNotOpen = errors.New("serial port not open")

type opener func(name string, mode *serial.Mode) (serial.Port, error)

// Port owns one serial device for the life of a session. Open and Close are
// idempotent.
type Port struct {
	name string
	mode serial.Mode
	open opener

	mu   sync.Mutex
	port serial.Port
}

// New returns a closed Port for device name. A baud of zero means DefaultBaud.
func New(name string, baud int) *Port {
	if baud == 0 {
		baud = DefaultBaud
	}
	return &Port{
		name: name,
		mode: serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: serial.Open,
	}
}

// Name returns the device path.
func (p *Port) Name() string { return p.name }

// Open opens the device. Opening an open port does nothing.
func (p *Port) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port != nil {
		return nil
	}

	mode := p.mode
	port, err := p.open(p.name, &mode)
	if err != nil {
		return fmt.Errorf("while opening serial port %s: %w", p.name, err)
	}
	p.port = port
	return nil
}

// Write sends b as a whole.
func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return 0, ErrNotOpen
	}

	written := 0
	for written < len(b) {
		n, err := p.port.Write(b[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("writing to serial port: %w", err)
		}
		if n == 0 {
			return written, fmt.Errorf("writing to serial port: short write (%d of %d)", written, len(b))
		}
	}
	return written, nil
}

// Flush blocks until everything written has been transmitted.
func (p *Port) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return ErrNotOpen
	}
	if err := p.port.Drain(); err != nil {
		return fmt.Errorf("draining serial port: %w", err)
	}
	return nil
}

// Close releases the device. Closing a closed port does nothing.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	if err != nil {
		return fmt.Errorf("closing serial port: %w", err)
	}
	return nil
}

// IsOpen reports whether the device is held open.
func (p *Port) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port != nil
}

// List returns the serial devices present on the host.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	return ports, nil
}
