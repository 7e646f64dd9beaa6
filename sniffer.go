package bkm10r

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Sniffer reads raw link traffic from Port. A read that times out with
// io.EOF is retried.
type Sniffer struct {
	Port      io.Reader
	OnReceive func([]byte)
}

func (s *Sniffer) Consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		bs := make([]byte, 8)

		n, err := s.Port.Read(bs)
		if n > 0 {
			s.OnReceive(bs[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				continue
			}
			return fmt.Errorf("reading from serial port: %w", err)
		}
	}
}
