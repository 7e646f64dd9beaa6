// Package bkm10r records and sniffs BKM-10r link traffic.
package bkm10r

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.tigermatt.uk/bkm10r/protocol"
)

// Message is one captured chunk of link traffic. Frame is set when the chunk
// was written by the transmitter as a whole frame.
type Message struct {
	Data      []byte
	Timestamp time.Time
	Frame     string
}

// Recorder writes Messages to Dest as a gob stream.
type Recorder struct {
	Dest io.Writer

	enc  *gob.Encoder
	once sync.Once
	mu   sync.Mutex
}

func (r *Recorder) Receive(msg Message) error {
	r.init()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(msg)
}

// RecordFrame captures a frame as it is sent.
func (r *Recorder) RecordFrame(f protocol.Frame) error {
	return r.Receive(Message{Data: f.Data(), Timestamp: time.Now(), Frame: f.Name})
}

func (r *Recorder) init() {
	r.once.Do(func() {
		r.enc = gob.NewEncoder(r.Dest)
	})
}

// ReadIn decodes a capture from r onto out, closing out when done.
func ReadIn(out chan<- Message, r io.Reader) error {
	defer close(out)

	dec := gob.NewDecoder(r)

	for {
		var msg Message
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("while decoding: %w", err)
		}

		out <- msg
	}
}
