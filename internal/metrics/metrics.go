// Package metrics counts frames and command outcomes for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics are the remote's counters.
type Metrics struct {
	Frames       *prometheus.CounterVec // labels: frame
	Commands     *prometheus.CounterVec // labels: command, result
	EncoderTicks *prometheus.CounterVec // labels: encoder, direction
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bkm10r_frames_total",
			Help: "Frames written to the serial link.",
		}, []string{"frame"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bkm10r_commands_total",
			Help: "Commands executed, by outcome.",
		}, []string{"command", "result"}),
		EncoderTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bkm10r_encoder_ticks_total",
			Help: "Encoder ticks sent.",
		}, []string{"encoder", "direction"}),
	}
	reg.MustRegister(m.Frames, m.Commands, m.EncoderTicks)
	return m
}

// FrameSent counts one frame.
func (m *Metrics) FrameSent(name string) {
	m.Frames.WithLabelValues(name).Inc()
}

// CommandDone counts one command outcome.
func (m *Metrics) CommandDone(command, result string) {
	m.Commands.WithLabelValues(command, result).Inc()
}

// EncoderTurned counts the magnitude of an encoder turn.
func (m *Metrics) EncoderTurned(encoder string, ticks int) {
	dir := "up"
	if ticks < 0 {
		dir = "down"
		ticks = -ticks
	}
	m.EncoderTicks.WithLabelValues(encoder, dir).Add(float64(ticks))
}

// Serve exposes reg on addr at path until ctx is done.
func Serve(ctx context.Context, addr, path string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle(path, Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
