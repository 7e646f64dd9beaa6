package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FrameSent("ISW")
	m.FrameSent("ISW")
	m.FrameSent("MENU")
	m.CommandDone("Menu", "ok")
	m.EncoderTurned("PHASE_ENC", -3)
	m.EncoderTurned("PHASE_ENC", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Frames.WithLabelValues("ISW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames.WithLabelValues("MENU")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("Menu", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EncoderTicks.WithLabelValues("PHASE_ENC", "down")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EncoderTicks.WithLabelValues("PHASE_ENC", "up")))
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	New(reg).FrameSent("POWER")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `bkm10r_frames_total{frame="POWER"} 1`)
}
