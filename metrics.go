package amqpwire

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters/gauges a Connection reports to, wired the way
// the keda adapter wires its own scaler metrics: a Namespace/Subsystem pair
// of vectors registered once by the caller, passed in rather than owned as
// package globals so a process hosting multiple connections can label them.
type Metrics struct {
	FramesSent     prometheus.Counter
	FramesReceived prometheus.Counter
	BytesSent      prometheus.Counter
	BytesReceived  prometheus.Counter
	ChannelsOpen   prometheus.Gauge
	Errors         *prometheus.CounterVec
}

// NewMetrics builds a Metrics with the given namespace, registering nothing
// itself - callers MustRegister the returned vectors (or Unregister/replace
// them, e.g. in tests) on whichever *prometheus.Registry they run.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "connection", Name: "frames_sent_total",
			Help: "Total AMQP frames written to the socket.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "connection", Name: "frames_received_total",
			Help: "Total AMQP frames read from the socket.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "connection", Name: "bytes_sent_total",
			Help: "Total bytes written to the socket, including frame envelopes.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "connection", Name: "bytes_received_total",
			Help: "Total bytes read from the socket.",
		}),
		ChannelsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "connection", Name: "channels_open",
			Help: "Number of channels currently registered on the connection.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "connection", Name: "errors_total",
			Help: "Total terminal connection errors, labelled by AMQP reply code.",
		}, []string{"code"}),
	}
}

// Register adds every collector in m to reg.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{m.FramesSent, m.FramesReceived, m.BytesSent, m.BytesReceived, m.ChannelsOpen, m.Errors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeSend(f Frame) {
	if m == nil {
		return
	}
	m.FramesSent.Inc()
	m.BytesSent.Add(float64(frameHeaderSize + 1 + len(f.Payload)))
}

func (m *Metrics) observeRecv(f Frame) {
	if m == nil {
		return
	}
	m.FramesReceived.Inc()
	m.BytesReceived.Add(float64(frameHeaderSize + 1 + len(f.Payload)))
}

func (m *Metrics) observeChannelDelta(delta int) {
	if m == nil {
		return
	}
	m.ChannelsOpen.Add(float64(delta))
}

func (m *Metrics) observeError(err error) {
	if m == nil || err == nil {
		return
	}
	code := "0"
	if ae, ok := err.(AMQPError); ok {
		code = strconv.Itoa(int(ae.Code()))
	}
	m.Errors.WithLabelValues(code).Inc()
}
