package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

var (
	uc = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_uplink_count",
		Help: "The number of uplink frames handed to the receive loop (per modem).",
	}, []string{"modem"})

	dc = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_uplink_dropped_count",
		Help: "The number of dropped uplink frames (per reason).",
	}, []string{"reason"})
)

func bridgeUplinkCounter(m radio.Modem) prometheus.Counter {
	return uc.With(prometheus.Labels{"modem": m.String()})
}

func bridgeDroppedCounter(reason string) prometheus.Counter {
	return dc.With(prometheus.Labels{"reason": reason})
}
