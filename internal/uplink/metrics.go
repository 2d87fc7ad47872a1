package uplink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

var uc = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "uplink_frame_count",
	Help: "The number of received frames handled by the Server (per modem and result).",
}, []string{"modem", "result"})

func uplinkFrameCounter(m radio.Modem, result string) prometheus.Counter {
	return uc.With(prometheus.Labels{"modem": m.String(), "result": result})
}
