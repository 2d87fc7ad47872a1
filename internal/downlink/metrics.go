package downlink

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dfc = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "downlink_frame_count",
		Help: "The number of transmitted responses (per response type).",
	}, []string{"response"})

	dsc = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downlink_suppressed_count",
		Help: "The number of responses dropped because transmission is disabled.",
	})

	dec = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downlink_error_count",
		Help: "The number of responses that failed to transmit.",
	})
)

func downlinkFrameCounter(response interface{}) prometheus.Counter {
	return dfc.With(prometheus.Labels{"response": fmt.Sprint(response)})
}

func downlinkSuppressedCounter() prometheus.Counter {
	return dsc
}

func downlinkErrorCounter() prometheus.Counter {
	return dec
}
