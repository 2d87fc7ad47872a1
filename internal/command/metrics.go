package command

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
)

var cc = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "command_count",
	Help: "The number of handled commands (per function and result).",
}, []string{"function", "result"})

func commandCounter(id fcp.FunctionID, result string) prometheus.Counter {
	return cc.With(prometheus.Labels{"function": id.String(), "result": result})
}
