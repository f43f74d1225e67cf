package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UnitsClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyor_units_claimed_total",
			Help: "Work units claimed by dispatcher workers",
		},
		[]string{"provider"},
	)

	ClaimRacesLost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyor_claim_races_lost_total",
			Help: "Claim compare-and-swap attempts that lost to another worker",
		},
		[]string{"provider"},
	)

	UnitsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyor_units_finished_total",
			Help: "Work unit attempts by outcome (complete, retry, failed)",
		},
		[]string{"provider", "outcome"},
	)

	Invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyor_provider_invocations_total",
			Help: "Provider invocations by outcome",
		},
		[]string{"provider", "outcome"},
	)

	InvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surveyor_provider_invocation_duration_seconds",
			Help:    "Provider invocation latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	UnparsedResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyor_unparsed_responses_total",
			Help: "Item responses with no score on the instrument scale",
		},
		[]string{"provider", "instrument"},
	)

	StaleRecovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyor_stale_units_recovered_total",
			Help: "Stale locked/running units reset by the sweep, by resulting status",
		},
		[]string{"status"},
	)

	InFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "surveyor_units_in_flight",
			Help: "Work units currently executing in this process",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		UnitsClaimed,
		ClaimRacesLost,
		UnitsFinished,
		Invocations,
		InvocationDuration,
		UnparsedResponses,
		StaleRecovered,
		InFlight,
	)
}

// Handler exposes the default registry for gin
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
