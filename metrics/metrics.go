package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corundum.dev/node/consensus"
)

var (
	retargetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corundum_retargets_total",
		Help: "The total number of difficulty retargets computed",
	})
	difficultyBits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corundum_difficulty_bits",
		Help: "The compact difficulty bits produced by the latest retarget",
	})
	tipHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corundum_tip_height",
		Help: "The height of the current chain tip",
	})
)

// RetargetObserver returns an observer that meters difficulty adjustments.
func RetargetObserver() consensus.RetargetObserver {
	return func(ev consensus.RetargetEvent) {
		retargetsTotal.Inc()
		difficultyBits.Set(float64(ev.NewBits))
	}
}

// SetTipHeight records the current chain tip height.
func SetTipHeight(height uint64) {
	tipHeight.Set(float64(height))
}

// Start serves the Prometheus handler in the background.
func Start(listenAddress string, listenPort uint) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		// Errors here only mean metrics are unavailable; they never stop
		// validation.
		_ = http.ListenAndServe(
			fmt.Sprintf("%s:%d", listenAddress, listenPort),
			nil,
		)
	}()
}
