package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	metricCycles         = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_cycles_total", Help: "Analysis cycles run"})
	metricCycleErrors    = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_cycle_errors_total", Help: "Cycles that failed with an error"})
	metricOrdersFilled   = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_orders_filled_total", Help: "Orders filled by the broker"})
	metricOrdersRejected = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_orders_rejected_total", Help: "Orders rejected by the broker"})
	metricStopLossExits  = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_stop_loss_exits_total", Help: "Positions force-closed by the stop-loss scan"})
	metricEntriesBlocked = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_entries_blocked_total", Help: "Buy signals blocked by the risk gate"})
)

func init() {
	prometheus.MustRegister(
		metricCycles, metricCycleErrors,
		metricOrdersFilled, metricOrdersRejected,
		metricStopLossExits, metricEntriesBlocked,
	)
}
