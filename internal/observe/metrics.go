package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	onlineSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_sessions",
		Help: "Number of live chat sessions",
	})

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total broadcast fan-outs by room",
		},
		[]string{"room"},
	)

	deliveryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_delivery_failures_total",
		Help: "Total per-recipient delivery failures during broadcast",
	})

	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rate_limited_messages_total",
		Help: "Total messages dropped by the per-session rate limiter",
	})

	oversizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_oversized_messages_total",
		Help: "Total messages rejected for exceeding the size cap",
	})

	rejectedSessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rejected_sessions_total",
		Help: "Total connections refused because the server was full",
	})

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_commands_total",
			Help: "Total commands executed by name",
		},
		[]string{"name"},
	)

	commandErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_command_errors_total",
			Help: "Total command errors by reason",
		},
		[]string{"reason"}, // not_found|handler
	)
)

func init() {
	prometheus.MustRegister(
		onlineSessions,
		messagesTotal,
		deliveryFailuresTotal,
		rateLimitedTotal,
		oversizedTotal,
		rejectedSessionsTotal,
		commandsTotal,
		commandErrorsTotal,
	)
}

func AddOnline(delta float64)       { onlineSessions.Add(delta) }
func IncMessage(room string)        { messagesTotal.WithLabelValues(room).Inc() }
func IncDeliveryFailure()           { deliveryFailuresTotal.Inc() }
func IncRateLimited()               { rateLimitedTotal.Inc() }
func IncOversized()                 { oversizedTotal.Inc() }
func IncRejectedSession()           { rejectedSessionsTotal.Inc() }
func IncCommand(name string)        { commandsTotal.WithLabelValues(name).Inc() }
func IncCommandError(reason string) { commandErrorsTotal.WithLabelValues(reason).Inc() }
