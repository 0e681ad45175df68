package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitformula"

var (
	registrationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registration",
		Name:      "requests_total",
		Help:      "Registration requests by outcome (created, full, duplicate, not_found, error).",
	}, []string{"outcome"})

	cancellationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registration",
		Name:      "cancellations_total",
		Help:      "Registrations removed, labeled by who removed them.",
	}, []string{"actor"})

	notificationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "sent_total",
		Help:      "Notifications persisted, labeled by notification type.",
	}, []string{"type"})

	notificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "failures_total",
		Help:      "Notification delivery failures, labeled by channel.",
	}, []string{"channel"})

	reminderScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "scan_duration_seconds",
		Help:      "Time spent on one reminder scan.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	remindersCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "sent_total",
		Help:      "Reminder notifications handed to the sink.",
	})

	reminderLastScan = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "last_scan_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed reminder scan.",
	})

	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "websocket",
		Name:      "connections",
		Help:      "Currently connected websocket clients.",
	})
)

func init() {
	prometheus.MustRegister(
		registrationsCounter,
		cancellationsCounter,
		notificationsCounter,
		notificationFailures,
		reminderScanDuration,
		remindersCounter,
		reminderLastScan,
		wsConnections,
	)
}

// RecordRegistration counts a registration attempt by outcome.
func RecordRegistration(outcome string) {
	registrationsCounter.WithLabelValues(outcome).Inc()
}

// RecordCancellation counts a removed registration; actor is "user" or "trainer".
func RecordCancellation(actor string) {
	cancellationsCounter.WithLabelValues(actor).Inc()
}

// RecordNotification counts a persisted notification.
func RecordNotification(notificationType string) {
	notificationsCounter.WithLabelValues(notificationType).Inc()
}

// RecordNotificationFailure counts a failed delivery on a channel.
func RecordNotificationFailure(channel string) {
	notificationFailures.WithLabelValues(channel).Inc()
}

// RecordReminderScan observes a finished scan and how many reminders it sent.
func RecordReminderScan(started time.Time, finished time.Time, sent int) {
	reminderScanDuration.Observe(finished.Sub(started).Seconds())
	remindersCounter.Add(float64(sent))
	reminderLastScan.Set(float64(finished.Unix()))
}

// SetWebSocketConnections reports the live client count.
func SetWebSocketConnections(n int) {
	wsConnections.Set(float64(n))
}
