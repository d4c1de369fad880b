package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the set of business metrics the services report.
type Recorder interface {
	BookingCreated()
	BookingConflict()
	BookingConfirmed()
	ReminderProcessed(result string)
	ObserveDrain(d time.Duration)
}

const (
	ReminderResultSent   = "sent"
	ReminderResultRetry  = "retry"
	ReminderResultFailed = "failed"
)

type Prometheus struct {
	registry          *prometheus.Registry
	bookingsCreated   prometheus.Counter
	bookingConflicts  prometheus.Counter
	bookingsConfirmed prometheus.Counter
	reminders         *prometheus.CounterVec
	drainDuration     prometheus.Histogram
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Prometheus{
		registry: registry,
		bookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "salon_bookings_created_total",
			Help: "Booking requests accepted as pending.",
		}),
		bookingConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "salon_booking_conflicts_total",
			Help: "Booking requests rejected because the slot was already held.",
		}),
		bookingsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "salon_bookings_confirmed_total",
			Help: "Bookings confirmed or rescheduled by staff.",
		}),
		reminders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_reminders_processed_total",
			Help: "Reminder send attempts by outcome.",
		}, []string{"result"}),
		drainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "salon_reminder_drain_duration_seconds",
			Help:    "Wall time of one reminder drain pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (p *Prometheus) BookingCreated()   { p.bookingsCreated.Inc() }
func (p *Prometheus) BookingConflict()  { p.bookingConflicts.Inc() }
func (p *Prometheus) BookingConfirmed() { p.bookingsConfirmed.Inc() }

func (p *Prometheus) ReminderProcessed(result string) {
	p.reminders.WithLabelValues(result).Inc()
}

func (p *Prometheus) ObserveDrain(d time.Duration) {
	p.drainDuration.Observe(d.Seconds())
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Noop discards every observation.
type Noop struct{}

func (Noop) BookingCreated()            {}
func (Noop) BookingConflict()           {}
func (Noop) BookingConfirmed()          {}
func (Noop) ReminderProcessed(string)   {}
func (Noop) ObserveDrain(time.Duration) {}
