package monitoring

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total bookings admitted and confirmed",
		},
	)

	bookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Total bookings cancelled",
		},
	)

	admissionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_rejections_total",
			Help: "Booking requests rejected at admission, by reason",
		},
		[]string{"reason"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued",
		},
	)

	ticketCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_code_collisions_total",
			Help: "Ticket code candidates rejected as duplicates",
		},
	)

	ticketsUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_used_total",
			Help: "Total tickets marked as used",
		},
	)
)

func RecordBookingCreated()   { bookingsCreated.Inc() }
func RecordBookingCancelled() { bookingsCancelled.Inc() }

func RecordAdmissionRejected(reason string) {
	admissionRejections.WithLabelValues(reason).Inc()
}

func RecordTicketsIssued(count int) { ticketsIssued.Add(float64(count)) }
func RecordTicketCodeCollision()    { ticketCodeCollisions.Inc() }
func RecordTicketUsed()             { ticketsUsed.Inc() }

// RegisterRoutes 掛載 /metrics
func RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
