package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/hours"
	"github.com/username/business-calendar/internal/slots"
)

// HolidaySource lists the public holidays of a year
type HolidaySource interface {
	Holidays(year int) []calendar.Holiday
	Jurisdiction() calendar.Jurisdiction
}

// SlotOffer produces the appointment slots of a day
type SlotOffer interface {
	Offer(date time.Time) ([]slots.Slot, error)
}

// Server exposes the business calendar over HTTP
type Server struct {
	holidays HolidaySource
	calendar calendar.Calendar
	policy   hours.Policy
	slots    SlotOffer
	logger   *zap.Logger
	metrics  *Metrics
}

// NewServer creates a new Server. metrics may be nil.
func NewServer(holidays HolidaySource, cal calendar.Calendar, policy hours.Policy, offer SlotOffer, metrics *Metrics, logger *zap.Logger) *Server {
	return &Server{
		holidays: holidays,
		calendar: cal,
		policy:   policy,
		slots:    offer,
		logger:   logger,
		metrics:  metrics,
	}
}

// Router builds the HTTP routes. metricsPath is skipped when empty or metrics are disabled.
func (s *Server) Router(metricsPath string, gatherer prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()

	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		if metricsPath != "" {
			r.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
		}
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/holidays/{year}", s.handleHolidays).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}", s.handleDay).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}/next-business-day", s.handleNextBusinessDay).Methods(http.MethodGet)
	api.HandleFunc("/months/{year}/{month}", s.handleMonth).Methods(http.MethodGet)
	api.HandleFunc("/hours", s.handleHours).Methods(http.MethodGet)
	api.HandleFunc("/hours/lunch-break/{time}", s.handleLunchBreak).Methods(http.MethodGet)
	api.HandleFunc("/slots/{date}", s.handleSlots).Methods(http.MethodGet)

	return r
}
