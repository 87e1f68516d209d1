package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Signup outcomes recorded by Service.ObserveSignup.
const (
	SignupAccepted  = "accepted"
	SignupNotFound  = "not_found"
	SignupDuplicate = "duplicate"
	SignupInvalid   = "invalid"
)

// Service holds the metrics recorded by the signup service.
type Service struct {
	requests     CounterVec
	signups      CounterVec
	enrolled     GaugeVec
	capacity     GaugeVec
	lastReported Gauge
}

// NewService registers the service metrics with reg.
func NewService(reg Registry) (*Service, error) {
	requests, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests handled, by route and status code.",
	}, []string{"route", "code"})
	if err != nil {
		return nil, err
	}

	signups, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "signups_total",
		Help: "Signup attempts, by outcome.",
	}, []string{"result"})
	if err != nil {
		return nil, err
	}

	enrolled, err := reg.NewGaugeVec(prometheus.GaugeOpts{
		Name: "activity_participants",
		Help: "Participants signed up for each activity.",
	}, []string{"activity"})
	if err != nil {
		return nil, err
	}

	capacity, err := reg.NewGaugeVec(prometheus.GaugeOpts{
		Name: "activity_max_participants",
		Help: "Advertised capacity of each activity.",
	}, []string{"activity"})
	if err != nil {
		return nil, err
	}

	lastReported, err := reg.NewGauge(prometheus.GaugeOpts{
		Name: "enrollment_report_timestamp_seconds",
		Help: "Unix time of the last enrollment report.",
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		requests:     requests,
		signups:      signups,
		enrolled:     enrolled,
		capacity:     capacity,
		lastReported: lastReported,
	}, nil
}

// ObserveRequest counts a handled HTTP request.
func (s *Service) ObserveRequest(route string, code int) {
	s.requests.With(prometheus.Labels{"route": route, "code": strconv.Itoa(code)}).Inc()
}

// ObserveSignup counts a signup attempt with the given outcome.
func (s *Service) ObserveSignup(result string) {
	s.signups.With(prometheus.Labels{"result": result}).Inc()
}

// SetEnrollment records the participant count and capacity of an activity.
func (s *Service) SetEnrollment(activity string, participants, maxParticipants int) {
	labels := prometheus.Labels{"activity": activity}
	s.enrolled.With(labels).Set(float64(participants))
	s.capacity.With(labels).Set(float64(maxParticipants))
}

// SetReportTime records when the last enrollment report ran.
func (s *Service) SetReportTime(unixSeconds int64) {
	s.lastReported.Set(float64(unixSeconds))
}
