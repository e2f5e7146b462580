package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIMetrics records the service's domain counters.
type APIMetrics struct {
	dealsCreated   prometheus.Counter
	votesCast      *prometheus.CounterVec
	commentsPosted prometheus.Counter
	spamFlagged    prometheus.Counter
	wsClients      prometheus.Gauge
}

// NewAPIMetrics registers the API metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	dealsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deals_created_total",
		Help: "Deals successfully created.",
	})
	votesCast := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_cast_total",
		Help: "Vote mutations by resulting action.",
	}, []string{"action"})
	commentsPosted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comments_posted_total",
		Help: "Comments successfully posted.",
	})
	spamFlagged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deals_spam_flagged_total",
		Help: "Deal submissions rejected by moderation.",
	})
	wsClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "Currently connected websocket clients.",
	})
	reg.MustRegister(dealsCreated, votesCast, commentsPosted, spamFlagged, wsClients)
	return &APIMetrics{
		dealsCreated:   dealsCreated,
		votesCast:      votesCast,
		commentsPosted: commentsPosted,
		spamFlagged:    spamFlagged,
		wsClients:      wsClients,
	}
}

// IncDealsCreated increments the deal creation counter.
func (m *APIMetrics) IncDealsCreated() {
	if m == nil || m.dealsCreated == nil {
		return
	}
	m.dealsCreated.Inc()
}

// IncVotesCast increments the vote counter for the given action
// (inserted, updated, retracted).
func (m *APIMetrics) IncVotesCast(action string) {
	if m == nil || m.votesCast == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.votesCast.WithLabelValues(action).Inc()
}

// IncCommentsPosted increments the comment counter.
func (m *APIMetrics) IncCommentsPosted() {
	if m == nil || m.commentsPosted == nil {
		return
	}
	m.commentsPosted.Inc()
}

// IncSpamFlagged increments the moderation rejection counter.
func (m *APIMetrics) IncSpamFlagged() {
	if m == nil || m.spamFlagged == nil {
		return
	}
	m.spamFlagged.Inc()
}

// WSClientConnected bumps the connected-clients gauge.
func (m *APIMetrics) WSClientConnected() {
	if m == nil || m.wsClients == nil {
		return
	}
	m.wsClients.Inc()
}

// WSClientDisconnected drops the connected-clients gauge.
func (m *APIMetrics) WSClientDisconnected() {
	if m == nil || m.wsClients == nil {
		return
	}
	m.wsClients.Dec()
}

// Handler exposes the registry over HTTP for scraping.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
