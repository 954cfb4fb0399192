package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool bridge metrics
	ToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_tool_calls_total",
			Help: "Total number of bridged tool calls",
		},
		[]string{"tool", "status"}, // status: success|error|not_started
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_tool_latency_seconds",
			Help:    "Bridged tool call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool"},
	)

	// Agent metrics
	AgentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_agent_runs_total",
			Help: "Total number of agent runs",
		},
		[]string{"agent", "model", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_agent_latency_seconds",
			Help:    "Agent run latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Data provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_provider_calls_total",
			Help: "Total number of external data provider calls",
		},
		[]string{"provider", "endpoint", "status"},
	)

	// HTTP API metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"route", "method", "code"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_http_latency_seconds",
			Help:    "HTTP API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(ToolCalls)
	prometheus.MustRegister(ToolLatency)

	prometheus.MustRegister(AgentRuns)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	prometheus.MustRegister(ProviderCalls)

	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPLatency)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordToolCall records one bridged tool call
func RecordToolCall(tool, status string, duration time.Duration) {
	ToolCalls.WithLabelValues(tool, status).Inc()
	ToolLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordAgentRun records one specialist or orchestrator run
func RecordAgentRun(agent, model string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	AgentRuns.WithLabelValues(agent, model, status).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(duration.Seconds())
}

// RecordTokens records prompt and completion token usage
func RecordTokens(agent, model string, input, output int) {
	if input > 0 {
		AgentTokens.WithLabelValues(agent, model, "input").Add(float64(input))
	}
	if output > 0 {
		AgentTokens.WithLabelValues(agent, model, "output").Add(float64(output))
	}
}

// RecordHTTPRequest records one API request by route pattern
func RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPLatency.WithLabelValues(route).Observe(duration.Seconds())
}
