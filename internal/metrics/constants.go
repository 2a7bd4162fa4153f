package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Engine metric names
const (
	MetricNameCardsDrawn      = "cards_drawn_total"
	MetricNameCardsComposed   = "cards_composed_total"
	MetricNameCardsDecomposed = "cards_decomposed_total"
	MetricNameListingsCreated = "listings_created_total"
	MetricNameTradesCompleted = "trades_completed_total"
	MetricNameOrdersFulfilled = "orders_fulfilled_total"
	MetricNameCurrencySpent   = "currency_spent_total"
	MetricNameCurrencyEarned  = "currency_earned_total"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Engine metric help text
const (
	HelpTextCardsDrawn      = "Total number of cards drawn from packages"
	HelpTextCardsComposed   = "Total number of cards created by composition"
	HelpTextCardsDecomposed = "Total number of cards broken down into materials"
	HelpTextListingsCreated = "Total number of market listings created or extended"
	HelpTextTradesCompleted = "Total number of completed market trades"
	HelpTextOrdersFulfilled = "Total number of fulfilled orders"
	HelpTextCurrencySpent   = "Total currency spent by players"
	HelpTextCurrencyEarned  = "Total currency earned by players"
)

// Metric label names
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelPackage = "package"
	LabelRarity  = "rarity"
)

// HTTPLatencyBuckets covers the expected latency range of engine operations,
// from sub-millisecond cache hits to multi-second lock contention.
var HTTPLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
