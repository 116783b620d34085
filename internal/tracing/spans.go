package tracing

// Span attribute keys.
const (
	AttrHTTPMethod  = "http.request.method"
	AttrHTTPRoute   = "http.route"
	AttrHTTPPath    = "url.path"
	AttrHTTPStatus  = "http.response.status_code"
	AttrRequestID   = "request.id"
	AttrRetryCount  = "http.request.resend_count"
	AttrCollection  = "backoffice.collection"
	AttrErrorDetail = "error.detail"
)

// Span name prefixes.
const (
	SpanPrefixClient = "api."
	SpanPrefixServer = "devserver."
)

// Event names.
const (
	EventRetry = "http.retry"
)
