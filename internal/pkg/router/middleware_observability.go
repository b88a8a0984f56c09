package router

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// bodyLogLimit caps how much of a request or response body ends up in a
// log record. Anything beyond it is truncated, never buffered.
const bodyLogLimit = 32 * 1024

// responseTap wraps the ResponseWriter to observe what the handler wrote:
// status code, byte count, a bounded copy of the body, and any error the
// JSON responder attached via SetError.
type responseTap struct {
	http.ResponseWriter
	status    int
	written   int
	body      *bytes.Buffer
	truncated bool
	err       error
}

func (t *responseTap) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}

	if t.body != nil && !t.truncated && len(p) > 0 {
		room := bodyLogLimit - t.body.Len()
		switch {
		case room <= 0:
			t.truncated = true
		case len(p) > room:
			t.body.Write(p[:room])
			t.truncated = true
		default:
			t.body.Write(p)
		}
	}

	n, err := t.ResponseWriter.Write(p)
	t.written += n
	return n, err
}

func (t *responseTap) SetError(err error) { t.err = err }

func (t *responseTap) statusCode() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}

func (t *responseTap) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (t *responseTap) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := t.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (t *responseTap) Push(target string, opts *http.PushOptions) error {
	if p, ok := t.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

// loggedBody renders the captured response body for the log record,
// masking sensitive JSON fields and flagging truncation.
func (t *responseTap) loggedBody(mask map[string]struct{}) any {
	if t.body == nil {
		return nil
	}

	var body any
	var decoded any
	switch {
	case json.Unmarshal(t.body.Bytes(), &decoded) == nil:
		body = maskValue(decoded, mask)
	case utf8.Valid(t.body.Bytes()):
		body = t.body.String()
	case t.body.Len() > 0:
		body = "<binary body omitted>"
	}

	if t.truncated {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// maskFieldSet reads instrument.log_mask_fields into a lowercase lookup set.
func maskFieldSet(cfg config.Config) map[string]struct{} {
	mask := make(map[string]struct{})
	if cfg == nil {
		return mask
	}
	for _, field := range cfg.GetArray("instrument.log_mask_fields") {
		if field = strings.TrimSpace(strings.ToLower(field)); field != "" {
			mask[field] = struct{}{}
		}
	}
	return mask
}

func redactHeaders(headers http.Header, mask map[string]struct{}) http.Header {
	if len(mask) == 0 {
		return headers
	}

	out := headers.Clone()
	for key := range out {
		if _, hit := mask[strings.ToLower(key)]; hit {
			out.Set(key, "***")
		}
	}
	return out
}

// maskValue walks decoded JSON and replaces values whose key is in the
// mask set. Nested objects and arrays are walked recursively.
func maskValue(v any, mask map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if _, hit := mask[strings.ToLower(k)]; hit {
				out[k] = "***"
				continue
			}
			out[k] = maskValue(inner, mask)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = maskValue(inner, mask)
		}
		return out
	default:
		return v
	}
}

// peekRequestBody reads up to the log limit from the request body and
// splices the consumed bytes back so the handler still sees the full
// stream.
func peekRequestBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	//nolint:errcheck // best effort for logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, bodyLogLimit+1))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	if len(head) > bodyLogLimit {
		head = head[:bodyLogLimit]
	}
	return head
}

// loggableRequestBody decodes the sniffed request body for logging. JSON
// and form-encoded payloads are masked field by field, anything else is
// logged as text when printable.
func loggableRequestBody(contentType string, body []byte, mask map[string]struct{}) any {
	if len(body) == 0 {
		return nil
	}

	var decoded any
	if json.Unmarshal(body, &decoded) == nil {
		return maskValue(decoded, mask)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			out := make(map[string]any, len(values))
			for k, v := range values {
				if _, hit := mask[strings.ToLower(k)]; hit {
					out[k] = "***"
				} else if len(v) == 1 {
					out[k] = v[0]
				} else {
					out[k] = v
				}
			}
			return out
		}
	}

	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	if len(body) > bodyLogLimit {
		return string(body[:bodyLogLimit]) + "...(truncated)"
	}
	return string(body)
}

// finishSpan stamps the span with the response outcome and the remaining
// request attributes once the handler returns.
func finishSpan(span trace.Span, r *http.Request, tap *responseTap, attrs []attribute.KeyValue) {
	if tap.err != nil {
		span.RecordError(tap.err)
	}

	switch {
	case tap.statusCode() < 500:
		span.SetStatus(codes.Ok, "")
	case tap.err != nil:
		span.SetStatus(codes.Error, tap.err.Error())
	default:
		span.SetStatus(codes.Error, http.StatusText(tap.statusCode()))
	}

	span.SetAttributes(attrs...)
	span.SetAttributes(
		semconv.NetworkProtocolVersionKey.String(r.Proto),
		semconv.ServerAddressKey.String(r.Host),
		attribute.String("http.target", r.URL.Path),
		attribute.String("http.user_agent", r.UserAgent()),
		attribute.Int("http.response_content_length", tap.written),
	)
}

// middlewareObservability traces, meters, and logs every request and its
// response. Bodies are captured up to a fixed limit with configured
// sensitive fields masked.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	mask := maskFieldSet(cfg)
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requestCounter, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	durationHistogram, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(
				r.Context(),
				r.Method+" "+route,
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			reqBody := peekRequestBody(r)
			slog.InfoContext(
				ctx,
				"request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"headers", redactHeaders(r.Header, mask),
				"body", loggableRequestBody(r.Header.Get("Content-Type"), reqBody, mask),
			)

			tap := &responseTap{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(tap, r.WithContext(ctx))

			status := tap.statusCode()
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}
			finishSpan(span, r, tap, attrs)

			if requestCounter != nil {
				requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if durationHistogram != nil {
				durationHistogram.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
			}

			slog.InfoContext(
				ctx,
				"response sent",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"status", status,
				"bytes", tap.written,
				"latency_ms", time.Since(start).Milliseconds(),
				"body", tap.loggedBody(mask),
			)
		})
	}
}
