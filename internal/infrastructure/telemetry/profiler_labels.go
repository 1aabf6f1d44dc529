package telemetry

import (
	"context"
	"maps"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys used when tagging profiles.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelAdminRole  = "admin_role"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelRegion     = "region"
)

// MaxLabelValueLength caps label values; longer values get truncated
// before they reach Pyroscope.
const MaxLabelValueLength = 128

// HighCardinalityLabels lists label keys that are dropped outright. Each
// distinct value creates a separate profile series, so per-request and
// per-user identifiers would blow up Pyroscope's memory. admin_role is
// deliberately absent: the role set is small and fixed.
//
// Treat this map as read-only.
var HighCardinalityLabels = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"order_id":   true,
	"trace_id":   true,
	"span_id":    true,
	"session_id": true,
}

// labelPairs copies, sanitizes and flattens the labels map. The copy
// means callers may keep mutating their map afterwards.
func labelPairs(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	snapshot := make(map[string]string, len(labels))
	maps.Copy(snapshot, labels)

	return sanitizeLabels(snapshot)
}

// WithProfilingLabels runs fn with the labels attached to its profile
// samples, so the data can be sliced by handler or operation in the
// Pyroscope UI:
//
//	telemetry.WithProfilingLabels(ctx, map[string]string{
//	    "controller": "CeilingHandler",
//	    "operation":  "ImportCeilings",
//	}, func(c context.Context) {
//	    processImport(c)
//	})
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// WithPprofLabels is the same tagging through Go's native pprof API.
// pyroscope.TagWrapper and pprof.Do produce identical label behavior;
// use this variant when the output must stay readable by standard Go
// profiling tools.
func WithPprofLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}

	pprof.Do(ctx, pprof.Labels(pairs...), fn)
}

// ProfilingScope accumulates labels before running a tagged function.
type ProfilingScope struct {
	labels map[string]string
}

// NewProfilingScope starts a scope from an initial label set.
func NewProfilingScope(labels map[string]string) *ProfilingScope {
	scope := &ProfilingScope{
		labels: make(map[string]string),
	}
	maps.Copy(scope.labels, labels)
	return scope
}

// WithLabel adds a single label.
func (s *ProfilingScope) WithLabel(key, value string) *ProfilingScope {
	s.labels[key] = value
	return s
}

// WithController adds the controller label.
func (s *ProfilingScope) WithController(controller string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelController, controller)
}

// WithRoute adds the route label.
func (s *ProfilingScope) WithRoute(route string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRoute, route)
}

// WithMethod adds the method label.
func (s *ProfilingScope) WithMethod(method string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelMethod, method)
}

// WithAdminRole adds the admin_role label.
func (s *ProfilingScope) WithAdminRole(role string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelAdminRole, role)
}

// WithOperation adds the operation label.
func (s *ProfilingScope) WithOperation(operation string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelOperation, operation)
}

// WithRegion adds the region label.
func (s *ProfilingScope) WithRegion(region string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRegion, region)
}

// Labels returns a copy of the accumulated labels.
func (s *ProfilingScope) Labels() map[string]string {
	result := make(map[string]string, len(s.labels))
	maps.Copy(result, s.labels)
	return result
}

// Run executes fn tagged with the accumulated labels.
func (s *ProfilingScope) Run(ctx context.Context, fn func(context.Context)) {
	WithProfilingLabels(ctx, s.labels, fn)
}

// sanitizeLabels flattens the map into a key-sorted pair slice. Empty
// keys and values are dropped, high-cardinality keys are dropped
// silently (logging here would spam hot paths), and overlong values get
// truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" || HighCardinalityLabels[key] {
			continue
		}

		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}

		normalized := normalizeLabelKey(key)
		if normalized == "" {
			continue
		}

		pairs = append(pairs, normalized, value)
	}

	return pairs
}

// normalizeLabelKey forces keys into snake_case: lowercased, separators
// become underscores, anything else non-alphanumeric is stripped.
func normalizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	result := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			result = append(result, c)
		}
	}

	return string(result)
}

// HTTPRequestLabels builds the standard label set for request handlers.
// Empty arguments are left out.
func HTTPRequestLabels(controller, route, method, role string) map[string]string {
	labels := make(map[string]string, 4)

	if controller != "" {
		labels[ProfilingLabelController] = controller
	}
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	if role != "" {
		labels[ProfilingLabelAdminRole] = role
	}

	return labels
}

// OperationLabels builds labels for a named operation.
func OperationLabels(operation string, extraLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(extraLabels)+1)
	labels[ProfilingLabelOperation] = operation
	maps.Copy(labels, extraLabels)

	return labels
}

// RegionLabels builds labels for a code region such as a database call or
// an external API request.
func RegionLabels(region string, extraLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(extraLabels)+1)
	labels[ProfilingLabelRegion] = region
	maps.Copy(labels, extraLabels)

	return labels
}
