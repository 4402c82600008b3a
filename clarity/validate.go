package clarity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// WeightPolicy decides what happens to a penalty_weight outside [0, 1].
type WeightPolicy string

const (
	// WeightClamp pins out-of-range weights to the nearest bound.
	WeightClamp WeightPolicy = "clamp"
	// WeightReject fails the whole report.
	WeightReject WeightPolicy = "reject"
)

// IsValid reports whether p is a known policy.
func (p WeightPolicy) IsValid() bool {
	return p == WeightClamp || p == WeightReject
}

// DefaultExcerptLen bounds the raw payload copied into a MalformedReportError.
const DefaultExcerptLen = 500

var reportKeys = []string{"total_jargon_count", "identified_jargon", "overall_clarity_summary"}

// Validator turns raw extractor output into a well-formed Report.
// The zero value clamps weights and uses DefaultExcerptLen.
type Validator struct {
	Weights    WeightPolicy
	ExcerptLen int
}

// NewValidator returns a Validator using policy for out-of-range weights.
func NewValidator(policy WeightPolicy) *Validator {
	return &Validator{Weights: policy, ExcerptLen: DefaultExcerptLen}
}

// Parse decodes raw JSON and normalizes it.
func (v *Validator) Parse(raw []byte) (*Report, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, v.fail(raw, "", "unparsable JSON: "+err.Error())
	}
	if dec.More() {
		return nil, v.fail(raw, "", "trailing data after JSON object")
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, v.fail(raw, "", fmt.Sprintf("expected a JSON object, got %s", typeName(doc)))
	}
	return v.Normalize(obj, raw)
}

// Normalize validates an already decoded report object. raw is only used for
// the diagnostic excerpt and may be nil.
func (v *Validator) Normalize(doc map[string]any, raw []byte) (*Report, error) {
	if raw == nil {
		raw, _ = json.Marshal(doc)
	}

	var unknown []string
	for k := range doc {
		if !isReportKey(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, v.fail(raw, unknown[0], "unexpected top-level key")
	}
	for _, k := range reportKeys {
		if _, ok := doc[k]; !ok {
			return nil, v.fail(raw, k, "required field missing")
		}
	}

	total, err := asInt(doc["total_jargon_count"])
	if err != nil {
		return nil, v.fail(raw, "total_jargon_count", err.Error())
	}
	if total < 0 {
		return nil, v.fail(raw, "total_jargon_count", "must not be negative")
	}

	summary, ok := doc["overall_clarity_summary"].(string)
	if !ok {
		return nil, v.fail(raw, "overall_clarity_summary", "expected string, got "+typeName(doc["overall_clarity_summary"]))
	}

	items, ok := doc["identified_jargon"].([]any)
	if !ok {
		return nil, v.fail(raw, "identified_jargon", "expected array, got "+typeName(doc["identified_jargon"]))
	}

	report := &Report{
		TotalJargonCount:      int(total),
		IdentifiedJargon:      make([]JargonOccurrence, 0, len(items)),
		OverallClaritySummary: summary,
	}
	for i, item := range items {
		path := fmt.Sprintf("identified_jargon[%d]", i)
		occ, keep, err := v.occurrence(item, path)
		if err != nil {
			return nil, v.fail(raw, err.field, err.reason)
		}
		if keep {
			report.IdentifiedJargon = append(report.IdentifiedJargon, occ)
		}
	}
	return report, nil
}

type fieldErr struct{ field, reason string }

func (v *Validator) occurrence(item any, path string) (JargonOccurrence, bool, *fieldErr) {
	obj, ok := item.(map[string]any)
	if !ok {
		return JargonOccurrence{}, false, &fieldErr{path, "expected object, got " + typeName(item)}
	}

	var occ JargonOccurrence
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"term", &occ.Term},
		{"speaker", &occ.Speaker},
		{"clarity_critique", &occ.ClarityCritique},
	} {
		raw, ok := obj[f.key]
		if !ok {
			return occ, false, &fieldErr{path + "." + f.key, "required field missing"}
		}
		s, ok := raw.(string)
		if !ok {
			return occ, false, &fieldErr{path + "." + f.key, "expected string, got " + typeName(raw)}
		}
		*f.dst = s
	}
	if strings.TrimSpace(occ.Term) == "" {
		return occ, false, &fieldErr{path + ".term", "must not be empty"}
	}

	rawFreq, ok := obj["frequency"]
	if !ok {
		return occ, false, &fieldErr{path + ".frequency", "required field missing"}
	}
	freq, err := asInt(rawFreq)
	if err != nil {
		return occ, false, &fieldErr{path + ".frequency", err.Error()}
	}
	if freq < 0 {
		return occ, false, &fieldErr{path + ".frequency", "must be a positive integer"}
	}
	if freq > math.MaxInt32 {
		return occ, false, &fieldErr{path + ".frequency", "out of range"}
	}
	occ.Frequency = int(freq)

	rawWeight, ok := obj["penalty_weight"]
	if !ok {
		return occ, false, &fieldErr{path + ".penalty_weight", "required field missing"}
	}
	weight, err := asFloat(rawWeight)
	if err != nil {
		return occ, false, &fieldErr{path + ".penalty_weight", err.Error()}
	}
	if weight < 0 || weight > 1 {
		if v.Weights == WeightReject {
			return occ, false, &fieldErr{path + ".penalty_weight", fmt.Sprintf("%g outside [0, 1]", weight)}
		}
		weight = math.Min(1, math.Max(0, weight))
	}
	occ.PenaltyWeight = weight

	// zero-frequency detections are never represented
	return occ, occ.Frequency > 0, nil
}

func (v *Validator) fail(raw []byte, field, reason string) *MalformedReportError {
	n := v.ExcerptLen
	if n == 0 {
		n = DefaultExcerptLen
	}
	return &MalformedReportError{Field: field, Reason: reason, Excerpt: excerpt(raw, n)}
}

// ParseWordCount coerces a decoded JSON value into a word count.
func ParseWordCount(v any) (int, error) {
	n, err := asInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWordCount, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidWordCount, n)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidWordCount, n)
	}
	return int(n), nil
}

func isReportKey(k string) bool {
	for _, rk := range reportKeys {
		if k == rk {
			return true
		}
	}
	return false
}

func asInt(v any) (int64, error) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", x.String())
		}
		f = parsed
	case float64:
		f = x
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected integer, got %s", typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, fmt.Errorf("expected integer, got %g", f)
	}
	return int64(f), nil
}

func asFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", x.String())
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected number, got %s", typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected finite number, got %g", f)
	}
	return f, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
