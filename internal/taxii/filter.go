package taxii

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Filter is an ordered set of TAXII query parameters (added_after, limit,
// match[...], type, next). Empty values are never stored.
type Filter struct {
	params *orderedmap.OrderedMap[string, string]
}

// FilterOptions is the user-facing shape a Filter is built from.
type FilterOptions struct {
	AddedAfter string
	Limit      int
	Match      map[string]string
	Types      []string
	Next       string
}

// NewFilter builds a Filter from options, keeping only non-empty ones.
// Match keys are emitted in sorted order so the resulting query is stable.
func NewFilter(opts FilterOptions) *Filter {
	f := &Filter{}

	f.Set("added_after", opts.AddedAfter)
	if opts.Limit > 0 {
		f.Set("limit", strconv.Itoa(opts.Limit))
	}

	keys := make([]string, 0, len(opts.Match))
	for k := range opts.Match {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.Set("match["+k+"]", opts.Match[k])
	}

	if len(opts.Types) > 0 {
		f.Set("type", strings.Join(opts.Types, ","))
	}
	f.Set("next", opts.Next)

	return f
}

// Set stores a parameter, or removes it when value is empty.
func (f *Filter) Set(key, value string) {
	if f.params == nil {
		f.params = orderedmap.New[string, string]()
	}
	if value == "" {
		f.params.Delete(key)
		return
	}
	f.params.Set(key, value)
}

// Get returns the value stored for key.
func (f *Filter) Get(key string) (string, bool) {
	if f == nil || f.params == nil {
		return "", false
	}
	return f.params.Get(key)
}

// Len returns the number of stored parameters.
func (f *Filter) Len() int {
	if f == nil || f.params == nil {
		return 0
	}
	return f.params.Len()
}

// Keys returns parameter names in insertion order.
func (f *Filter) Keys() []string {
	if f.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, f.params.Len())
	for pair := f.params.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Encode renders the parameters as a URL query string in insertion order.
func (f *Filter) Encode() string {
	if f.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for pair := f.params.Oldest(); pair != nil; pair = pair.Next() {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value))
	}
	return sb.String()
}

// UnmarshalJSON accepts a JSON object whose values may be strings, numbers,
// booleans, arrays or null. Falsy values (empty string, 0, false, null) are
// dropped; key order of the document is preserved.
func (f *Filter) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, raw); err != nil {
		return fmt.Errorf("invalid filters: %w", err)
	}

	f.params = orderedmap.New[string, string]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if value, ok := filterValue(pair.Value); ok {
			f.params.Set(pair.Key, value)
		}
	}
	return nil
}

// MarshalJSON encodes the parameters as a JSON object in insertion order.
func (f *Filter) MarshalJSON() ([]byte, error) {
	if f.params == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.params)
}

func filterValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool:
		return "true", val
	case float64:
		if val == 0 {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := filterValue(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), len(parts) > 0
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}
