package taxii

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a STIX object kept as an ordered property bag. Only id, type,
// created and modified are interpreted; every other property passes through
// untouched and in its original order.
type Object struct {
	props *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewObject creates an object with the four properties every STIX object carries.
func NewObject(id, typ, created, modified string) *Object {
	o := &Object{props: orderedmap.New[string, json.RawMessage]()}
	_ = o.Set("type", typ)
	_ = o.Set("id", id)
	_ = o.Set("created", created)
	_ = o.Set("modified", modified)
	return o
}

func (o *Object) ID() string       { return o.String("id") }
func (o *Object) Type() string     { return o.String("type") }
func (o *Object) Created() string  { return o.String("created") }
func (o *Object) Modified() string { return o.String("modified") }
func (o *Object) Name() string     { return o.String("name") }

// Get returns the raw JSON of a property.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	if o == nil || o.props == nil {
		return nil, false
	}
	return o.props.Get(key)
}

// String returns a property decoded as a string, or "" when absent or not a string.
func (o *Object) String(key string) string {
	raw, ok := o.Get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Set stores a property, appending it if new and keeping its position otherwise.
func (o *Object) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode property %s: %w", key, err)
	}
	if o.props == nil {
		o.props = orderedmap.New[string, json.RawMessage]()
	}
	o.props.Set(key, raw)
	return nil
}

// Keys returns property names in document order.
func (o *Object) Keys() []string {
	if o == nil || o.props == nil {
		return nil
	}
	keys := make([]string, 0, o.props.Len())
	for pair := o.props.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Extensions returns every property other than id, type, created and modified.
func (o *Object) Extensions() []string {
	var keys []string
	for _, k := range o.Keys() {
		switch k {
		case "id", "type", "created", "modified":
		default:
			keys = append(keys, k)
		}
	}
	return keys
}

// Missing lists which of the four guaranteed properties are absent.
func (o *Object) Missing() []string {
	var missing []string
	for _, k := range []string{"id", "type", "created", "modified"} {
		if o.String(k) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

func (o *Object) UnmarshalJSON(data []byte) error {
	props := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, props); err != nil {
		return fmt.Errorf("invalid STIX object: %w", err)
	}
	o.props = props
	return nil
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o.props == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.props)
}
