package codec

import (
	"reflect"
	"sort"
)

// Message is a dynamic message value: a type name, a set of named members
// and the unknown fields read with it.
//
// Member values use these Go types:
//
//	bool                         bool
//	int32, sint32, sfixed32      int32
//	uint32, fixed32              uint32
//	int64, sint64, sfixed64      int64
//	uint64, fixed64              uint64
//	float                        float32
//	double                       float64
//	string                       string
//	bytes                        []byte
//	message                      *Message
//	repeated / packed            []any
//	map                          map[any]any
//
// The encoder also accepts any losslessly convertible numeric type, typed
// slices and typed maps.
type Message struct {
	members  map[string]any
	unknown  *UnknownFields
	typeName string
}

// NewMessage creates an empty message of the named type.
func NewMessage(typeName string) *Message {
	return &Message{typeName: typeName, members: make(map[string]any)}
}

// Type returns the message type name.
func (m *Message) Type() string {
	return m.typeName
}

// Set assigns a member. Setting nil clears it. Set returns m for chaining.
func (m *Message) Set(name string, v any) *Message {
	if v == nil {
		delete(m.members, name)
		return m
	}
	m.members[name] = v
	return m
}

// Get returns a member value.
func (m *Message) Get(name string) (any, bool) {
	v, ok := m.members[name]
	return v, ok
}

// Has reports whether a member is set.
func (m *Message) Has(name string) bool {
	_, ok := m.members[name]
	return ok
}

// Clear removes a member.
func (m *Message) Clear(name string) {
	delete(m.members, name)
}

// Len returns the number of set members.
func (m *Message) Len() int {
	return len(m.members)
}

// Range calls fn for each set member in name order until fn returns false.
func (m *Message) Range(fn func(name string, v any) bool) {
	names := make([]string, 0, len(m.members))
	for name := range m.members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !fn(name, m.members[name]) {
			return
		}
	}
}

// Unknown returns the unknown field store, creating it on first use.
func (m *Message) Unknown() *UnknownFields {
	if m.unknown == nil {
		m.unknown = &UnknownFields{}
	}
	return m.unknown
}

// HasUnknown reports whether any unknown fields were retained.
func (m *Message) HasUnknown() bool {
	return m.unknown.Len() > 0
}

// AsMap converts m to plain Go maps and slices, recursively. Nested messages
// become map[string]any; unknown fields are not included.
func (m *Message) AsMap() map[string]any {
	out := make(map[string]any, len(m.members))
	for name, v := range m.members {
		out[name] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Message:
		if x == nil {
			return nil
		}
		return x.AsMap()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether m and o have the same type, members and unknown fields.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.typeName != o.typeName || !reflect.DeepEqual(m.AsMap(), o.AsMap()) {
		return false
	}
	return reflect.DeepEqual(m.unknown.Fields(), o.unknown.Fields())
}
