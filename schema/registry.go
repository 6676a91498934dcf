package schema

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/wippyai/wirepb/errors"
	"github.com/wippyai/wirepb/varint"
	"go.uber.org/zap"
)

// Registry maps type names to message descriptors.
//
// Messages are registered up front. Freeze resolves every message reference
// and makes the registry read-only; lookups after Freeze take no lock.
// Encoding and decoding never mutate a registry.
type Registry struct {
	messages map[string]*Message
	order    []string
	mu       sync.RWMutex
	frozen   atomic.Bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{messages: make(map[string]*Message)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a message to the default registry.
func Register(name string, fields ...Field) error {
	return defaultRegistry.Register(name, fields...)
}

// Register validates and adds a message descriptor. Map fields register
// their synthetic pair message alongside the owner.
func (r *Registry) Register(name string, fields ...Field) error {
	if r.frozen.Load() {
		return errors.Registration(name, "registry is frozen")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return errors.Registration(name, "registry is frozen")
	}
	if name == "" {
		return errors.Registration(name, "message name is empty")
	}
	if IsPrimitiveName(name) {
		return errors.Registration(name, "message name shadows a primitive kind")
	}
	if _, exists := r.messages[name]; exists {
		return errors.Registration(name, "message already registered")
	}

	msg := &Message{Name: name, Fields: make([]Field, len(fields))}
	copy(msg.Fields, fields)

	var pairs []*Message
	numbers := make(map[int32]string, len(fields))
	names := make(map[string]struct{}, len(fields))

	for i := range msg.Fields {
		f := &msg.Fields[i]
		if err := r.prepareField(name, f); err != nil {
			return err
		}
		if prev, dup := numbers[f.Number]; dup {
			return errors.Registration(name, fmt.Sprintf("field %q reuses number %d of field %q", f.Name, f.Number, prev))
		}
		numbers[f.Number] = f.Name
		if _, dup := names[f.Name]; dup {
			return errors.Registration(name, fmt.Sprintf("duplicate field name %q", f.Name))
		}
		names[f.Name] = struct{}{}

		if f.Cardinality == Map {
			if _, exists := r.messages[f.Type]; !exists {
				pairs = append(pairs, pairMessage(f.MapKey, f.MapValue))
			}
		}
	}

	msg.index()
	r.messages[name] = msg
	r.order = append(r.order, name)

	for _, p := range pairs {
		if _, exists := r.messages[p.Name]; exists {
			continue
		}
		r.messages[p.Name] = p
		r.order = append(r.order, p.Name)
	}

	Logger().Debug("registered message",
		zap.String("type", name),
		zap.Int("fields", len(msg.Fields)),
		zap.Int("pairs", len(pairs)))
	return nil
}

func (r *Registry) prepareField(msgName string, f *Field) error {
	if f.Name == "" {
		return errors.Registration(msgName, fmt.Sprintf("field %d has no name", f.Number))
	}
	if f.Number < varint.MinFieldNumber || f.Number > varint.MaxFieldNumber {
		return errors.Registration(msgName, fmt.Sprintf("field %q number %d outside [%d, %d]",
			f.Name, f.Number, varint.MinFieldNumber, varint.MaxFieldNumber))
	}
	if f.Number >= varint.FirstReservedNumber && f.Number <= varint.LastReservedNumber {
		return errors.Registration(msgName, fmt.Sprintf("field %q number %d is reserved", f.Name, f.Number))
	}

	switch f.Cardinality {
	case Map:
		keyKind, ok := ParseKind(f.MapKey)
		if !ok || !keyKind.IsMapKey() {
			return errors.Registration(msgName, fmt.Sprintf("field %q: %q cannot key a map", f.Name, f.MapKey))
		}
		if f.MapValue == "" {
			return errors.Registration(msgName, fmt.Sprintf("field %q: map value type is empty", f.Name))
		}
		f.Type = PairName(f.MapKey, f.MapValue)
		f.Kind = KindMessage
		f.WireKind = WireBytes
		return nil
	case Optional, Repeated, RepeatedPacked:
	default:
		return errors.Registration(msgName, fmt.Sprintf("field %q: unknown cardinality %d", f.Name, f.Cardinality))
	}

	if f.Type == "" {
		return errors.Registration(msgName, fmt.Sprintf("field %q has no type", f.Name))
	}
	if k, ok := ParseKind(f.Type); ok {
		f.Kind = k
	} else {
		f.Kind = KindMessage
	}
	f.WireKind = f.Kind.WireKind()

	if f.Cardinality == RepeatedPacked && !f.Kind.IsPackable() {
		return errors.Registration(msgName, fmt.Sprintf("field %q: %s cannot be packed", f.Name, f.Type))
	}
	return nil
}

func pairMessage(keyType, valueType string) *Message {
	key := OptionalField(keyType, "key", PairKeyNumber)
	key.Kind, _ = ParseKind(keyType)
	key.WireKind = key.Kind.WireKind()

	value := OptionalField(valueType, "value", PairValueNumber)
	if k, ok := ParseKind(valueType); ok {
		value.Kind = k
	} else {
		value.Kind = KindMessage
	}
	value.WireKind = value.Kind.WireKind()

	m := &Message{Name: PairName(keyType, valueType), Fields: []Field{key, value}}
	m.index()
	return m
}

// Freeze resolves every message reference and makes the registry read-only.
// A reference to an unregistered type fails with unknown_type and leaves the
// registry writable. Freezing twice is a no-op.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return nil
	}

	for _, name := range r.order {
		msg := r.messages[name]
		for i := range msg.Fields {
			f := &msg.Fields[i]
			if f.Kind != KindMessage {
				continue
			}
			target, ok := r.messages[f.Type]
			if !ok {
				return errors.UnknownType(errors.PhaseRegister, []string{name, f.Name}, f.Type)
			}
			f.message = target
		}
	}

	r.frozen.Store(true)
	Logger().Debug("registry frozen", zap.Int("messages", len(r.messages)))
	return nil
}

// Frozen reports whether Freeze has completed.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Lookup returns the message registered under name.
func (r *Registry) Lookup(name string) (*Message, bool) {
	if r.frozen.Load() {
		m, ok := r.messages[name]
		return m, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.messages[name]
	return m, ok
}

// Resolve classifies typeName as a primitive kind or a registered message.
// Anything else fails with unknown_type.
func (r *Registry) Resolve(typeName string) (Kind, *Message, error) {
	if k, ok := ParseKind(typeName); ok {
		return k, nil, nil
	}
	if m, ok := r.Lookup(typeName); ok {
		return KindMessage, m, nil
	}
	return 0, nil, errors.UnknownType(errors.PhaseRegister, nil, typeName)
}

// MessageOf returns the message type of a message or map field, using the
// reference resolved by Freeze when there is one.
func (r *Registry) MessageOf(f *Field) (*Message, bool) {
	if f.message != nil {
		return f.message, true
	}
	if f.Kind != KindMessage {
		return nil, false
	}
	return r.Lookup(f.Type)
}

// Names returns the registered message names in sorted order, pair messages included.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.messages))
	for name := range r.messages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered messages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages)
}
