package main

import (
	"fmt"
	"strconv"

	"github.com/wippyai/wirepb/schema"
)

// valuesFromTOML adapts a decoded TOML value document to msg. TOML table keys
// are always strings, so map keys are parsed according to the field's key
// type. Nested messages, arrays of tables and map values are walked too.
func valuesFromTOML(reg *schema.Registry, msg *schema.Message, doc map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(doc))
	for name, v := range doc {
		f, ok := msg.FieldByName(name)
		if !ok {
			out[name] = v
			continue
		}
		conv, err := fieldFromTOML(reg, f, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", msg.Name, name, err)
		}
		out[name] = conv
	}
	return out, nil
}

func fieldFromTOML(reg *schema.Registry, f *schema.Field, v any) (any, error) {
	switch f.Cardinality {
	case schema.Map:
		table, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		keyKind, _ := schema.ParseKind(f.MapKey)
		valMsg, _ := reg.Lookup(f.MapValue)
		out := make(map[any]any, len(table))
		for k, e := range table {
			key, err := mapKey(keyKind, k)
			if err != nil {
				return nil, err
			}
			if valMsg != nil {
				if e, err = messageFromTOML(reg, valMsg, e); err != nil {
					return nil, err
				}
			}
			out[key] = e
		}
		return out, nil

	case schema.Repeated, schema.RepeatedPacked:
		if f.Kind != schema.KindMessage {
			return v, nil
		}
		elem, ok := reg.MessageOf(f)
		if !ok {
			return v, nil
		}
		var items []any
		switch list := v.(type) {
		case []map[string]any:
			for _, e := range list {
				items = append(items, e)
			}
		case []any:
			items = list
		default:
			return v, nil
		}
		out := make([]any, len(items))
		for i, e := range items {
			conv, err := messageFromTOML(reg, elem, e)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}

	if f.Kind != schema.KindMessage {
		return v, nil
	}
	elem, ok := reg.MessageOf(f)
	if !ok {
		return v, nil
	}
	return messageFromTOML(reg, elem, v)
}

func messageFromTOML(reg *schema.Registry, msg *schema.Message, v any) (any, error) {
	table, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	return valuesFromTOML(reg, msg, table)
}

// mapKey parses a TOML table key as a value of kind k.
func mapKey(k schema.Kind, key string) (any, error) {
	switch {
	case k == schema.KindString:
		return key, nil
	case k == schema.KindBool:
		b, err := strconv.ParseBool(key)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", key, err)
		}
		return b, nil
	case k.IsSigned():
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", key, err)
		}
		return n, nil
	default:
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", key, err)
		}
		return n, nil
	}
}
