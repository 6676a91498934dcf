package schema

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wippyai/wirepb/errors"
	"go.uber.org/zap"
)

// A schema document lists messages and their fields:
//
//	[[message]]
//	name = "test"
//
//	[[message.field]]
//	name = "a"
//	number = 1
//	type = "string"
//	charset = "utf8"
//
//	[[message.field]]
//	name = "c"
//	number = 3
//	type = "map"
//	key = "int32"
//	value = "string"
//
// label is "optional" (the default), "repeated" or "packed".
type document struct {
	Message []messageDoc `toml:"message"`
}

type messageDoc struct {
	Name  string     `toml:"name"`
	Field []fieldDoc `toml:"field"`
}

type fieldDoc struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Label   string `toml:"label"`
	Key     string `toml:"key"`
	Value   string `toml:"value"`
	Charset string `toml:"charset"`
	Number  int64  `toml:"number"`
}

// LoadTOML reads a schema document from path and registers its messages.
func LoadTOML(reg *Registry, path string) error {
	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return errors.Load(fmt.Sprintf("schema %s", path), err)
	}
	return registerDocument(reg, doc)
}

// DecodeTOML parses a schema document and registers its messages.
func DecodeTOML(reg *Registry, data string) error {
	var doc document
	if _, err := toml.Decode(data, &doc); err != nil {
		return errors.Load("schema document", err)
	}
	return registerDocument(reg, doc)
}

func registerDocument(reg *Registry, doc document) error {
	for i, m := range doc.Message {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return errors.Load(fmt.Sprintf("message[%d] has no name", i), nil)
		}
		fields := make([]Field, 0, len(m.Field))
		for j, fd := range m.Field {
			f, err := fd.field()
			if err != nil {
				return errors.Load(fmt.Sprintf("message %q field[%d]", name, j), err)
			}
			fields = append(fields, f)
		}
		if err := reg.Register(name, fields...); err != nil {
			return err
		}
	}
	Logger().Debug("schema document loaded", zap.Int("messages", len(doc.Message)))
	return nil
}

func (fd fieldDoc) field() (Field, error) {
	if fd.Number < 0 || fd.Number > int64(^uint32(0)>>1) {
		return Field{}, fmt.Errorf("number %d out of range", fd.Number)
	}
	num := int32(fd.Number)

	var opts []FieldOption
	if fd.Charset != "" {
		opts = append(opts, WithCharset(fd.Charset))
	}

	if fd.Type == "map" {
		if fd.Key == "" || fd.Value == "" {
			return Field{}, fmt.Errorf("map field %q needs key and value", fd.Name)
		}
		return MapField(fd.Key, fd.Value, fd.Name, num, opts...), nil
	}

	c, ok := ParseCardinality(fd.Label)
	if !ok || c == Map {
		return Field{}, fmt.Errorf("field %q: unknown label %q", fd.Name, fd.Label)
	}
	return newField(fd.Type, fd.Name, num, c, opts), nil
}
