package schema

// Message is a registered message descriptor: a name and its fields in
// declaration order.
type Message struct {
	byNumber map[int32]int
	byName   map[string]int
	Name     string
	Fields   []Field
}

// FieldByNumber returns the field with the given number.
func (m *Message) FieldByNumber(n int32) (*Field, bool) {
	i, ok := m.byNumber[n]
	if !ok {
		return nil, false
	}
	return &m.Fields[i], true
}

// FieldByName returns the field with the given name.
func (m *Message) FieldByName(name string) (*Field, bool) {
	i, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return &m.Fields[i], true
}

// IsPair reports whether m is the synthetic entry message of a map field.
func (m *Message) IsPair() bool {
	return len(m.Name) > 5 && m.Name[:5] == "pair<"
}

func (m *Message) index() {
	m.byNumber = make(map[int32]int, len(m.Fields))
	m.byName = make(map[string]int, len(m.Fields))
	for i := range m.Fields {
		m.byNumber[m.Fields[i].Number] = i
		m.byName[m.Fields[i].Name] = i
	}
}
