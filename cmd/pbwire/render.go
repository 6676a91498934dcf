package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wippyai/wirepb/codec"
	"github.com/wippyai/wirepb/schema"
	"github.com/wippyai/wirepb/varint"
	"golang.org/x/term"
)

var (
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func stdoutIsTerminal() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
func stderrIsTerminal() bool { return term.IsTerminal(int(os.Stderr.Fd())) }

// printer renders decoded values as an indented tree.
type printer struct {
	w     io.Writer
	reg   *schema.Registry
	color bool
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(depth int, format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

// message prints m's members in declaration order followed by its unknown fields.
func (p *printer) message(m *codec.Message, depth int) {
	desc, ok := p.reg.Lookup(m.Type())
	if !ok {
		m.Range(func(name string, v any) bool {
			p.member(name, "", v, depth)
			return true
		})
		return
	}
	for i := range desc.Fields {
		f := &desc.Fields[i]
		v, ok := m.Get(f.Name)
		if !ok {
			continue
		}
		p.member(f.Name, fieldLabel(f), v, depth)
	}
	m.Unknown().Range(func(u codec.UnknownField) bool {
		p.line(depth, "%s %s = %s",
			p.style(unknownStyle, "#"+strconv.Itoa(int(u.Number()))),
			p.style(typeStyle, u.Value.Kind.String()),
			p.style(valueStyle, unknownText(u.Value)))
		return true
	})
}

func (p *printer) member(name, label string, v any, depth int) {
	head := p.style(nameStyle, name)
	if label != "" {
		head += " " + p.style(typeStyle, label)
	}

	switch x := v.(type) {
	case *codec.Message:
		p.line(depth, "%s {", head)
		p.message(x, depth+1)
		p.line(depth, "}")
	case []any:
		p.line(depth, "%s [", head)
		for i, e := range x {
			p.member("["+strconv.Itoa(i)+"]", "", e, depth+1)
		}
		p.line(depth, "]")
	case map[any]any:
		keys := make([]any, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
		p.line(depth, "%s {", head)
		for _, k := range keys {
			p.member("["+scalarText(k)+"]", "", x[k], depth+1)
		}
		p.line(depth, "}")
	default:
		p.line(depth, "%s = %s", head, p.style(valueStyle, scalarText(v)))
	}
}

func fieldLabel(f *schema.Field) string {
	switch f.Cardinality {
	case schema.Map:
		return "map<" + f.MapKey + "," + f.MapValue + ">"
	case schema.Repeated, schema.RepeatedPacked:
		return f.Cardinality.String() + " " + f.Type
	}
	return f.Type
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []byte:
		return bytesText(x)
	}
	return fmt.Sprint(v)
}

func bytesText(b []byte) string {
	if isText(b) {
		return strconv.Quote(string(b))
	}
	return "0x" + hex.EncodeToString(b)
}

func isPrintable(b []byte) bool {
	for _, r := range string(b) {
		if r < 0x20 && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

func unknownText(v codec.UnknownValue) string {
	switch v.Kind {
	case schema.WireVarint:
		return fmt.Sprintf("%d (zigzag %d)", v.Num, varint.InvZigZag(v.Num))
	case schema.WireFixed32:
		return fmt.Sprintf("0x%08x", uint32(v.Num))
	case schema.WireFixed64:
		return fmt.Sprintf("0x%016x", v.Num)
	}
	return bytesText(v.Bytes)
}
