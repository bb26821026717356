package catalystwan

import (
	"fmt"
	"reflect"
	"strings"
)

// URLTemplate is a parsed URL pattern such as "/admin/user/{username}".
// Literal braces are written as "{{" and "}}".
type URLTemplate struct {
	raw    string
	parts  []templatePart
	fields []string
}

type templatePart struct {
	literal string
	field   string // set for placeholders
}

// ParseURLTemplate parses tmpl and extracts its placeholder fields.
func ParseURLTemplate(tmpl string) (*URLTemplate, error) {
	t := &URLTemplate{raw: tmpl}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, templatePart{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return nil, Errorf(CodeDeclaration, "unclosed placeholder in url template %q", tmpl)
			}
			name := tmpl[i+1 : i+1+end]
			if name == "" || strings.ContainsAny(name, "{:!") {
				return nil, Errorf(CodeDeclaration, "invalid placeholder %q in url template %q", name, tmpl)
			}
			flush()
			t.parts = append(t.parts, templatePart{field: name})
			if !t.Has(name) {
				t.fields = append(t.fields, name)
			}
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, Errorf(CodeDeclaration, "single '}' in url template %q", tmpl)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

// Fields returns the placeholder names in order of first appearance.
func (t *URLTemplate) Fields() []string {
	return append([]string(nil), t.fields...)
}

// Has reports whether name is a placeholder of t.
func (t *URLTemplate) Has(name string) bool {
	for _, f := range t.fields {
		if f == name {
			return true
		}
	}
	return false
}

// Format substitutes the placeholders with values. Values are inserted
// verbatim. Every placeholder must be bound.
func (t *URLTemplate) Format(values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(t.raw))
	for _, p := range t.parts {
		if p.field == "" {
			b.WriteString(p.literal)
			continue
		}
		v, ok := values[p.field]
		if !ok {
			return "", Errorf(CodeInvalidArgument, "url field %q is not bound", p.field)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func (t *URLTemplate) String() string {
	return t.raw
}

// formatURLValue converts a url field value to its string form. Named
// string types (enums) are reduced to their underlying value rather than
// their String() form.
func formatURLValue(v reflect.Value) string {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}
