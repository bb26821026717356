package catalystwan

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// SerializeOptions controls how models are rendered to JSON.
type SerializeOptions struct {
	// ExcludeNull drops object members whose value is null (nil pointers,
	// maps, slices and interfaces).
	ExcludeNull bool
	// ByAlias names members after their `json` tag rather than the Go
	// field name.
	ByAlias bool
}

// wireOptions is used for every payload sent by the core.
var wireOptions = SerializeOptions{ExcludeNull: true, ByAlias: true}

// Any struct type is a model: its `json` tags are the aliases and nil
// fields are nulls. Types that need a different JSON form implement Model,
// and optionally ModelParser and Mapper.
type Model interface {
	SerializeJSON(opts SerializeOptions) ([]byte, error)
}

// ModelParser is implemented by model pointers that parse their own JSON.
type ModelParser interface {
	ParseJSON(data []byte) error
}

// Mapper is implemented by models that provide their own mapping form.
type Mapper interface {
	AsMapping(opts SerializeOptions) (map[string]any, error)
}

var (
	modelType           = reflect.TypeFor[Model]()
	jsonMarshalerType   = reflect.TypeFor[json.Marshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	orderedObjectMarker = reflect.TypeFor[orderedObject]()
)

// SerializeModel renders v as canonical JSON. Members keep declaration
// order so the output is stable.
func SerializeModel(v any, opts SerializeOptions) ([]byte, error) {
	if m, ok := v.(Model); ok {
		return m.SerializeJSON(opts)
	}
	tree, err := toJSONTree(reflect.ValueOf(v), opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// ModelMapping renders v as a mapping of member name to value.
func ModelMapping(v any, opts SerializeOptions) (map[string]any, error) {
	if m, ok := v.(Mapper); ok {
		return m.AsMapping(opts)
	}
	if m, ok := v.(Model); ok {
		data, err := m.SerializeJSON(opts)
		if err != nil {
			return nil, err
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("model %T is not a JSON object: %w", v, err)
		}
		return out, nil
	}
	tree, err := toJSONTree(reflect.ValueOf(v), opts)
	if err != nil {
		return nil, err
	}
	obj, ok := tree.(orderedObject)
	if !ok {
		return nil, fmt.Errorf("model %T is not a JSON object", v)
	}
	return plainTree(obj).(map[string]any), nil
}

// ParseModel parses data into a new M.
func ParseModel[M any](data []byte) (M, error) {
	var m M
	rv := reflect.ValueOf(&m).Elem()
	if rv.Kind() == reflect.Pointer {
		rv.Set(reflect.New(rv.Type().Elem()))
		if err := parseModelInto(rv.Interface(), data); err != nil {
			return m, err
		}
		return m, nil
	}
	if err := parseModelInto(&m, data); err != nil {
		return m, err
	}
	return m, nil
}

// parseModelInto parses data into the model pointed to by into.
func parseModelInto(into any, data []byte) error {
	if p, ok := into.(ModelParser); ok {
		if err := p.ParseJSON(data); err != nil {
			return wrapError(CodeDecodeType, err, "cannot parse %s: %v", typeName(reflect.TypeOf(into).Elem()), err)
		}
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return wrapError(CodeDecodeType, err, "cannot parse %s: %v", typeName(reflect.TypeOf(into).Elem()), err)
	}
	return nil
}

// orderedObject is a JSON object that keeps member order.
type orderedObject []member

type member struct {
	key   string
	value any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// toJSONTree converts rv into values encoding/json can marshal, applying
// opts to every struct on the way. A nil result means JSON null.
func toJSONTree(rv reflect.Value, opts SerializeOptions) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}
	t := rv.Type()
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface &&
		!implementsMarshaler(t) && implementsMarshaler(reflect.PointerTo(t)) {
		return toJSONTree(addressOf(rv), opts)
	}
	if t.Implements(modelType) && t.Kind() != reflect.Interface {
		data, err := rv.Interface().(Model).SerializeJSON(opts)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(data), nil
	}
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return rv.Interface(), nil
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return toJSONTree(rv.Elem(), opts)
	case reflect.Struct:
		obj := orderedObject{}
		if err := appendStructMembers(&obj, rv, opts); err != nil {
			return nil, err
		}
		return obj, nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			v, err := toJSONTree(rv.Index(i), opts)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			v, err := toJSONTree(iter.Value(), opts)
			if err != nil {
				return nil, err
			}
			out[mapKeyString(iter.Key())] = v
		}
		return out, nil
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, fmt.Errorf("unsupported value of type %s", t)
	default:
		return rv.Interface(), nil
	}
}

func implementsMarshaler(t reflect.Type) bool {
	return t.Implements(modelType) || t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)
}

// addressOf returns a pointer to rv's value, copying it when rv is not
// addressable.
func addressOf(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv.Addr()
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p
}

func appendStructMembers(obj *orderedObject, rv reflect.Value, opts SerializeOptions) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, omit, skip := jsonFieldName(field)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				ft, fv = ft.Elem(), fv.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := appendStructMembers(obj, fv, opts); err != nil {
					return err
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if (omit.empty && isEmptyValue(fv)) || (omit.zero && isZeroValue(fv)) {
			continue
		}
		v, err := toJSONTree(fv, opts)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		if v == nil && opts.ExcludeNull {
			continue
		}
		key := field.Name
		if opts.ByAlias && name != "" {
			key = name
		}
		*obj = append(*obj, member{key: key, value: v})
	}
	return nil
}

// omitRules holds the omitempty and omitzero options of a `json` tag.
// They follow encoding/json: omitempty drops false, 0, "", nil and empty
// collections but never structs; omitzero drops zero values and honours
// an IsZero method.
type omitRules struct {
	empty, zero bool
}

// jsonFieldName parses the `json` tag of field.
func jsonFieldName(field reflect.StructField) (name string, omit omitRules, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", omit, false
	}
	if tag == "-" {
		return "", omit, true
	}
	name, rest, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(rest, ",") {
		switch opt {
		case "omitempty":
			omit.empty = true
		case "omitzero":
			omit.zero = true
		}
	}
	return name, omit, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

func isZeroValue(v reflect.Value) bool {
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return true
	}
	if z, ok := v.Interface().(interface{ IsZero() bool }); ok {
		return z.IsZero()
	}
	return v.IsZero()
}

func mapKeyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(k.Interface())
}

// plainTree replaces ordered objects with maps, recursively.
func plainTree(v any) any {
	switch v := v.(type) {
	case orderedObject:
		out := make(map[string]any, len(v))
		for _, m := range v {
			out[m.key] = plainTree(m.value)
		}
		return out
	case []any:
		for i := range v {
			v[i] = plainTree(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = plainTree(v[k])
		}
		return v
	default:
		return v
	}
}

// isModelType reports whether t (or *t) satisfies the model contract:
// any struct, or any type implementing Model.
func isModelType(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	if t.Implements(modelType) || reflect.PointerTo(t).Implements(modelType) {
		return true
	}
	return t.Kind() == reflect.Struct && t != orderedObjectMarker
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
