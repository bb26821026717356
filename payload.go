package catalystwan

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

const contentTypeJSON = "application/json"

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	schemaEncoder = schema.NewEncoder()
)

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, skip := jsonFieldName(f); !skip && name != "" {
			return name
		}
		return f.Name
	})
	schemaEncoder.SetAliasTag("json")
	schemaEncoder.RegisterEncoder(uuid.UUID{}, func(v reflect.Value) string {
		return v.Interface().(uuid.UUID).String()
	})
}

// preparePayload serializes value according to spec. A nil result means
// the request has no body.
func preparePayload(value any, spec TypeSpec, forceJSON bool) (*PreparedBody, error) {
	if isNilValue(value) {
		return nil, nil
	}
	rv := reflect.ValueOf(value)

	if forceJSON || spec.Kind == KindJSON || isMapping(rv.Type()) {
		tree, err := toJSONTree(rv, wireOptions)
		if err != nil {
			return nil, wrapError(CodePayloadType, err, "cannot encode payload as JSON: %v", err)
		}
		data, err := json.Marshal(tree)
		if err != nil {
			return nil, wrapError(CodePayloadType, err, "cannot encode payload as JSON: %v", err)
		}
		return jsonBody(data), nil
	}

	switch v := value.(type) {
	case []byte:
		return &PreparedBody{Body: v}, nil
	case string:
		return &PreparedBody{Body: v}, nil
	case CustomPayload:
		body, err := v.Prepare()
		if err != nil {
			return nil, wrapError(CodePayloadType, err, "cannot prepare %s payload: %v", typeName(rv.Type()), err)
		}
		return body, nil
	case io.Reader:
		return &PreparedBody{Body: v}, nil
	}
	if rv.Kind() == reflect.String {
		return &PreparedBody{Body: rv.String()}, nil
	}

	if spec.Kind == KindUnion && !unionAccepts(spec, rv.Type()) {
		return nil, Errorf(CodePayloadType, "payload of type %s is not a member of %s", rv.Type(), spec)
	}

	if seq, ok := asSequence(rv); ok {
		return prepareModels(seq.values())
	}
	if rv.Kind() == reflect.Slice && isModelType(derefType(rv.Type().Elem())) {
		return prepareModels(rv)
	}
	if isModelType(derefType(rv.Type())) {
		if err := validateModel(value); err != nil {
			return nil, err
		}
		data, err := SerializeModel(value, wireOptions)
		if err != nil {
			return nil, wrapError(CodePayloadType, err, "cannot serialize %s: %v", typeName(derefType(rv.Type())), err)
		}
		return jsonBody(data), nil
	}
	return nil, Errorf(CodePayloadType, "unsupported payload type %s", rv.Type())
}

// asSequence returns rv as a typed sequence. DataSequence values are
// copied behind a pointer since its methods have pointer receivers.
func asSequence(rv reflect.Value) (sequenceOf, bool) {
	if rv.Type().Implements(sequenceType) {
		return rv.Interface().(sequenceOf), true
	}
	if rv.Kind() != reflect.Pointer && reflect.PointerTo(rv.Type()).Implements(sequenceType) {
		return addressOf(rv).Interface().(sequenceOf), true
	}
	return nil, false
}

func prepareModels(items reflect.Value) (*PreparedBody, error) {
	for i := 0; i < items.Len(); i++ {
		elem := items.Index(i)
		if isNilValue(elem.Interface()) {
			return nil, Errorf(CodePayloadType, "payload element %d is nil", i)
		}
		if err := validateModel(elem.Interface()); err != nil {
			return nil, err
		}
	}
	data, err := marshalModels(items)
	if err != nil {
		return nil, wrapError(CodePayloadType, err, "cannot serialize payload sequence: %v", err)
	}
	return jsonBody(data), nil
}

func jsonBody(data []byte) *PreparedBody {
	return &PreparedBody{
		Body:    data,
		Headers: map[string]string{"content-type": contentTypeJSON},
	}
}

// validateModel runs the `validate` struct tags of a model payload.
func validateModel(v any) error {
	t := derefType(reflect.TypeOf(v))
	if t.Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		return payloadValidationError(typeName(t), err)
	}
	return nil
}

func unionAccepts(spec TypeSpec, t reflect.Type) bool {
	for _, m := range spec.Members {
		if m == t || derefType(m) == derefType(t) {
			return true
		}
	}
	return false
}

// prepareParams converts a params value into query values. Models are
// rendered with aliases applied and nulls removed; mappings are used as is.
func prepareParams(value any) (url.Values, error) {
	if isNilValue(value) {
		return nil, nil
	}
	if m, ok := value.(Mapper); ok {
		mapping, err := m.AsMapping(wireOptions)
		if err != nil {
			return nil, wrapError(CodePayloadType, err, "cannot map params: %v", err)
		}
		return mappingToValues(mapping), nil
	}
	switch v := value.(type) {
	case url.Values:
		return cloneValues(v), nil
	case map[string][]string:
		return cloneValues(v), nil
	case map[string]string:
		out := make(url.Values, len(v))
		for k, s := range v {
			out.Set(k, s)
		}
		return out, nil
	case map[string]any:
		return mappingToValues(v), nil
	}

	rv := reflect.ValueOf(value)
	if isMapping(rv.Type()) {
		out := make(url.Values, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			addParam(out, iter.Key().String(), iter.Value())
		}
		return out, nil
	}
	if derefType(rv.Type()).Kind() != reflect.Struct {
		return nil, Errorf(CodePayloadType, "unsupported params type %s", rv.Type())
	}
	if err := validateModel(value); err != nil {
		return nil, err
	}
	dst := make(map[string][]string)
	if err := schemaEncoder.Encode(value, dst); err != nil {
		return nil, wrapError(CodePayloadType, err, "cannot encode params: %v", err)
	}
	dropNullParams(reflect.Indirect(rv), dst)
	return url.Values(dst), nil
}

// dropNullParams removes the entries the schema encoder writes for nil
// pointer fields.
func dropNullParams(rv reflect.Value, dst map[string][]string) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer && !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
			dropNullParams(fv.Elem(), dst)
			continue
		}
		if fv.Kind() == reflect.Struct {
			dropNullParams(fv, dst)
			continue
		}
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			name, _, skip := jsonFieldName(f)
			if skip {
				continue
			}
			if name == "" {
				name = f.Name
			}
			delete(dst, name)
		}
	}
}

func mappingToValues(m map[string]any) url.Values {
	out := make(url.Values, len(m))
	for k, v := range m {
		addParam(out, k, reflect.ValueOf(v))
	}
	return out
}

func addParam(out url.Values, key string, v reflect.Value) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return
	}
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < v.Len(); i++ {
			addParam(out, key, v.Index(i))
		}
		return
	}
	out.Add(key, paramString(v))
}

func paramString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v.Interface())
}

func cloneValues(v map[string][]string) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func isMapping(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// quoteList renders names for error messages.
func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
