package catalystwan

import (
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// DataSequence is an ordered, homogeneous list of models. It is the
// declared return shape of every list-of-models operation. The zero value
// is an empty sequence ready to use.
type DataSequence[T any] struct {
	items []T
}

// NewDataSequence returns a sequence holding items.
func NewDataSequence[T any](items ...T) *DataSequence[T] {
	return &DataSequence[T]{items: append([]T(nil), items...)}
}

func (s *DataSequence[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (s *DataSequence[T]) values() reflect.Value {
	return reflect.ValueOf(s.Items())
}

// Len returns the number of elements.
func (s *DataSequence[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the element at index i. Negative indexes count from the end.
// It panics if i is out of range.
func (s *DataSequence[T]) At(i int) T {
	return s.items[s.index(i)]
}

// Set replaces the element at index i.
func (s *DataSequence[T]) Set(i int, v T) {
	s.items[s.index(i)] = v
}

// Append adds elements at the end.
func (s *DataSequence[T]) Append(v ...T) {
	s.items = append(s.items, v...)
}

// Insert inserts v before index i. An index past the end appends.
func (s *DataSequence[T]) Insert(i int, v T) {
	if i < 0 {
		i += len(s.items)
		if i < 0 {
			i = 0
		}
	}
	if i >= len(s.items) {
		s.items = append(s.items, v)
		return
	}
	s.items = append(s.items, v)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
}

// Pop removes and returns the element at index i; -1 is the last element.
func (s *DataSequence[T]) Pop(i int) (T, error) {
	var zero T
	if s.Len() == 0 {
		return zero, NewError(CodeInvalidOperation, "pop from empty sequence")
	}
	if i < 0 {
		i += len(s.items)
	}
	if i < 0 || i >= len(s.items) {
		return zero, Errorf(CodeInvalidArgument, "pop index %d out of range", i)
	}
	v := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return v, nil
}

// Items returns a copy of the elements.
func (s *DataSequence[T]) Items() []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s.items...)
}

// All iterates over index and element pairs.
func (s *DataSequence[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if s == nil {
			return
		}
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Slice returns a new sequence holding elements [i, j). Negative bounds
// count from the end and out of range bounds are clamped, so the result
// may be empty.
func (s *DataSequence[T]) Slice(i, j int) *DataSequence[T] {
	n := s.Len()
	i, j = clampBound(i, n), clampBound(j, n)
	if i >= j {
		return NewDataSequence[T]()
	}
	return NewDataSequence(s.items[i:j]...)
}

func clampBound(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

// Concat returns a new sequence with the elements of s followed by those
// of other.
func (s *DataSequence[T]) Concat(other *DataSequence[T]) *DataSequence[T] {
	out := NewDataSequence(s.Items()...)
	out.Append(other.Items()...)
	return out
}

// Equal reports whether both sequences hold deeply equal elements in the
// same order.
func (s *DataSequence[T]) Equal(other *DataSequence[T]) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if !reflect.DeepEqual(s.items[i], other.items[i]) {
			return false
		}
	}
	return true
}

// Filter returns the elements for which keep returns true.
func (s *DataSequence[T]) Filter(keep func(T) bool) *DataSequence[T] {
	out := &DataSequence[T]{}
	for _, v := range s.Items() {
		if keep(v) {
			out.items = append(out.items, v)
		}
	}
	return out
}

// FilterBy returns the elements whose fields equal every value in match.
// Fields are named by their JSON alias or Go field name.
func (s *DataSequence[T]) FilterBy(match map[string]any) (*DataSequence[T], error) {
	elem := derefType(reflect.TypeFor[T]())
	if elem.Kind() != reflect.Struct {
		return nil, Errorf(CodeInvalidOperation, "cannot filter sequence of %s by field", elem)
	}
	fields := make(map[string][]int, len(match))
	for name := range match {
		idx, ok := lookupField(elem, name)
		if !ok {
			return nil, Errorf(CodeInvalidArgument, "%s has no field %q", typeName(elem), name)
		}
		fields[name] = idx
	}
	out := &DataSequence[T]{}
	for _, v := range s.Items() {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				break
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			continue
		}
		ok := true
		for name, want := range match {
			fv, err := rv.FieldByIndexErr(fields[name])
			if err != nil || !valueEquals(fv, want) {
				ok = false
				break
			}
		}
		if ok {
			out.items = append(out.items, v)
		}
	}
	return out, nil
}

// First returns the first element. It fails on an empty sequence.
func (s *DataSequence[T]) First() (T, error) {
	if s.Len() == 0 {
		var zero T
		return zero, NewError(CodeInvalidOperation, "sequence is empty")
	}
	return s.items[0], nil
}

// SingleOrDefault returns the only element, or def when the sequence is
// empty. It fails when there is more than one element.
func (s *DataSequence[T]) SingleOrDefault(def T) (T, error) {
	switch s.Len() {
	case 0:
		return def, nil
	case 1:
		return s.items[0], nil
	default:
		var zero T
		return zero, Errorf(CodeInvalidOperation, "expected at most one element, sequence has %d", s.Len())
	}
}

func (s *DataSequence[T]) String() string {
	parts := make([]string, 0, s.Len())
	for _, v := range s.Items() {
		parts = append(parts, fmt.Sprintf("%+v", v))
	}
	return "DataSequence[" + typeName(reflect.TypeFor[T]()) + "]{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON renders the sequence as a JSON array of models with nulls
// omitted and aliases applied.
func (s *DataSequence[T]) MarshalJSON() ([]byte, error) {
	return marshalModels(reflect.ValueOf(s.Items()))
}

// UnmarshalJSON replaces the elements with those of a JSON array.
func (s *DataSequence[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.items = s.items[:0]
	for _, r := range raw {
		if err := s.AppendJSON(r); err != nil {
			return err
		}
	}
	return nil
}

// AppendJSON parses one element and appends it. It implements
// SequenceTarget.
func (s *DataSequence[T]) AppendJSON(data []byte) error {
	v, err := ParseModel[T](data)
	if err != nil {
		return err
	}
	s.items = append(s.items, v)
	return nil
}

func (s *DataSequence[T]) index(i int) int {
	if i < 0 {
		return i + len(s.items)
	}
	return i
}

// marshalModels renders a slice of models as a JSON array.
func marshalModels(items reflect.Value) ([]byte, error) {
	raw := make([]json.RawMessage, items.Len())
	for i := range raw {
		data, err := SerializeModel(items.Index(i).Interface(), wireOptions)
		if err != nil {
			return nil, err
		}
		raw[i] = data
	}
	return json.Marshal(raw)
}

// lookupField finds a struct field by JSON alias or Go name.
func lookupField(t reflect.Type, name string) ([]int, bool) {
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}
		alias, _, skip := jsonFieldName(f)
		if skip {
			continue
		}
		if alias == name || f.Name == name {
			return f.Index, true
		}
	}
	return nil, false
}

// valueEquals compares a field with a caller-provided value. Named
// string and numeric types compare by their underlying value.
func valueEquals(fv reflect.Value, want any) bool {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return want == nil
		}
		fv = fv.Elem()
	}
	if want == nil {
		return false
	}
	wv := reflect.ValueOf(want)
	if wv.Type() == fv.Type() {
		return reflect.DeepEqual(fv.Interface(), want)
	}
	if fv.Kind() == reflect.String && wv.Kind() == reflect.String {
		return fv.String() == wv.String()
	}
	if wv.Type().ConvertibleTo(fv.Type()) && isNumeric(fv.Kind()) && isNumeric(wv.Kind()) {
		return reflect.DeepEqual(fv.Interface(), wv.Convert(fv.Type()).Interface())
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
