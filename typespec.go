package catalystwan

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

// Kind is the shape of a declared payload, params or return type.
type Kind int

const (
	// KindAbsent means the type was not declared.
	KindAbsent Kind = iota
	KindNull
	KindJSON
	KindText
	KindBytes
	KindMapping
	KindStream
	KindModel
	KindSequence
	KindUnion
	KindCustom
)

var kindNames = [...]string{
	KindAbsent:   "absent",
	KindNull:     "null",
	KindJSON:     "json",
	KindText:     "text",
	KindBytes:    "bytes",
	KindMapping:  "mapping",
	KindStream:   "stream",
	KindModel:    "model",
	KindSequence: "sequence",
	KindUnion:    "union",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// TypeSpec is the classified form of a declared type.
type TypeSpec struct {
	Kind Kind
	// Type is the declared Go type.
	Type reflect.Type
	// Model is the element model type (never a pointer) for KindModel and
	// KindSequence.
	Model reflect.Type
	// Typed is set for sequences declared as DataSequence; plain slices are
	// accepted for payloads only.
	Typed bool
	// Members are the flattened model members of a union.
	Members []reflect.Type
	// Optional is set when a nil value is allowed. A nil optional payload
	// omits the body.
	Optional bool
}

// String renders the spec for documentation.
func (s TypeSpec) String() string {
	var base string
	switch s.Kind {
	case KindAbsent:
		return ""
	case KindNull:
		return "None"
	case KindJSON:
		base = "JSON"
	case KindText:
		base = "str"
	case KindBytes:
		base = "bytes"
	case KindMapping:
		base = "dict"
	case KindStream:
		base = "stream"
	case KindModel:
		base = typeName(s.Model)
	case KindSequence:
		if s.Typed {
			base = "DataSequence[" + typeName(s.Model) + "]"
		} else {
			base = "List[" + typeName(s.Model) + "]"
		}
	case KindUnion:
		names := make([]string, len(s.Members))
		for i, m := range s.Members {
			names[i] = typeName(m)
		}
		base = "Union[" + strings.Join(names, ", ") + "]"
	case KindCustom:
		base = typeName(derefType(s.Type))
	}
	if s.Optional {
		return "Optional[" + base + "]"
	}
	return base
}

type position int

const (
	positionPayload position = iota
	positionParams
	positionReturn
)

func (p position) String() string {
	switch p {
	case positionPayload:
		return "payload"
	case positionParams:
		return "params"
	default:
		return "return"
	}
}

var (
	anyType      = reflect.TypeFor[any]()
	jsonType     = reflect.TypeFor[JSON]()
	emptyType    = reflect.TypeFor[Empty]()
	readerType   = reflect.TypeFor[io.Reader]()
	customType   = reflect.TypeFor[CustomPayload]()
	sequenceType = reflect.TypeFor[sequenceOf]()
	bytesType    = reflect.TypeFor[[]byte]()
)

// sequenceOf is implemented by *DataSequence.
type sequenceOf interface {
	elemType() reflect.Type
	values() reflect.Value
}

var unions = struct {
	sync.RWMutex
	members map[reflect.Type][]reflect.Type
}{members: make(map[reflect.Type][]reflect.Type)}

// RegisterUnion declares the interface type U as a union of models. Payloads
// declared as U accept any value whose dynamic type is one of the members.
// A member may itself be a registered union; it is flattened when an
// operation using U is declared.
//
// RegisterUnion panics if U is not an interface or if a member does not
// implement U. It returns U's type so it can initialize a package-level
// variable declared ahead of the operations that use U.
func RegisterUnion[U any](members ...reflect.Type) reflect.Type {
	u := reflect.TypeFor[U]()
	if u.Kind() != reflect.Interface {
		panic(Errorf(CodeDeclaration, "union %s must be an interface type", u))
	}
	if len(members) < 2 {
		panic(Errorf(CodeDeclaration, "union %s needs at least two members", u))
	}
	for _, m := range members {
		if !m.Implements(u) {
			panic(Errorf(CodeDeclaration, "union member %s does not implement %s", m, u))
		}
	}
	unions.Lock()
	defer unions.Unlock()
	unions.members[u] = append([]reflect.Type(nil), members...)
	return u
}

func unionMembers(t reflect.Type) ([]reflect.Type, bool) {
	unions.RLock()
	defer unions.RUnlock()
	m, ok := unions.members[t]
	return m, ok
}

// flattenUnion collects the model leaves of a union, recursing into
// members that are unions themselves.
func flattenUnion(t reflect.Type, seen map[reflect.Type]bool, out []reflect.Type) ([]reflect.Type, error) {
	if seen[t] {
		return out, nil
	}
	seen[t] = true
	members, _ := unionMembers(t)
	for _, m := range members {
		if _, ok := unionMembers(m); ok {
			var err error
			out, err = flattenUnion(m, seen, out)
			if err != nil {
				return nil, err
			}
			continue
		}
		if !isModelType(derefType(m)) {
			return nil, Errorf(CodeDeclaration, "union %s has non-model member %s", typeName(t), m)
		}
		if !containsType(out, m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// classify turns a declared type into a TypeSpec.
func classify(t reflect.Type, pos position) (TypeSpec, error) {
	spec := TypeSpec{Type: t}
	switch {
	case t == nil || t == anyType:
		spec.Kind = KindAbsent
		return spec, nil
	case t == jsonType:
		spec.Kind = KindJSON
		return spec, nil
	case t == emptyType:
		spec.Kind = KindNull
		return spec, nil
	}

	if pos == positionPayload && t.Implements(customType) {
		spec.Kind = KindCustom
		spec.Optional = isNilable(t)
		return spec, nil
	}

	switch {
	case t == bytesType || (t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8):
		spec.Kind = KindBytes
		return spec, nil
	case t.Kind() == reflect.String:
		spec.Kind = KindText
		return spec, nil
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		spec.Kind = KindMapping
		spec.Optional = pos != positionReturn
		return spec, nil
	case t == readerType:
		spec.Kind = KindStream
		spec.Optional = pos == positionPayload
		return spec, nil
	}

	if elem, ok := sequenceElem(t); ok {
		m := derefType(elem)
		if !isModelType(m) {
			return spec, Errorf(CodeDeclaration, "%s sequence element %s is not a model", pos, elem)
		}
		spec.Kind = KindSequence
		spec.Model = m
		spec.Typed = true
		spec.Optional = pos == positionPayload && t.Kind() == reflect.Pointer
		return spec, nil
	}

	if t.Kind() == reflect.Slice && isModelType(derefType(t.Elem())) {
		if pos == positionReturn {
			return spec, Errorf(CodeDeclaration, "sequence returns must be declared as *DataSequence[%s], not %s", typeName(derefType(t.Elem())), t)
		}
		spec.Kind = KindSequence
		spec.Model = derefType(t.Elem())
		spec.Optional = pos == positionPayload
		return spec, nil
	}

	if t.Kind() == reflect.Interface {
		if _, ok := unionMembers(t); ok {
			if pos != positionPayload {
				return spec, Errorf(CodeDeclaration, "union %s is only allowed as a payload", typeName(t))
			}
			members, err := flattenUnion(t, make(map[reflect.Type]bool), nil)
			if err != nil {
				return spec, err
			}
			spec.Kind = KindUnion
			spec.Members = members
			return spec, nil
		}
		if pos == positionPayload && t.Implements(readerType) {
			spec.Kind = KindStream
			spec.Optional = true
			return spec, nil
		}
	}

	if t.Kind() == reflect.Pointer && isModelType(t.Elem()) {
		spec.Kind = KindModel
		spec.Model = t.Elem()
		spec.Optional = pos != positionReturn
		return spec, nil
	}
	if isModelType(t) {
		spec.Kind = KindModel
		spec.Model = t
		return spec, nil
	}
	return spec, Errorf(CodeDeclaration, "unsupported %s type %s", pos, t)
}

// sequenceElem reports the element type of DataSequence and
// *DataSequence types.
func sequenceElem(t reflect.Type) (reflect.Type, bool) {
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(sequenceType):
		return reflect.New(t.Elem()).Interface().(sequenceOf).elemType(), true
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(sequenceType):
		return reflect.New(t).Interface().(sequenceOf).elemType(), true
	}
	return nil, false
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func containsType(ts []reflect.Type, t reflect.Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}
