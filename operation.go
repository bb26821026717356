package catalystwan

import (
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"
	"runtime"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Reserved parameter names.
const (
	ParamPayload = "payload"
	ParamParams  = "params"
	paramSelf    = "self"
)

// NoArgs is the argument struct of operations without parameters.
type NoArgs struct{}

// OperationInfo is the immutable metadata of a declared operation.
type OperationInfo struct {
	Name     string
	Method   string
	Template *URLTemplate

	Payload TypeSpec
	Params  TypeSpec
	Return  TypeSpec

	// ResponseKey selects the member of a JSON object response to decode.
	ResponseKey string
	// TransportOptions are passed to the transport on every call.
	TransportOptions map[string]any
	// Defaults holds the declared defaults of url fields.
	Defaults map[string]string

	ArgsType reflect.Type
	Source   SourcePos

	registry *Registry
}

// Registry returns the registry the operation was declared in.
func (i *OperationInfo) Registry() *Registry {
	return i.registry
}

// Versions returns the version guard of the operation, or nil.
func (i *OperationInfo) Versions() *VersionGuard {
	return i.registry.VersionGuard(i.Name)
}

// View returns the role guard of the operation, or nil.
func (i *OperationInfo) View() *RoleGuard {
	return i.registry.RoleGuard(i.Name)
}

// SourcePos is the place an operation was declared.
type SourcePos struct {
	File string
	Line int
}

func (p SourcePos) String() string {
	if p.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(p.File), p.Line)
}

// Operation is a declared endpoint. A is the argument struct and R the
// declared return type.
type Operation[A any, R any] struct {
	info *OperationInfo
	args argLayout
}

// Info returns the operation metadata.
func (op *Operation[A, R]) Info() *OperationInfo {
	return op.info
}

// Name returns the qualified operation name.
func (op *Operation[A, R]) Name() string {
	return op.info.Name
}

// Versions binds a version specifier such as ">=20.9" to the operation.
// It panics if the specifier is invalid or versions were already bound.
func (op *Operation[A, R]) Versions(spec string, policy GuardPolicy) *Operation[A, R] {
	if err := op.BindVersions(spec, policy); err != nil {
		panic(err)
	}
	return op
}

// BindVersions is like Versions but returns the error.
func (op *Operation[A, R]) BindVersions(spec string, policy GuardPolicy) error {
	s, err := ParseVersionSpecifier(spec)
	if err != nil {
		return wrapError(CodeDeclaration, err, "%s: %s", op.info.Name, err.(*Error).Message)
	}
	return op.info.registry.bindVersions(op.info.Name, &VersionGuard{Specifier: s, Policy: policy})
}

// View restricts the operation to sessions with one of roles. It panics if
// no role is given or a view was already bound.
func (op *Operation[A, R]) View(policy GuardPolicy, roles ...Role) *Operation[A, R] {
	if err := op.BindView(policy, roles...); err != nil {
		panic(err)
	}
	return op
}

// BindView is like View but returns the error.
func (op *Operation[A, R]) BindView(policy GuardPolicy, roles ...Role) error {
	if len(roles) == 0 {
		return Errorf(CodeDeclaration, "%s: view needs at least one role", op.info.Name)
	}
	for _, r := range roles {
		if r == RoleUnknown {
			return Errorf(CodeDeclaration, "%s: unknown role in view", op.info.Name)
		}
	}
	allowed := append([]Role(nil), roles...)
	return op.info.registry.bindRoles(op.info.Name, &RoleGuard{Allowed: allowed, Policy: policy})
}

// Option configures a declaration.
type Option func(*declaration)

type declaration struct {
	responseKey string
	options     map[string]any
	registry    *Registry
}

// WithResponseKey decodes the value at key of a JSON object response
// instead of the whole document.
func WithResponseKey(key string) Option {
	return func(d *declaration) {
		d.responseKey = key
	}
}

// WithTransportOption passes a fixed option to the transport on every
// call, e.g. WithTransportOption("timeout", 5*time.Minute).
func WithTransportOption(key string, value any) Option {
	return func(d *declaration) {
		if d.options == nil {
			d.options = make(map[string]any)
		}
		d.options[key] = value
	}
}

// InRegistry declares the operation in r instead of DefaultRegistry.
func InRegistry(r *Registry) Option {
	return func(d *declaration) {
		d.registry = r
	}
}

// Get declares a GET operation. It panics on an invalid declaration.
func Get[A any, R any](name, urlTemplate string, opts ...Option) *Operation[A, R] {
	return mustDeclare[A, R](http.MethodGet, name, urlTemplate, opts)
}

// Put declares a PUT operation. It panics on an invalid declaration.
func Put[A any, R any](name, urlTemplate string, opts ...Option) *Operation[A, R] {
	return mustDeclare[A, R](http.MethodPut, name, urlTemplate, opts)
}

// Post declares a POST operation. It panics on an invalid declaration.
func Post[A any, R any](name, urlTemplate string, opts ...Option) *Operation[A, R] {
	return mustDeclare[A, R](http.MethodPost, name, urlTemplate, opts)
}

// Delete declares a DELETE operation. It panics on an invalid declaration.
func Delete[A any, R any](name, urlTemplate string, opts ...Option) *Operation[A, R] {
	return mustDeclare[A, R](http.MethodDelete, name, urlTemplate, opts)
}

func mustDeclare[A any, R any](method, name, urlTemplate string, opts []Option) *Operation[A, R] {
	op, err := declare[A, R](method, name, urlTemplate, opts, 3)
	if err != nil {
		panic(err)
	}
	return op
}

// Declare validates and registers an operation, returning a declaration
// error instead of panicking.
func Declare[A any, R any](method, name, urlTemplate string, opts ...Option) (*Operation[A, R], error) {
	return declare[A, R](method, name, urlTemplate, opts, 2)
}

// argLayout maps the fields of an argument struct to parameters.
type argLayout struct {
	url     []argField
	payload int
	params  int
}

type argField struct {
	name       string
	index      int
	def        string
	hasDefault bool
}

var uuidType = reflect.TypeFor[uuid.UUID]()

func declare[A any, R any](method, name, urlTemplate string, opts []Option, skip int) (*Operation[A, R], error) {
	d := declaration{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(&d)
	}
	fail := func(format string, args ...any) error {
		return Errorf(CodeDeclaration, "%s: %s", name, fmt.Sprintf(format, args...))
	}

	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete:
	default:
		return nil, fail("unsupported method %q", method)
	}
	if name == "" {
		return nil, Errorf(CodeDeclaration, "operation name is required")
	}

	tmpl, err := ParseURLTemplate(urlTemplate)
	if err != nil {
		return nil, fail("%s", err.(*Error).Message)
	}
	for _, f := range tmpl.Fields() {
		if f == paramSelf || f == ParamPayload || f == ParamParams {
			return nil, fail("url template %q uses reserved name %q", urlTemplate, f)
		}
	}

	info := &OperationInfo{
		Name:             name,
		Method:           method,
		Template:         tmpl,
		ResponseKey:      d.responseKey,
		TransportOptions: d.options,
		Defaults:         make(map[string]string),
		ArgsType:         reflect.TypeFor[A](),
		registry:         d.registry,
	}
	if _, file, line, ok := runtime.Caller(skip); ok {
		info.Source = SourcePos{File: file, Line: line}
	}

	layout, err := layoutArgs(info, fail)
	if err != nil {
		return nil, err
	}

	info.Return, err = classify(reflect.TypeFor[R](), positionReturn)
	if err != nil {
		return nil, fail("%s", err.(*Error).Message)
	}
	if info.Return.Kind == KindAbsent {
		return nil, fail("missing return type, declare catalystwan.Empty for operations without a result")
	}

	if err := d.registry.add(info); err != nil {
		return nil, err
	}
	return &Operation[A, R]{info: info, args: layout}, nil
}

// layoutArgs validates the argument struct against the url template and
// classifies the reserved parameters.
func layoutArgs(info *OperationInfo, fail func(string, ...any) error) (argLayout, error) {
	layout := argLayout{payload: -1, params: -1}
	t := info.ArgsType
	if t.Kind() != reflect.Struct {
		return layout, fail("arguments must be a struct, got %s", t)
	}

	seen := make(map[string]bool)
	var purposeless []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			return layout, fail("embedded argument field %s is not supported", f.Name)
		}
		if !f.IsExported() {
			return layout, fail("argument field %s is not exported", f.Name)
		}
		pname := paramName(f)
		if seen[pname] {
			return layout, fail("parameter %q is declared twice", pname)
		}
		seen[pname] = true

		switch pname {
		case paramSelf:
			return layout, fail("parameter name %q is reserved", pname)
		case ParamPayload:
			spec, err := classify(f.Type, positionPayload)
			if err != nil {
				return layout, fail("%s", err.(*Error).Message)
			}
			if spec.Kind == KindAbsent || spec.Kind == KindNull {
				return layout, fail("payload must have a concrete type")
			}
			info.Payload = spec
			layout.payload = i
			continue
		case ParamParams:
			spec, err := classify(f.Type, positionParams)
			if err != nil {
				return layout, fail("%s", err.(*Error).Message)
			}
			if spec.Kind != KindMapping && spec.Kind != KindModel {
				return layout, fail("params must be a mapping or a model, got %s", f.Type)
			}
			info.Params = spec
			layout.params = i
			continue
		}

		if !info.Template.Has(pname) {
			purposeless = append(purposeless, pname)
			continue
		}
		if !isURLFieldType(f.Type) {
			return layout, fail("url field %q must be a string, a named string type or uuid.UUID, got %s", pname, f.Type)
		}
		af := argField{name: pname, index: i}
		if def, ok := f.Tag.Lookup("default"); ok {
			af.def, af.hasDefault = def, true
			info.Defaults[pname] = def
		}
		layout.url = append(layout.url, af)
	}

	if len(purposeless) > 0 {
		return layout, fail("parameters %s are not used by url template %q", quoteList(purposeless), info.Template)
	}
	var missing []string
	for _, field := range info.Template.Fields() {
		if !seen[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return layout, fail("url fields %s have no matching parameter", quoteList(missing))
	}
	return layout, nil
}

// paramName is the `param` tag, or the field name with its first rune
// lower-cased.
func paramName(f reflect.StructField) string {
	if name, ok := f.Tag.Lookup("param"); ok && name != "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(f.Name)
	return string(unicode.ToLower(r)) + f.Name[size:]
}

func isURLFieldType(t reflect.Type) bool {
	return t == uuidType || t.Kind() == reflect.String
}
