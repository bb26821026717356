package catalystwan

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

// Linker resolves source links for the endpoint table. An empty link
// renders plain text.
type Linker interface {
	OperationLink(info *OperationInfo) string
	TypeLink(t reflect.Type) string
}

// Markdown writes the table of declared operations. Rows are sorted by
// operation name so the output is stable. linker may be nil.
func (r *Registry) Markdown(w io.Writer, linker Linker) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "All URIs are relative to *%s*\n\n", DefaultBasePath)
	bw.WriteString("HTTP request | Supported Versions | Method | Payload Type | Return Type | Tenancy Mode\n")
	bw.WriteString("------------ | ------------------ | ------ | ------------ | ----------- | ------------\n")
	for _, info := range r.Operations() {
		versions := ""
		if g := info.Versions(); g != nil {
			versions = g.Specifier.String()
		}
		roles := ""
		if g := info.View(); g != nil {
			names := make([]string, len(g.Allowed))
			for i, role := range g.Allowed {
				names[i] = role.String()
			}
			slices.Sort(names)
			roles = strings.Join(names, ", ")
		}
		fmt.Fprintf(bw, "%s %s|%s|%s|%s|%s|%s\n",
			info.Method, info.Template,
			escapeCell(versions),
			mdLink(info.Name, operationLink(linker, info)),
			renderSpec(info.Payload, linker),
			renderSpec(info.Return, linker),
			roles,
		)
	}
	return bw.Flush()
}

func operationLink(linker Linker, info *OperationInfo) string {
	if linker == nil {
		return ""
	}
	return linker.OperationLink(info)
}

// renderSpec renders a type spec with its model linked to its source.
func renderSpec(spec TypeSpec, linker Linker) string {
	var inner reflect.Type
	switch spec.Kind {
	case KindModel, KindSequence:
		inner = spec.Model
	case KindCustom:
		inner = derefType(spec.Type)
	default:
		return escapeCell(spec.String())
	}
	link := ""
	if linker != nil {
		link = linker.TypeLink(inner)
	}
	name := typeName(inner)
	rendered := escapeCell(spec.String())
	i := strings.LastIndex(rendered, name)
	if i < 0 {
		return rendered
	}
	return rendered[:i] + mdLink(name, link) + rendered[i+len(name):]
}

func mdLink(text, link string) string {
	if link == "" {
		return "**" + text + "**"
	}
	return fmt.Sprintf("[**%s**](%s)", text, link)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
