// Package srcpos locates the declarations of Go types so generated
// documentation can link to source.
package srcpos

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/broady/catalystwan"
	"golang.org/x/tools/go/packages"
)

// Index maps "importpath.TypeName" to the position of the type declaration.
type Index struct {
	types map[string]token.Position
}

// Load parses the packages matching patterns, as understood by the go
// command, relative to dir. If dir is empty, the current directory is used.
func Load(dir string, patterns ...string) (*Index, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", patterns)
	}

	idx := &Index{types: make(map[string]token.Position)}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
		}
		for _, f := range pkg.Syntax {
			idx.addFile(pkg.PkgPath, pkg.Fset, f)
		}
	}
	return idx, nil
}

func (idx *Index) addFile(pkgPath string, fset *token.FileSet, f *ast.File) {
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			idx.types[pkgPath+"."+ts.Name.Name] = fset.Position(ts.Pos())
		}
	}
}

// Lookup returns the declaration position of t.
func (idx *Index) Lookup(t reflect.Type) (token.Position, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return token.Position{}, false
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	pos, ok := idx.types[t.PkgPath()+"."+name]
	return pos, ok
}

// Len returns the number of indexed types.
func (idx *Index) Len() int {
	return len(idx.types)
}

// Linker renders links to files below Root as BaseURL + relative path +
// "#L" + line. It implements catalystwan.Linker.
type Linker struct {
	Index   *Index
	Root    string
	BaseURL string
}

var _ catalystwan.Linker = (*Linker)(nil)

// OperationLink links the place the operation was declared.
func (l *Linker) OperationLink(info *catalystwan.OperationInfo) string {
	if info.Source.File == "" {
		return ""
	}
	return l.link(info.Source.File, info.Source.Line)
}

// TypeLink links the declaration of t.
func (l *Linker) TypeLink(t reflect.Type) string {
	if l.Index == nil {
		return ""
	}
	pos, ok := l.Index.Lookup(t)
	if !ok {
		return ""
	}
	return l.link(pos.Filename, pos.Line)
}

func (l *Linker) link(file string, line int) string {
	rel, err := filepath.Rel(l.Root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return fmt.Sprintf("%s%s#L%d", l.BaseURL, filepath.ToSlash(rel), line)
}
