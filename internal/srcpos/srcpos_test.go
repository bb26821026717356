package srcpos

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/broady/catalystwan"
)

type tenant struct {
	Name string `json:"name"`
}

func TestLoad(t *testing.T) {
	t.Setenv("GOWORK", "off")

	idx, err := Load("", ".", "github.com/broady/catalystwan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() == 0 {
		t.Fatal("expected indexed types")
	}

	tests := []struct {
		typ  reflect.Type
		file string
	}{
		{reflect.TypeFor[Index](), "srcpos.go"},
		{reflect.TypeFor[*Linker](), "srcpos.go"},
		{reflect.TypeFor[catalystwan.DataSequence[tenant]](), "sequence.go"},
	}
	for _, tt := range tests {
		pos, ok := idx.Lookup(tt.typ)
		if !ok {
			t.Errorf("expected %s to be indexed", tt.typ)
			continue
		}
		if filepath.Base(pos.Filename) != tt.file || pos.Line == 0 {
			t.Errorf("%s: expected %s, got %s", tt.typ, tt.file, pos)
		}
	}

	if _, ok := idx.Lookup(reflect.TypeFor[string]()); ok {
		t.Error("expected builtin types not to be indexed")
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("GOWORK", "off")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module broken\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package broken\n\ntype T struct {\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, "."); err == nil {
		t.Error("expected error for a package with syntax errors")
	}
}

func TestLinker(t *testing.T) {
	t.Setenv("GOWORK", "off")

	root, err := filepath.Abs("../..")
	if err != nil {
		t.Fatal(err)
	}
	idx, err := Load("", ".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := &Linker{Index: idx, Root: root, BaseURL: "https://example.com/blob/main/"}

	link := l.TypeLink(reflect.TypeFor[Linker]())
	if !strings.HasPrefix(link, "https://example.com/blob/main/internal/srcpos/srcpos.go#L") {
		t.Errorf("unexpected type link %q", link)
	}

	info := &catalystwan.OperationInfo{Source: catalystwan.SourcePos{File: filepath.Join(root, "endpoints", "client.go"), Line: 42}}
	if got := l.OperationLink(info); got != "https://example.com/blob/main/endpoints/client.go#L42" {
		t.Errorf("unexpected operation link %q", got)
	}

	outside := &catalystwan.OperationInfo{Source: catalystwan.SourcePos{File: "/elsewhere/x.go", Line: 1}}
	if got := l.OperationLink(outside); got != "" {
		t.Errorf("expected no link outside root, got %q", got)
	}
	if got := l.OperationLink(&catalystwan.OperationInfo{}); got != "" {
		t.Errorf("expected no link without source, got %q", got)
	}
	if got := (&Linker{}).TypeLink(reflect.TypeFor[Linker]()); got != "" {
		t.Errorf("expected no link without index, got %q", got)
	}
}
