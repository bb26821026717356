package catalystwan

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestParseURLTemplate(t *testing.T) {
	tests := []struct {
		tmpl   string
		fields []string
	}{
		{"/admin/user", nil},
		{"/admin/user/{username}", []string{"username"}},
		{"/tenant/{tenantId}/vsessionid", []string{"tenantId"}},
		{"/a/{x}/b/{y}/{x}", []string{"x", "y"}},
		{"/literal/{{braces}}", nil},
	}
	for _, tt := range tests {
		tmpl, err := ParseURLTemplate(tt.tmpl)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.tmpl, err)
		}
		if diff := cmp.Diff(tt.fields, tmpl.Fields()); diff != "" {
			t.Errorf("%s: fields mismatch (-want +got):\n%s", tt.tmpl, diff)
		}
	}
}

func TestParseURLTemplate_Errors(t *testing.T) {
	for _, tmpl := range []string{"/a/{}", "/a/{b:c}", "/a/{b!r}", "/a}", "/a/{b"} {
		_, err := ParseURLTemplate(tmpl)
		if !errors.Is(err, ErrDeclaration) {
			t.Errorf("%q: expected declaration error, got %v", tmpl, err)
		}
	}
}

func TestURLTemplate_Format(t *testing.T) {
	tmpl, err := ParseURLTemplate("/{{x}}/device/{id}/{id}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := tmpl.Format(map[string]string{"id": "a b/c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/{x}/device/a b/c/a b/c" {
		t.Errorf("expected values inserted verbatim, got %s", got)
	}

	if _, err := tmpl.Format(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected invalid argument for unbound field, got %v", err)
	}
}

type testCategory string

func (c testCategory) String() string { return "category:" + string(c) }

func TestFormatURLValue(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	name := "alice"
	tests := []struct {
		value    any
		expected string
	}{
		{"plain", "plain"},
		{testCategory("vedges"), "vedges"},
		{id, "00000000-0000-0000-0000-000000000001"},
		{&name, "alice"},
		{(*string)(nil), ""},
	}
	for _, tt := range tests {
		if got := formatURLValue(reflect.ValueOf(tt.value)); got != tt.expected {
			t.Errorf("formatURLValue(%v): expected %q, got %q", tt.value, tt.expected, got)
		}
	}
}
