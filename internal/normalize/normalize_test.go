package normalize

import (
	"reflect"
	"testing"
)

func TestTagName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase passthrough", "golang", "golang"},
		{"uppercase folded", "GoLang", "golang"},
		{"trimmed", "  writing \t", "writing"},
		{"trim and fold", " Foo ", "foo"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"unicode folded", "Straße", "straße"},
		{"inner whitespace kept", "machine learning", "machine learning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagName(tt.input); got != tt.want {
				t.Errorf("TagName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTagNames_DedupAndOrder(t *testing.T) {
	got := TagNames([]string{"Foo", " foo ", "bar", "", "  ", "FOO", "baz"})
	want := []string{"foo", "bar", "baz"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TagNames = %v, want %v", got, want)
	}
}

func TestTagNames_Empty(t *testing.T) {
	if got := TagNames(nil); got != nil {
		t.Errorf("TagNames(nil) = %v, want nil", got)
	}
	if got := TagNames([]string{"", "  "}); got != nil {
		t.Errorf("TagNames(blank) = %v, want nil", got)
	}
}

func TestQuery(t *testing.T) {
	if got := Query("  hello  "); got != "hello" {
		t.Errorf("Query = %q, want %q", got, "hello")
	}
	if got := Query("   "); got != "" {
		t.Errorf("Query(whitespace) = %q, want empty", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(" My Prompt "); got != "My Prompt" {
		t.Errorf("Title = %q, want %q", got, "My Prompt")
	}
	if got := Title("\n\t"); got != "" {
		t.Errorf("Title(whitespace) = %q, want empty", got)
	}
}
