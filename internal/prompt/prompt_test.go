package prompt

import (
	"strings"
	"testing"

	"github.com/richinex/dnclgen/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"semicolons", `表示する("a"); x = 1;`, "表示する(\"a\")\n x = 1"},
		{"crlf", "x = 1\r\ny = 2\r\n", "x = 1\ny = 2"},
		{"surrounding space", "\n\n  x = 1  \n", "x = 1"},
		{"empty", " ; ;\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFence(t *testing.T) {
	got := Fence("x = 1")
	want := "```dncl\nx = 1\n```"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSpecificationMentionsTarget(t *testing.T) {
	for _, name := range model.Targets() {
		target, err := model.LookupTarget(name)
		if err != nil {
			t.Fatalf("LookupTarget(%q): %v", name, err)
		}
		spec, err := Specification(target)
		if err != nil {
			t.Fatalf("Specification(%q): %v", name, err)
		}
		if !strings.HasPrefix(spec, LanguageSpec()) {
			t.Errorf("%s: expected spec to start with the DNCL document", name)
		}
		if !strings.Contains(spec, target.Display+"プログラムへトランスパイル") {
			t.Errorf("%s: instruction does not name the target", name)
		}
	}
}

func TestSpecificationDiffersPerTarget(t *testing.T) {
	goTarget, _ := model.LookupTarget("go")
	rustTarget, _ := model.LookupTarget("rust")

	a, _ := Specification(goTarget)
	b, _ := Specification(rustTarget)
	if a == b {
		t.Error("expected target-specific specifications")
	}
}
