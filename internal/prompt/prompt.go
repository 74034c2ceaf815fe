// Package prompt builds the text submitted to the completion service.
//
// The DNCL language document is carried as an embedded resource and never
// parsed; only the trailing instruction varies with the target language.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/richinex/dnclgen/model"
)

//go:embed dncl_spec.md
var dnclSpec string

//go:embed instruction.tmpl
var instructionBody string

var instruction = template.Must(template.New("instruction").Parse(instructionBody))

// LanguageSpec returns the embedded DNCL document.
func LanguageSpec() string {
	return dnclSpec
}

// Specification renders the full fixed document for target: the DNCL
// description followed by the translation instruction.
func Specification(target model.Target) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(dnclSpec)
	buf.WriteString("\n")
	if err := instruction.Execute(&buf, target); err != nil {
		return "", fmt.Errorf("failed to render instruction for %s: %w", target.Name, err)
	}
	return buf.String(), nil
}

// Normalize converts caller text into the canonical line convention.
// Line breaks may arrive encoded as ';' (single-line literals) or CRLF;
// both become '\n'.
func Normalize(source string) string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	source = strings.ReplaceAll(source, ";", "\n")
	return strings.TrimSpace(source)
}

// Fence wraps normalized source in a dncl-tagged code block.
func Fence(source string) string {
	return "```dncl\n" + source + "\n```"
}
