// Directive header parsing.
//
// Input looks like:
//
//	@model = "gpt-4o", @seed = 42; @max_completion_tokens = 2048
//	"DNCL code"
//
// Directives are optional and may be separated by ',' or ';'. The code
// follows either as one quoted string or as raw text. @file = "path"
// replaces inline code with the file's contents.

package transpile

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDirectives splits a directive header from the DNCL code after it.
func ParseDirectives(input string) (Options, error) {
	var opts Options
	sc := &scanner{src: input}

	for {
		sc.skipSpace()
		if sc.peek() != '@' {
			break
		}
		sc.pos++

		start := sc.pos
		name := sc.ident()
		if name == "" {
			return Options{}, sc.errorf(start, "expected directive name")
		}

		sc.skipSpace()
		if sc.peek() != '=' {
			return Options{}, sc.errorf(sc.pos, "expected '=' after @%s", name)
		}
		sc.pos++
		sc.skipSpace()

		if err := applyDirective(&opts, sc, name, start); err != nil {
			return Options{}, err
		}

		sc.skipSpace()
		if c := sc.peek(); c == ',' || c == ';' {
			sc.pos++
		}
	}

	code := sc.code()

	if opts.File != "" {
		if strings.TrimSpace(code) != "" {
			return Options{}, sc.errorf(sc.pos, "inline code is not allowed with @file")
		}
		return opts, nil
	}
	if strings.TrimSpace(code) == "" {
		return Options{}, ErrEmptySource
	}

	opts.Text = code
	return opts, nil
}

func applyDirective(opts *Options, sc *scanner, name string, at int) error {
	switch name {
	case "model":
		v, err := sc.quoted()
		if err != nil {
			return err
		}
		opts.Model = v
	case "file":
		v, err := sc.quoted()
		if err != nil {
			return err
		}
		opts.File = v
	case "seed":
		tok := sc.number()
		v, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return sc.errorf(at, "invalid @seed %q", tok)
		}
		opts.Seed = &v
	case "max_completion_tokens":
		tok := sc.number()
		v, err := strconv.ParseUint(tok, 0, 32)
		if err != nil {
			return sc.errorf(at, "invalid @max_completion_tokens %q", tok)
		}
		n := uint32(v)
		opts.MaxCompletionTokens = &n
	case "target":
		v, err := sc.quoted()
		if err != nil {
			return err
		}
		opts.Target = v
	case "editing":
		// Accepted for compatibility; it has no effect.
		tok := sc.ident()
		if _, err := strconv.ParseBool(tok); err != nil {
			return sc.errorf(at, "invalid @editing %q", tok)
		}
	default:
		return sc.errorf(at, "unexpected field %q", name)
	}
	return nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *scanner) ident() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (s.pos > start && '0' <= c && c <= '9') {
			s.pos++
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

func (s *scanner) number() string {
	start := s.pos
	if c := s.peek(); c == '-' || c == '+' {
		s.pos++
	}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') || c == 'x' || c == 'X' || c == 'o' || c == 'O' {
			s.pos++
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

// quoted reads a Go string literal (interpreted or raw).
func (s *scanner) quoted() (string, error) {
	lit, err := strconv.QuotedPrefix(s.src[s.pos:])
	if err != nil {
		return "", s.errorf(s.pos, "expected string literal")
	}
	v, err := strconv.Unquote(lit)
	if err != nil {
		return "", s.errorf(s.pos, "invalid string literal: %v", err)
	}
	s.pos += len(lit)
	return v, nil
}

// code returns the rest of the input. A single string literal is unquoted.
func (s *scanner) code() string {
	rest := s.src[s.pos:]
	if c := s.peek(); c != '"' && c != '`' {
		return rest
	}

	v, err := s.quoted()
	if err == nil {
		s.skipSpace()
		if s.pos == len(s.src) {
			return v
		}
	}
	// Not a lone literal; treat everything as raw code.
	s.pos = len(s.src)
	return rest
}

func (s *scanner) errorf(at int, format string, args ...any) error {
	return fmt.Errorf("directive at offset %d: %s", at, fmt.Sprintf(format, args...))
}
