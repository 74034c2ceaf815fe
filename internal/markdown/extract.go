// Package markdown extracts fenced code blocks from LLM responses.
//
// Models usually answer with prose around one or more ``` blocks. This
// package pulls the block bodies out so the caller receives code only, and
// falls back to the whole answer when the model omitted fencing.
package markdown

import "strings"

const fence = "```"

// Block is a fenced code block found in a response.
type Block struct {
	Lang string // Info string after the opening fence, lowercased; may be empty
	Body string // Lines between the fences, joined with '\n'
}

// Blocks returns every closed fenced block in text, in order of appearance.
// An opening fence without a matching close is ignored.
func Blocks(text string) []Block {
	var blocks []Block
	var body []string
	lang := ""
	open := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)

		if !open {
			if strings.HasPrefix(trimmed, fence) {
				open = true
				lang = infoLang(strings.TrimPrefix(trimmed, fence))
				body = body[:0]
			}
			continue
		}

		if trimmed == fence {
			blocks = append(blocks, Block{Lang: lang, Body: strings.Join(body, "\n")})
			open = false
			continue
		}
		body = append(body, line)
	}

	return blocks
}

// infoLang returns the first word of a fence info string.
func infoLang(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], "{}."))
}

// ExtractCodeBlocks returns the bodies of the fenced blocks in text.
// With no langs every block is returned; otherwise only untagged blocks and
// blocks tagged with one of langs (case-insensitive).
func ExtractCodeBlocks(text string, langs ...string) []string {
	var out []string
	for _, b := range Blocks(text) {
		if b.Lang == "" || len(langs) == 0 || matches(b.Lang, langs) {
			out = append(out, b.Body)
		}
	}
	return out
}

func matches(lang string, langs []string) bool {
	for _, l := range langs {
		if strings.EqualFold(lang, l) {
			return true
		}
	}
	return false
}

// CodeOrRaw joins the extracted blocks with a newline, or returns text
// unchanged when there are none.
func CodeOrRaw(text string, langs ...string) string {
	codes := ExtractCodeBlocks(text, langs...)
	if len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "\n")
}
