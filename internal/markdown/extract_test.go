package markdown

import "testing"

func TestSingleBlock(t *testing.T) {
	response := "Here you go:\n```rust\nfn main() {}\n```\nEnjoy."
	got := CodeOrRaw(response)
	if got != "fn main() {}" {
		t.Errorf("expected %q, got %q", "fn main() {}", got)
	}
}

func TestNoFences(t *testing.T) {
	response := "package main\n\nfunc main() {}\n"
	got := CodeOrRaw(response)
	if got != response {
		t.Errorf("expected input unchanged, got %q", got)
	}
}

func TestTwoBlocks(t *testing.T) {
	response := "```\na\n```\ntext between\n```go\nb\n```"
	got := CodeOrRaw(response)
	if got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
}

func TestMultilineBodyPreserved(t *testing.T) {
	response := "```go\npackage main\n\nfunc main() {\n\tprintln(1)\n}\n```"
	want := "package main\n\nfunc main() {\n\tprintln(1)\n}"
	if got := CodeOrRaw(response); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLanguageFilter(t *testing.T) {
	response := "```toml\n[dependencies]\nrand = \"0.8\"\n```\n```rust\nfn main() {}\n```\n```\nuntagged\n```"
	got := ExtractCodeBlocks(response, "rust", "rs")
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %q", len(got), got)
	}
	if got[0] != "fn main() {}" || got[1] != "untagged" {
		t.Errorf("unexpected blocks: %q", got)
	}
}

func TestFilterFallsBackToRaw(t *testing.T) {
	response := "```python\nprint(1)\n```"
	if got := CodeOrRaw(response, "go"); got != response {
		t.Errorf("expected raw response when no block matches, got %q", got)
	}
}

func TestUnclosedFenceIgnored(t *testing.T) {
	response := "```go\nfunc main() {}\n```\n```go\nunterminated"
	got := ExtractCodeBlocks(response)
	if len(got) != 1 || got[0] != "func main() {}" {
		t.Errorf("unexpected blocks: %q", got)
	}
}

func TestCRLF(t *testing.T) {
	response := "```go\r\nx := 1\r\n```\r\n"
	if got := CodeOrRaw(response); got != "x := 1" {
		t.Errorf("expected %q, got %q", "x := 1", got)
	}
}

func TestBlocksLang(t *testing.T) {
	blocks := Blocks("```Go title=main.go\nx\n```")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Lang != "go" {
		t.Errorf("expected lang 'go', got %q", blocks[0].Lang)
	}
}
