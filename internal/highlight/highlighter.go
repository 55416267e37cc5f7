// Package highlight colors code and JSON for 256-color terminals.
package highlight

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter provides syntax highlighting for tool output.
type Highlighter struct {
	style     string
	formatter chroma.Formatter
}

// New creates a Highlighter with the given chroma style.
// An empty style means monokai.
func New(style string) *Highlighter {
	if style == "" {
		style = "monokai"
	}
	return &Highlighter{
		style:     style,
		formatter: formatters.Get("terminal256"),
	}
}

// Highlight applies syntax highlighting to code. Unknown languages use the
// fallback lexer; on any failure the input is returned unchanged.
func (h *Highlighter) Highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(h.style)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// JSON renders v as indented, highlighted JSON.
func (h *Highlighter) JSON(v any) (string, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return h.Highlight(string(body), "json"), nil
}

var extLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".rs":   "rust",
	".java": "java",
	".sh":   "bash",
	".sql":  "sql",
	".html": "html",
	".css":  "css",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".xml":  "xml",
	".md":   "markdown",
}

var nameLanguages = map[string]string{
	"dockerfile": "docker",
	"makefile":   "makefile",
	"go.mod":     "gomod",
	".gitignore": "gitignore",
}

// DetectLanguage guesses the lexer name for a file path.
func (h *Highlighter) DetectLanguage(filename string) string {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(filename))]; ok {
		return lang
	}
	if lang, ok := nameLanguages[strings.ToLower(filepath.Base(filename))]; ok {
		return lang
	}
	if lexer := lexers.Match(filename); lexer != nil {
		return lexer.Config().Name
	}
	return "text"
}
