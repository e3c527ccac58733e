// Package format renders CLI payloads.
package format

import (
	"encoding/json"
	"io"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes one JSON document per call.
type JSONFormatter struct {
	// Indent is applied per nesting level; empty writes compact JSON.
	Indent string
}

// Write encodes payload to w followed by a newline. HTML characters are left
// unescaped so titles with <, > and & read naturally.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(payload)
}
