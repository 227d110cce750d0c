// Package dictionary provides the key/definition sources consumed by the loader.
//
// A Dictionary is parsed once from an in-memory byte buffer and then shared
// read-only by every extraction worker.
package dictionary

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Key is a dictionary headword plus the locator needed to resolve it.
type Key struct {
	Text  string
	Index int
}

// Dictionary exposes the ordered headwords of a parsed source and resolves
// their definitions. Implementations must be safe for concurrent Resolve calls.
type Dictionary interface {
	Keys() []Key
	Resolve(k Key) (string, error)
}

// Parser turns the raw bytes of a dictionary file into a Dictionary.
type Parser func(data []byte) (Dictionary, error)

// Format names a supported source layout.
type Format string

const (
	FormatJSON Format = "json"
	FormatTab  Format = "tab"
)

// ErrUnknownFormat is returned when no parser matches the requested format or file name.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// ErrKeyNotFound is returned by Resolve for a key the dictionary does not hold.
var ErrKeyNotFound = errors.New("key not found")

// ParseFormat validates a format name. The empty string means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON, FormatTab:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParserFor returns the parser for format, or detects it from path when format is empty.
// Compression suffixes (.gz, .zst, .lz4, .sz) are ignored during detection.
func ParserFor(format Format, path string) (Parser, error) {
	if format == "" {
		format = detectFormat(path)
	}
	switch format {
	case FormatJSON:
		return ParseJSON, nil
	case FormatTab:
		return ParseTab, nil
	default:
		return nil, fmt.Errorf("%w for %s", ErrUnknownFormat, path)
	}
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(TrimCompressionExt(path))) {
	case ".json":
		return FormatJSON
	case ".txt", ".tab", ".tsv":
		return FormatTab
	default:
		return ""
	}
}
