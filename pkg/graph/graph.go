package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/family"
)

// Encodings accepted by [ReadFamily] and [WriteFamily].
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// =============================================================================
// Family Serialization API
// =============================================================================

// MarshalFamily converts a family graph to JSON bytes.
func MarshalFamily(g *family.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFamily(g, &buf, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFamily decodes JSON bytes into a family graph.
func UnmarshalFamily(data []byte) (*family.Graph, error) {
	return ReadFamily(bytes.NewReader(data), FormatJSON)
}

// WriteFamilyFile writes g to path, choosing JSON or TOML by extension.
func WriteFamilyFile(g *family.Graph, path string) error {
	if err := errors.ValidateFamilyFilename(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteFamily(g, f, FormatOf(path))
}

// ReadFamilyFile reads a JSON or TOML family file, choosing the decoder by
// extension.
func ReadFamilyFile(path string) (*family.Graph, error) {
	if err := errors.ValidateFamilyFilename(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "family file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFamily(f, FormatOf(path))
}

// WriteFamily encodes g to w in the given format.
func WriteFamily(g *family.Graph, w io.Writer, format string) error {
	out := FromFamily(g)
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported family format %q", format)
	}
	return nil
}

// ReadFamily decodes a family file from r in the given format.
func ReadFamily(r io.Reader, format string) (*family.Graph, error) {
	var data File
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "decode toml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported family format %q", format)
	}
	return ToFamily(data)
}

// FormatOf returns the encoding implied by path's extension. Anything that
// is not .toml is treated as JSON.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}
