package level

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// LoadFile reads a level definition, choosing the decoder by extension:
// .cue for CUE, .yaml/.yml/.json for YAML (JSON is read as YAML).
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level file: %w", err)
	}

	var def *Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		def, err = LoadCUE(data, path)
	case ".yaml", ".yml", ".json":
		def, err = LoadYAML(data)
	default:
		return nil, invalid(ErrCodeParseFailed, "", "unsupported level file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if def.ID == "" {
		def.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

// LoadYAML decodes a YAML level with strict field checking, so a typo such
// as "element:" fails instead of silently producing an empty level.
func LoadYAML(data []byte) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "failed to parse YAML", Err: err}
	}
	return &def, nil
}

// LoadCUE compiles a CUE level, unifies it with the #Level schema and
// decodes the concrete result.
func LoadCUE(data []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile level schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "failed to compile CUE", Err: err}
	}

	unified := schema.LookupPath(cue.ParsePath("#Level")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "level does not match schema", Err: err}
	}

	var def Definition
	if err := unified.Decode(&def); err != nil {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "failed to decode CUE level", Err: err}
	}
	return &def, nil
}
