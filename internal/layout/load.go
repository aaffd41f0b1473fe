package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gearbox/internal/board"
)

// Format is a layout encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", &Error{Path: path, Message: fmt.Sprintf("unsupported layout extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))}
}

// Load reads, validates and decodes a layout file.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "reading layout", Err: err}
	}
	doc, err := Parse(data, format, path)
	if err != nil {
		return nil, withPath(err, path)
	}
	return doc, nil
}

// LoadGrid is Load followed by Build.
func LoadGrid(path string) (*board.Grid, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	g, err := doc.Build()
	if err != nil {
		return nil, withPath(err, path)
	}
	return g, nil
}

// Parse decodes data in the given format. name labels CUE positions and
// may be empty.
func Parse(data []byte, format Format, name string) (*Document, error) {
	var (
		js  []byte
		err error
	)
	switch format {
	case FormatYAML:
		js, err = yamlToJSON(data)
	case FormatJSON:
		js = data
	case FormatCUE:
		js, err = cueToJSON(data, name)
	default:
		return nil, &Error{Message: fmt.Sprintf("unknown layout format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	return decodeJSON(js)
}

// FromValue decodes a layout that is already in memory as generic data,
// such as a mapping embedded in a scenario file.
func FromValue(v any) (*Document, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Message: "layout is not representable as JSON: " + err.Error(), Err: err}
	}
	return decodeJSON(js)
}

func decodeJSON(js []byte) (*Document, error) {
	var generic any
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, &Error{Message: "invalid JSON: " + err.Error(), Err: err}
	}
	if err := validate(generic); err != nil {
		return nil, err
	}

	var doc Document
	dec = json.NewDecoder(bytes.NewReader(js))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Message: "decoding layout: " + err.Error(), Err: err}
	}
	return &doc, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	js, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Message: "layout is not representable as JSON: " + err.Error(), Err: err}
	}
	return js, nil
}

func cueToJSON(data []byte, name string) ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, cueError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(err)
	}
	js, err := v.MarshalJSON()
	if err != nil {
		return nil, cueError(err)
	}
	return js, nil
}

// cueError reports the first CUE error with its source position.
func cueError(err error) error {
	le := &Error{Message: err.Error(), Err: err}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	first := errs[0]
	le.Message = first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Line = positions[0].Line()
		le.Column = positions[0].Column()
	}
	return le
}
