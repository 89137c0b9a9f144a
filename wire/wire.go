package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/typeshape/errors"
)

// Format names a supported wire format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, CBOR}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// ParseFormat accepts a format name, case-insensitively. "yml" and "jsonc"
// are aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json", "jsonc":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	}
	return "", errors.NotFound(errors.PhaseParse, "format", name)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Parse reads data into the generic value tree: nil, bool, string, numbers,
// []any and map[string]any. JSON input may carry comments and trailing
// commas; its numbers are kept as json.Number so no precision is lost.
func Parse(format Format, data []byte) (any, error) {
	var v any
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, parseError(format, err)
		}
		if dec.More() {
			return nil, errors.New(errors.PhaseParse, errors.KindSyntax).
				Type(string(format)).
				Detail("unexpected data after the top-level value").
				Build()
		}
	case YAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, parseError(format, err)
		}
	case CBOR:
		if err := decMode.Unmarshal(data, &v); err != nil {
			return nil, parseError(format, err)
		}
	default:
		return nil, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("format %q", format))
	}
	return Normalize(v), nil
}

// Marshal writes a value tree. JSON output is indented.
func Marshal(format Format, v any) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch format {
	case JSON:
		out, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	case YAML:
		out, err = yaml.Marshal(v)
	case CBOR:
		out, err = encMode.Marshal(v)
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("format %q", format))
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "marshal "+string(format))
	}
	return out, nil
}

// Normalize rewrites maps with non-string keys to map[string]any and
// unsigned integers to int64 where they fit, recursively.
func Normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		for k, item := range n {
			n[k] = Normalize(item)
		}
		return n
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []any:
		for i, item := range n {
			n[i] = Normalize(item)
		}
		return n
	case uint64:
		if n <= 1<<63-1 {
			return int64(n)
		}
	}
	return v
}

// Select returns the subtree at a dotted path of object keys, e.g.
// "server.http". An empty path selects the whole tree.
func Select(tree any, path string) (any, error) {
	if path == "" {
		return tree, nil
	}
	cur := tree
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, errors.NotFound(errors.PhaseParse, "path", path)
		}
		if cur, ok = obj[key]; !ok {
			return nil, errors.NotFound(errors.PhaseParse, "path", path)
		}
	}
	return cur, nil
}

func parseError(format Format, err error) error {
	return errors.New(errors.PhaseParse, errors.KindSyntax).
		Type(string(format)).
		Cause(err).
		Build()
}
