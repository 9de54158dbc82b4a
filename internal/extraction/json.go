package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// JSONExtractor parses JSON and collects its string leaves
type JSONExtractor struct{}

var _ Extractor = JSONExtractor{}

func (JSONExtractor) Name() Format { return FormatJSON }

func (JSONExtractor) Extract(text string, opts *Options) []string {
	return ExtractJSON(text, opts)
}

// ExtractJSON parses text as JSON and returns its trimmed string leaves in
// document order. Invalid JSON is reported through opts and yields an empty
// result.
func ExtractJSON(text string, opts *Options) []string {
	if isBlank(text) {
		return emptyResult()
	}

	root, err := ParseJSON(text)
	if err != nil && opts.repairJSON() {
		if repaired, repairErr := jsonrepair.JSONRepair(text); repairErr == nil {
			root, err = ParseJSON(repaired)
		}
	}
	if err != nil {
		opts.reportParseError("Invalid JSON: " + err.Error())
		return emptyResult()
	}

	return Collect(root)
}

// ParseJSON decodes a single JSON document into a Value, keeping object
// members in document order. A repeated key keeps its first position and
// takes the last value. Composites nested deeper than MaxDepth are
// skipped and come back as null.
func ParseJSON(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	root, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return Value{}, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return Value{}, err
	}

	return root, nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth > MaxDepth {
			return Null(), skipComposite(dec)
		}
		if t == '[' {
			return decodeArray(dec, depth)
		}
		if t == '{' {
			return decodeObject(dec, depth)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := decodeValue(dec, depth+1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, unexpectedEOF(err)
	}
	return Array(items...), nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	members := []Member{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := decodeValue(dec, depth+1)
		if err != nil {
			return Value{}, err
		}
		if i, seen := index[key]; seen {
			members[i].Value = v
			continue
		}
		index[key] = len(members)
		members = append(members, Field(key, v))
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, unexpectedEOF(err)
	}
	return Object(members...), nil
}

// skipComposite consumes tokens until the composite whose opening delimiter
// was just read is closed.
func skipComposite(dec *json.Decoder) error {
	open := 1
	for open > 0 {
		tok, err := dec.Token()
		if err != nil {
			return unexpectedEOF(err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				open++
			case ']', '}':
				open--
			}
		}
	}
	return nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
