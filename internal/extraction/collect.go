package extraction

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// MaxDepth caps how deep Collect descends. Branches nested deeper are
// dropped without error so pathological input still yields partial results.
const MaxDepth = 1000

// Kind tags the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Member is one key/value pair of an object, kept in document order
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON-like tree node. The zero Value is null.
type Value struct {
	Kind    Kind
	Str     string
	Num     json.Number
	Bool    bool
	Items   []Value
	Members []Member
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func Number(n json.Number) Value { return Value{Kind: KindNumber, Num: n} }

func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

func Object(members ...Member) Value { return Value{Kind: KindObject, Members: members} }

// Field builds an object member
func Field(key string, v Value) Member {
	return Member{Key: key, Value: v}
}

// FromAny converts values produced by encoding/json (or built by hand) into
// a Value. Map keys are visited in sorted order because Go maps carry none.
// Unsupported types become null.
func FromAny(v any) Value {
	return fromAny(v, 0)
}

func fromAny(v any, depth int) Value {
	if depth > MaxDepth {
		return Null()
	}
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case json.Number:
		return Number(t)
	case float64:
		return Number(json.Number(strconv.FormatFloat(t, 'g', -1, 64)))
	case int:
		return Number(json.Number(strconv.Itoa(t)))
	case int64:
		return Number(json.Number(strconv.FormatInt(t, 10)))
	case bool:
		return Bool(t)
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, fromAny(item, depth+1))
		}
		return Array(items...)
	case []string:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, String(item))
		}
		return Array(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			members = append(members, Field(k, fromAny(t[k], depth+1)))
		}
		return Object(members...)
	default:
		return Null()
	}
}

// Collect gathers the trimmed, non-empty string leaves of v depth-first,
// arrays in index order and objects in member order. Numbers, booleans and
// nulls contribute nothing.
func Collect(v Value) []string {
	return collect(v, emptyResult(), 0)
}

func collect(v Value, out []string, depth int) []string {
	if depth > MaxDepth {
		return out
	}

	switch v.Kind {
	case KindString:
		if trimmed := strings.TrimSpace(v.Str); trimmed != "" {
			out = append(out, trimmed)
		}
	case KindArray:
		for _, item := range v.Items {
			out = collect(item, out, depth+1)
		}
	case KindObject:
		for _, m := range v.Members {
			out = collect(m.Value, out, depth+1)
		}
	}

	return out
}
