package core

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

const maxParamDepth = 32

var paramEscaper = strings.NewReplacer("%3A", ":", "%24", "$", "%2C", ",", "%5B", "[", "%5D", "]")

// Param is a single query parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered list of query parameters. Values may be scalars,
// slices (encoded as repeated keys), nested Params or map[string]any (encoded
// in bracket notation, maps in sorted key order). Nil values are omitted.
type Params struct {
	pairs []Param
}

// NewParams builds Params from alternating key/value pairs.
func NewParams(kv ...any) Params {
	var p Params
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		p.Set(key, kv[i+1])
	}
	return p
}

// ParamsFromStruct encodes a struct with `url` tags into Params. Keys are
// sorted since the struct encoder does not keep field order.
func ParamsFromStruct(v any) (Params, error) {
	values, err := query.Values(v)
	if err != nil {
		return Params{}, fmt.Errorf("core: encode params: %w", err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var p Params
	for _, k := range keys {
		vs := values[k]
		if len(vs) == 1 {
			p.Set(k, vs[0])
		} else {
			p.Set(k, vs)
		}
	}
	return p, nil
}

// Set replaces the value of key in place, or appends it.
func (p *Params) Set(key string, value any) {
	for i := range p.pairs {
		if p.pairs[i].Key == key {
			p.pairs[i].Value = value
			return
		}
	}
	p.pairs = append(p.pairs, Param{Key: key, Value: value})
}

// Get returns the value of key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p.pairs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Del removes key.
func (p *Params) Del(key string) {
	for i := range p.pairs {
		if p.pairs[i].Key == key {
			p.pairs = append(p.pairs[:i:i], p.pairs[i+1:]...)
			return
		}
	}
}

// Len returns the number of keys.
func (p Params) Len() int { return len(p.pairs) }

// Each calls fn for every key in insertion order.
func (p Params) Each(fn func(key string, value any)) {
	for _, kv := range p.pairs {
		fn(kv.Key, kv.Value)
	}
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p.pairs == nil {
		return Params{}
	}
	return Params{pairs: append([]Param(nil), p.pairs...)}
}

func (p *Params) merge(src Params) {
	for _, kv := range src.pairs {
		p.Set(kv.Key, kv.Value)
	}
}

// Encode serializes the parameters in insertion order.
func (p Params) Encode() string {
	parts := make([]string, 0, len(p.pairs))
	for _, kv := range p.pairs {
		parts = appendParam(parts, kv.Key, kv.Value, 0)
	}
	return strings.Join(parts, "&")
}

func appendParam(parts []string, key string, v any, depth int) []string {
	if depth > maxParamDepth {
		return parts
	}
	switch x := v.(type) {
	case nil:
		return parts
	case Params:
		for _, kv := range x.pairs {
			parts = appendParam(parts, key+"["+kv.Key+"]", kv.Value, depth+1)
		}
		return parts
	case *Params:
		if x == nil {
			return parts
		}
		return appendParam(parts, key, *x, depth)
	case string:
		return append(parts, escapeParam(key)+"="+escapeParam(x))
	case []byte:
		return append(parts, escapeParam(key)+"="+escapeParam(string(x)))
	case time.Time:
		return append(parts, escapeParam(key)+"="+escapeParam(x.UTC().Format(time.RFC3339Nano)))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return parts
		}
		return appendParam(parts, key, rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			parts = appendParam(parts, key, rv.Index(i).Interface(), depth+1)
		}
		return parts
	case reflect.Map:
		if rv.IsNil() {
			return parts
		}
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
			byName[names[i]] = k
		}
		sort.Strings(names)
		for _, name := range names {
			parts = appendParam(parts, key+"["+name+"]", rv.MapIndex(byName[name]).Interface(), depth+1)
		}
		return parts
	default:
		return append(parts, escapeParam(key)+"="+escapeParam(fmt.Sprint(v)))
	}
}

func escapeParam(s string) string {
	return paramEscaper.Replace(url.QueryEscape(s))
}

func (p Params) view() map[string]any {
	out := make(map[string]any, len(p.pairs))
	for _, kv := range p.pairs {
		out[kv.Key] = safeValue(func() any { return kv.Value })
	}
	return out
}
