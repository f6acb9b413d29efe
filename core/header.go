package core

import (
	"net/http"
	"slices"
	"sort"
	"strings"
)

// Header is an ordered, case-insensitive multi-value header map. The casing
// of the first occurrence of a name is preserved.
//
// Values written with Set replace earlier layers when configs are merged;
// values written with Add are concatenated onto them.
type Header struct {
	fields []headerField
}

type headerField struct {
	name   string
	values []string
	concat bool
}

// NewHeader builds a Header from alternating name/value pairs using Set.
func NewHeader(kv ...string) Header {
	var h Header
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

// HeaderFrom copies an http.Header. Names are visited in sorted order so the
// result is deterministic.
func HeaderFrom(src http.Header) Header {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	h := Header{fields: make([]headerField, 0, len(names))}
	for _, name := range names {
		h.fields = append(h.fields, headerField{name: name, values: slices.Clone(src[name])})
	}
	return h
}

func (h Header) index(name string) int {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].name, name) {
			return i
		}
	}
	return -1
}

// Set replaces all values of name.
func (h *Header) Set(name, value string) {
	if i := h.index(name); i >= 0 {
		h.fields[i].values = []string{value}
		h.fields[i].concat = false
		return
	}
	h.fields = append(h.fields, headerField{name: name, values: []string{value}})
}

// Add appends a value to name.
func (h *Header) Add(name, value string) {
	if i := h.index(name); i >= 0 {
		h.fields[i].values = append(h.fields[i].values, value)
		return
	}
	h.fields = append(h.fields, headerField{name: name, values: []string{value}, concat: true})
}

// Get returns the first value of name, or "".
func (h Header) Get(name string) string {
	if i := h.index(name); i >= 0 && len(h.fields[i].values) > 0 {
		return h.fields[i].values[0]
	}
	return ""
}

// Values returns a copy of all values of name.
func (h Header) Values(name string) []string {
	if i := h.index(name); i >= 0 {
		return slices.Clone(h.fields[i].values)
	}
	return nil
}

// Has reports whether name is present.
func (h Header) Has(name string) bool { return h.index(name) >= 0 }

// Del removes name.
func (h *Header) Del(name string) {
	if i := h.index(name); i >= 0 {
		h.fields = slices.Delete(h.fields, i, i+1)
	}
}

// Keys returns the header names in insertion order.
func (h Header) Keys() []string {
	keys := make([]string, len(h.fields))
	for i, f := range h.fields {
		keys[i] = f.name
	}
	return keys
}

// Len returns the number of distinct names.
func (h Header) Len() int { return len(h.fields) }

// Each calls fn for every name in insertion order.
func (h Header) Each(fn func(name string, values []string)) {
	for _, f := range h.fields {
		fn(f.name, slices.Clone(f.values))
	}
}

// Clone returns a deep copy.
func (h Header) Clone() Header {
	if h.fields == nil {
		return Header{}
	}
	out := Header{fields: make([]headerField, len(h.fields))}
	for i, f := range h.fields {
		out.fields[i] = headerField{name: f.name, values: slices.Clone(f.values), concat: f.concat}
	}
	return out
}

// HTTP converts the header to an http.Header.
func (h Header) HTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		for _, v := range f.values {
			out.Add(f.name, v)
		}
	}
	return out
}

// merge layers src over h.
func (h *Header) merge(src Header) {
	for _, f := range src.fields {
		i := h.index(f.name)
		if i < 0 {
			h.fields = append(h.fields, headerField{name: f.name, values: slices.Clone(f.values), concat: f.concat})
			continue
		}
		if f.concat {
			h.fields[i].values = append(slices.Clone(h.fields[i].values), f.values...)
		} else {
			h.fields[i].values = slices.Clone(f.values)
			h.fields[i].concat = false
		}
	}
}

func (h Header) view() map[string]any {
	out := make(map[string]any, len(h.fields))
	for _, f := range h.fields {
		if len(f.values) == 1 {
			out[f.name] = f.values[0]
		} else {
			out[f.name] = slices.Clone(f.values)
		}
	}
	return out
}
