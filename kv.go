package snote

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Value is the value of a tag in a metadata block. A tag that appears once
// holds a scalar; a repeated tag holds its values in order of appearance.
type Value struct {
	items []string
	list  bool
}

// Scalar returns a single-valued Value.
func Scalar(s string) Value { return Value{items: []string{s}} }

// List returns a multi-valued Value.
func List(s ...string) Value { return Value{items: append([]string(nil), s...), list: true} }

// IsList reports whether the tag was repeated.
func (v Value) IsList() bool { return v.list }

// String returns the scalar, or the first element of a list.
func (v Value) String() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// List returns all values in order of appearance.
func (v Value) List() []string {
	return append([]string(nil), v.items...)
}

func (v Value) add(s string) Value {
	return Value{items: append(v.items, s), list: true}
}

// KeyValues maps tags of one metadata block to their values.
type KeyValues map[string]Value

// Get returns the scalar value of tag and whether it is present.
func (kv KeyValues) Get(tag string) (string, bool) {
	v, ok := kv[tag]
	if !ok {
		return "", false
	}
	return v.String(), true
}

var tagRE = regexp.MustCompile(`<([^:<>]+):([^:<>]*)>`)

// ExtractKeyValues collects every "<TAG:value>" fragment of text, left to
// right.
func ExtractKeyValues(text []byte) KeyValues {
	if clean, err := unicode.UTF8.NewDecoder().Bytes(text); err == nil {
		text = clean
	}
	kv := make(KeyValues)
	for _, m := range tagRE.FindAllSubmatch(text, -1) {
		tag, val := string(m[1]), string(m[2])
		if prev, ok := kv[tag]; ok {
			kv[tag] = prev.add(val)
			continue
		}
		kv[tag] = Scalar(val)
	}
	return kv
}

// GroupNested splits flat keys into (group, subkey) pairs.
//
// A key containing delim is split at its first occurrence. Otherwise the
// first of prefixes that the key starts with becomes the group and the rest
// of the key the subkey. Keys matching neither rule are dropped.
func GroupNested(kv KeyValues, delim string, prefixes []string) map[string]map[string]Value {
	out := make(map[string]map[string]Value)
	put := func(group, sub string, v Value) {
		g, ok := out[group]
		if !ok {
			g = make(map[string]Value)
			out[group] = g
		}
		g[sub] = v
	}
	for key, v := range kv {
		if group, sub, ok := strings.Cut(key, delim); ok {
			put(group, sub, v)
			continue
		}
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				put(p, key[len(p):], v)
				break
			}
		}
	}
	return out
}
