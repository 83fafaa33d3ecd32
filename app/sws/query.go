package sws

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	maxQueryDepth = 5  // nested bracket segments kept, the rest folded into the last key
	maxQueryIndex = 20 // numeric keys above this stay map keys
	queryListTerm = "" // a[]=v
	queryNoIndex  = -1
)

// Query is a parsed query string. Values are string, []string or nested Query.
// Repeated keys collect into []string in order of appearance, bracket keys build nested values:
//
//	a=1&a=2        -> {a: [1 2]}
//	a[]=1          -> {a: [1]}
//	a[b]=1&a[c]=2  -> {a: {b: 1, c: 2}}
//	a[1]=y&a[0]=x  -> {a: [x y]}
type Query map[string]any

// ParseQuery parses raw query string. It never drops the whole query on a bad pair,
// returned error reports the first undecodable pair while the result holds everything else.
func ParseQuery(raw string) (Query, error) {
	res := Query{}
	var firstErr error
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("can't decode query key %q: %w", k, err)
			}
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("can't decode query value for %q: %w", key, err)
			}
			continue
		}
		if key == "" {
			continue
		}
		root, segs := splitQueryKey(key)
		res.assign(root, segs, val)
	}
	res.compact()
	return res, firstErr
}

// Get returns a single value for the key, first one for lists and empty string for nested or missing keys
func (q Query) Get(key string) string {
	switch v := q[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// List returns all values for the key, nil for nested or missing keys
func (q Query) List(key string) []string {
	switch v := q[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	}
	return nil
}

// Nested returns nested query for bracket keys like a[b]=c
func (q Query) Nested(key string) (Query, bool) {
	v, ok := q[key].(Query)
	return v, ok
}

// splitQueryKey splits a[b][c] to "a" and [b c]. Malformed keys returned as is with no segments.
func splitQueryKey(key string) (root string, segs []string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, nil
	}
	root, rest := key[:open], key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return key, nil
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, nil
		}
		if len(segs) == maxQueryDepth {
			// fold the remainder into the last segment, keeps the value instead of dropping it
			segs[len(segs)-1] += rest
			break
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	return root, segs
}

func (q Query) assign(key string, segs []string, val string) {
	if len(segs) == 0 {
		q.add(key, val)
		return
	}
	if len(segs) == 1 && segs[0] == queryListTerm {
		switch v := q[key].(type) {
		case nil:
			q[key] = []string{val}
		case string:
			q[key] = []string{v, val}
		case []string:
			q[key] = append(v, val)
		}
		return
	}

	nested, ok := q[key].(Query)
	if !ok {
		if _, exists := q[key]; exists {
			return // plain value already set for this key, nested assignment ignored
		}
		nested = Query{}
		q[key] = nested
	}
	nested.assign(segs[0], segs[1:], val)
}

func (q Query) add(key, val string) {
	switch v := q[key].(type) {
	case nil:
		q[key] = val
	case string:
		q[key] = []string{v, val}
	case []string:
		q[key] = append(v, val)
	}
}

// compact turns nested queries keyed by small indexes only into ordered lists
func (q Query) compact() {
	for k, v := range q {
		nested, ok := v.(Query)
		if !ok {
			continue
		}
		nested.compact()
		if lst, ok := nested.asList(); ok {
			q[k] = lst
		}
	}
}

func (q Query) asList() ([]string, bool) {
	if len(q) == 0 {
		return nil, false
	}
	type item struct {
		idx int
		val string
	}
	items := make([]item, 0, len(q))
	for k, v := range q {
		idx := indexOf(k)
		val, isStr := v.(string)
		if idx == queryNoIndex || !isStr {
			return nil, false
		}
		items = append(items, item{idx: idx, val: val})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.val
	}
	return res, true
}

func indexOf(k string) int {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return queryNoIndex
	}
	idx, err := strconv.Atoi(k)
	if err != nil || idx < 0 || idx > maxQueryIndex {
		return queryNoIndex
	}
	return idx
}
