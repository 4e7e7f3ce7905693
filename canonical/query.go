package canonical

import (
	"net/url"
	"strings"
)

// Query is an ordered multimap of query parameters. Keys iterate in insertion
// order and each key keeps its values in encounter order. The zero value is
// ready to use.
type Query struct {
	keys   []string
	values map[string][]string
}

func (q *Query) Add(key, value string) {
	if q.values == nil {
		q.values = map[string][]string{}
	}
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = append(q.values[key], value)
}

// Get returns the first value for key, or "".
func (q *Query) Get(key string) string {
	if vs := q.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns a copy of every value for key.
func (q *Query) Values(key string) []string {
	return append([]string(nil), q.values[key]...)
}

func (q *Query) Has(key string) bool {
	_, ok := q.values[key]
	return ok
}

// Keys returns a copy of the distinct keys in insertion order.
func (q *Query) Keys() []string {
	return append([]string(nil), q.keys...)
}

func (q *Query) Len() int {
	return len(q.keys)
}

// Encode renders the query in insertion order, e.g. "a=1&a=2&b=3".
func (q *Query) Encode() string {
	var b strings.Builder
	for _, k := range q.keys {
		ek := url.QueryEscape(k)
		for _, v := range q.values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(ek)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// URLValues converts to url.Values; key order is lost.
func (q *Query) URLValues() url.Values {
	vs := make(url.Values, len(q.keys))
	for _, k := range q.keys {
		vs[k] = append([]string(nil), q.values[k]...)
	}
	return vs
}
