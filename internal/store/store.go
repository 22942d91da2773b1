// Package store persists the assistant's preference and memory documents as
// JSON. Storage is an injected abstraction so handlers and tests never touch
// file paths directly.
package store

import "strings"

// Store is a key/value JSON document. Keys may be dotted to address nested
// objects ("work_hours.start"). Each call is an independent
// read-modify-write; concurrent writers are last-write-wins, which is
// accepted for the single-user setup.
type Store interface {
	Get(key string) (any, bool, error)
	Set(key string, value any) error
	List() (map[string]any, error)
	Reset() error
}

func getNested(doc map[string]any, key string) (any, bool) {
	cur := any(doc)
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// setNested creates intermediate objects as needed, replacing non-object
// values that stand in the way.
func setNested(doc map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
