package dispatch

import "strings"

// Args is the input of an operation. Values are opaque to the registry;
// handlers decode the keys they declare.
type Args map[string]any

func (a Args) Value(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	value, ok := a[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func (a Args) Has(key string) bool {
	_, ok := a.Value(key)
	return ok
}

func (a Args) String(key string) string {
	value, ok := a.Value(key)
	if !ok {
		return ""
	}
	text, _ := value.(string)
	return strings.TrimSpace(text)
}

// Bool reports the boolean stored at key and whether the key held a bool.
func (a Args) Bool(key string) (bool, bool) {
	value, ok := a.Value(key)
	if !ok {
		return false, false
	}
	flag, ok := value.(bool)
	return flag, ok
}

func (a Args) Clone() Args {
	if len(a) == 0 {
		return Args{}
	}
	out := make(Args, len(a))
	for key, value := range a {
		out[key] = value
	}
	return out
}

// Without returns a copy that omits the given keys.
func (a Args) Without(keys ...string) Args {
	out := a.Clone()
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

// Result is the output of an operation.
type Result map[string]any

const KeyOK = "ok"

func (r Result) Value(key string) (any, bool) {
	return Args(r).Value(key)
}

func (r Result) Has(key string) bool {
	return Args(r).Has(key)
}

// OK reports whether the producing handler signalled success.
func (r Result) OK() bool {
	flag, _ := Args(r).Bool(KeyOK)
	return flag
}

func (r Result) Clone() Result {
	return Result(Args(r).Clone())
}
