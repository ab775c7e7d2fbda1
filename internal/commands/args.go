package commands

// Args is the merged parameter bag handed to a command factory.
// Lookups are forgiving: unknown keys and wrong types read as the zero
// value, so callers can pass extra parameters without breaking older
// commands.
type Args map[string]any

func (a Args) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// StringOK also reports whether the key was present with the right
// type, for parameters whose absence means something.
func (a Args) StringOK(key string) (string, bool) {
	v, ok := a[key].(string)
	return v, ok
}

func (a Args) Bool(key string) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return false
}

func (a Args) BoolOK(key string) (bool, bool) {
	v, ok := a[key].(bool)
	return v, ok
}

func (a Args) Int(key string) int {
	if v, ok := a[key].(int); ok {
		return v
	}
	return 0
}

// Hook reads a stored hook function.
func (a Args) Hook(key string) func() {
	if v, ok := a[key].(func()); ok {
		return v
	}
	return nil
}

// Callback reads a stored completion callback.
func (a Args) Callback(key string) func(success bool) {
	if v, ok := a[key].(func(success bool)); ok {
		return v
	}
	return nil
}

// Value is a registered default: either a literal or a producer that is
// evaluated each time the default is needed.
type Value struct {
	literal  any
	producer func() any
}

// Lit wraps a literal default.
func Lit(v any) Value { return Value{literal: v} }

// Deferred wraps a producer evaluated at command construction time, for
// defaults that must be fresh per invocation.
func Deferred(fn func() any) Value { return Value{producer: fn} }

func (v Value) resolve() any {
	if v.producer != nil {
		return v.producer()
	}
	return v.literal
}
