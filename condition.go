package ability

// Condition is an equality-only predicate over record fields. Keys name
// record attributes; a nested map value navigates into an embedded or
// referenced sub-record (e.g. {"lease": {"tenant": "party-1"}} against a
// transaction checks transaction.lease.tenant). All keys must match.
type Condition map[string]any

// Matches evaluates the condition against a record. An absent field, an
// unpopulated reference, or a value of an unexpected shape makes the key
// fail to match; the matcher never errors and performs no I/O.
func (c Condition) Matches(rec Record) bool {
	if rec == nil {
		return false
	}
	for key, want := range c {
		got, ok := rec.Field(key)
		if !ok {
			return false
		}
		if !matchValue(got, want) {
			return false
		}
	}
	return true
}

func matchValue(got, want any) bool {
	switch w := want.(type) {
	case Condition:
		return matchNested(got, w)
	case map[string]any:
		return matchNested(got, Condition(w))
	default:
		return valueEqual(got, want)
	}
}

// matchNested applies a sub-condition to a record field that holds an
// embedded record, or to each element of an embedded collection (any
// matching element satisfies the key).
func matchNested(got any, sub Condition) bool {
	switch g := got.(type) {
	case Record:
		return sub.Matches(g)
	case map[string]any:
		return sub.Matches(mapRecord(g))
	case []Record:
		for _, el := range g {
			if sub.Matches(el) {
				return true
			}
		}
	case []any:
		for _, el := range g {
			if matchNested(el, sub) {
				return true
			}
		}
	}
	return false
}

// mapRecord adapts a plain document map to the Record interface so nested
// sub-document matching works for records loaded without typed wrappers.
type mapRecord map[string]any

func (m mapRecord) SubjectType() SubjectType { return "" }

func (m mapRecord) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// valueEqual compares a record field against an expected value after
// normalizing both sides, so a populated reference and its raw identifier
// compare equal. Unknown shapes compare unequal rather than erroring.
func valueEqual(got, want any) bool {
	gn, gok := normalize(got)
	wn, wok := normalize(want)
	if !gok || !wok {
		return false
	}
	switch gv := gn.(type) {
	case string:
		wv, ok := wn.(string)
		return ok && gv == wv
	case int64:
		switch wv := wn.(type) {
		case int64:
			return gv == wv
		case float64:
			return float64(gv) == wv
		}
	case float64:
		switch wv := wn.(type) {
		case float64:
			return gv == wv
		case int64:
			return gv == float64(wv)
		}
	case bool:
		wv, ok := wn.(bool)
		return ok && gv == wv
	}
	return false
}

// normalize reduces a value to a canonical comparable form: typed string
// kinds collapse to string, integer widths to int64, and a populated record
// reference to its identifier field.
func normalize(v any) (any, bool) {
	switch vv := v.(type) {
	case string:
		return vv, true
	case SubjectType:
		return string(vv), true
	case Action:
		return string(vv), true
	case UserType:
		return string(vv), true
	case Role:
		return string(vv), true
	case Effect:
		return string(vv), true
	case bool:
		return vv, true
	case int:
		return int64(vv), true
	case int32:
		return int64(vv), true
	case int64:
		return vv, true
	case float32:
		return float64(vv), true
	case float64:
		return vv, true
	case Record:
		if id, ok := vv.Field("id"); ok {
			return normalize(id)
		}
		return nil, false
	}
	return nil, false
}
