package jtv

// matchPattern tests val against pat, returning env extended with the
// pattern's bindings when it matches.
func matchPattern(pat Pattern, val Value, env *Env) (*Env, bool) {
	switch pat := pat.(type) {
	case *WildcardPat:
		return env, true

	case *VarPat:
		return env.Bind(pat.Name, val), true

	case *NumberPat:
		n, ok := val.(Number)
		return env, ok && n.Equal(pat.Value)

	case *BoolPat:
		b, ok := val.(Bool)
		return env, ok && bool(b) == pat.Value

	case *ListPat:
		list, ok := val.(List)
		if !ok || len(list) < len(pat.Elems) || (!pat.HasRest && len(list) != len(pat.Elems)) {
			return env, false
		}
		env, ok = matchAll(pat.Elems, list[:len(pat.Elems)], env)
		if ok && pat.HasRest && pat.Rest != "_" {
			env = env.Bind(pat.Rest, list[len(pat.Elems):])
		}
		return env, ok

	case *TuplePat:
		tuple, ok := val.(Tuple)
		if !ok || len(tuple) != len(pat.Elems) {
			return env, false
		}
		return matchAll(pat.Elems, tuple, env)

	case *VariantPat:
		v, ok := val.(Variant)
		if !ok || v.Tag != pat.Tag || len(v.Payload) != len(pat.Args) {
			return env, false
		}
		return matchAll(pat.Args, v.Payload, env)
	}
	return env, false
}

func matchAll(pats []Pattern, vals []Value, env *Env) (*Env, bool) {
	for i, pat := range pats {
		var ok bool
		if env, ok = matchPattern(pat, vals[i], env); !ok {
			return env, false
		}
	}
	return env, true
}
