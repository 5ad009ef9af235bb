package jtv

import "sort"

// Env is an immutable environment frame chain. Bind returns a new frame and
// never modifies the receiver, so any number of closures may share a chain
// safely. The nil *Env is empty.
//
// Most frames hold a single binding; squash builds frames that hold many, to
// keep long running Control loops from growing the chain without bound.
type Env struct {
	name   string
	val    Value
	vars   map[string]Value
	parent *Env
}

// NewEnv builds an initial environment from host supplied bindings.
func NewEnv(bindings map[string]Value) *Env {
	if len(bindings) == 0 {
		return nil
	}
	vars := make(map[string]Value, len(bindings))
	for name, val := range bindings {
		vars[name] = val
	}
	return &Env{vars: vars}
}

// Bind returns a new frame binding name to val over env.
func (env *Env) Bind(name string, val Value) *Env {
	return &Env{name: name, val: val, parent: env}
}

// Lookup walks outward from env for the nearest binding of name.
func (env *Env) Lookup(name string) (Value, bool) {
	for ; env != nil; env = env.parent {
		if env.vars != nil {
			if val, ok := env.vars[name]; ok {
				return val, true
			}
		} else if env.name == name {
			return env.val, true
		}
	}
	return nil, false
}

// Names returns every bound name once, sorted.
func (env *Env) Names() []string {
	seen := make(map[string]struct{})
	env.each(nil, func(name string, _ Value) { seen[name] = struct{}{} })
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// each calls f for every binding from env outward, stopping before stop.
// Shadowed bindings are visited too, after the bindings that shadow them.
func (env *Env) each(stop *Env, f func(name string, val Value)) {
	for ; env != nil && env != stop; env = env.parent {
		if env.vars != nil {
			for name, val := range env.vars {
				f(name, val)
			}
		} else {
			f(env.name, env.val)
		}
	}
}

// bindRec binds name to a closure that closes over its own binding, which is
// how recursive functions see themselves. The frame is completed before it
// is returned, so it is never observed in a partial state.
func (env *Env) bindRec(name string, c *Closure) *Env {
	frame := &Env{name: name, val: c, parent: env}
	c.Env = frame
	return frame
}

// squash collapses every frame between env and its ancestor base into one
// frame holding the innermost binding of each name.
func squash(base, env *Env) *Env {
	if env == base {
		return env
	}
	vars := make(map[string]Value)
	env.each(base, func(name string, val Value) {
		if _, shadowed := vars[name]; !shadowed {
			vars[name] = val
		}
	})
	return &Env{vars: vars, parent: base}
}

// restore returns outer extended with the latest values, as seen from inner,
// of every name that outer already bound. Names first bound after outer are
// dropped; this is how a block discards its own frame while keeping
// assignments to enclosing variables. Inner must descend from outer.
func restore(outer, inner *Env) *Env {
	if inner == outer {
		return outer
	}
	var vars map[string]Value
	seen := make(map[string]struct{})
	inner.each(outer, func(name string, val Value) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		if _, ok := outer.Lookup(name); ok {
			if vars == nil {
				vars = make(map[string]Value)
			}
			vars[name] = val
		}
	})
	if vars == nil {
		return outer
	}
	return &Env{vars: vars, parent: outer}
}
