package cache

// Fields is the cache's internal representation of one entity: a flat map
// from field name to value. Keeping entities as field maps is what makes
// per-field snapshots and merges exact; typed façades live in the models
// package.
type Fields map[string]any

// Clone returns a copy safe to hand out or keep as a snapshot. String
// slices (tags, voter sets) are copied; other values are treated as
// immutable.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		if s, ok := v.([]string); ok {
			out[k] = append([]string(nil), s...)
			continue
		}
		out[k] = v
	}
	return out
}

// pick returns a snapshot of just the named fields. Absent fields are
// recorded as nil so a rollback can distinguish "was unset" from "keep".
func (f Fields) pick(names []string) Fields {
	out := make(Fields, len(names))
	for _, name := range names {
		if v, ok := f[name]; ok {
			if s, isSlice := v.([]string); isSlice {
				out[name] = append([]string(nil), s...)
				continue
			}
			out[name] = v
			continue
		}
		out[name] = nil
	}
	return out
}
