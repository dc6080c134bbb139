package scimfilter

// Locate resolves path against root and returns every matched JSON value
// (spec §4.5). It never fails for a missing attribute — absence is
// represented by a nil/empty slice — but a FilterError can still surface
// if path carries an inline value filter whose evaluation hits the
// recursion depth bound or an invalid comparison (spec §4.6's "FilterError
// from any sub-evaluation propagates up immediately").
func Locate(path Path, root Value) ([]Value, error) {
	ctx := newEvalContext()
	return locate(ctx, path, root)
}

// locate is the depth-aware implementation shared with the Evaluator,
// which calls back into it for every attribute path it encounters (spec
// §2's data-flow: "Evaluator ... calls Value Locator with each Path it
// encounters").
func locate(ctx *evalContext, path Path, root Value) ([]Value, error) {
	current := []Value{root}

	if path.Schema != "" {
		var next []Value
		for _, cur := range current {
			if val, ok := cur.Field(path.Schema); ok {
				next = append(next, val)
			}
		}
		current = next
	}

	for _, el := range path.Elements {
		var next []Value
		for _, cur := range current {
			resolved, err := resolveElement(ctx, cur, el)
			if err != nil {
				return nil, err
			}
			next = append(next, resolved...)
		}
		current = next
		if len(current) == 0 {
			break
		}
	}

	return current, nil
}

// resolveElement implements one step of spec §4.5's algorithm: case-
// insensitive field resolution, one-level array flattening, and
// (re-rooted) value-filter retention.
func resolveElement(ctx *evalContext, cur Value, el PathElement) ([]Value, error) {
	if cur.Kind() != KindObject {
		return nil, nil
	}
	val, ok := cur.Field(el.Attribute)
	if !ok {
		return nil, nil
	}

	if val.Kind() == KindArray {
		items := val.Elements()
		if el.ValueFilter == nil {
			return items, nil
		}
		var kept []Value
		for _, item := range items {
			ok, err := evaluateValueFilter(ctx, *el.ValueFilter, item)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, item)
			}
		}
		return kept, nil
	}

	if el.ValueFilter == nil {
		return []Value{val}, nil
	}
	// "If the value is not an array/object, optValueFilter yields no
	// matches" (spec §4.5 step 3c).
	if val.Kind() != KindObject {
		return nil, nil
	}
	ok, err := evaluateValueFilter(ctx, *el.ValueFilter, val)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []Value{val}, nil
}

// evaluateValueFilter re-roots evaluation at elem itself (spec §9,
// "Complex value filter scoping": the inner filter's paths resolve
// relative to the array element, not the root) by calling evalFilter
// directly with elem as the new root, never by rewriting elementFilter's
// paths.
func evaluateValueFilter(ctx *evalContext, elementFilter Filter, elem Value) (bool, error) {
	childCtx, err := ctx.descend()
	if err != nil {
		return false, err
	}
	return evalFilter(childCtx, elementFilter, elem)
}
