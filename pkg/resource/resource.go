// Package resource shapes models into API response bodies.
//
// A Transformer controls exactly what JSON a model is rendered as, so the
// gorm structs never leak columns the API does not promise:
//
//	var OrderSummary resource.Transformer[models.Order] = func(o models.Order) resource.Map {
//	    return resource.Map{"id": o.ID, "status": o.Status}
//	}
//
//	c.OK(resource.Item(order, OrderSummary))
//	c.OK(resource.Collection(orders, OrderSummary))
package resource

// Map is a convenient alias for a rendered model.
type Map = map[string]any

// Transformer renders one model instance.
type Transformer[T any] func(v T) Map

// Item renders a single model.
func Item[T any](v T, t Transformer[T]) Map {
	return t(v)
}

// Collection renders every element of items. An empty or nil slice renders
// as an empty JSON array, never null.
func Collection[T any](items []T, t Transformer[T]) []Map {
	out := make([]Map, 0, len(items))
	for _, v := range items {
		out = append(out, t(v))
	}
	return out
}

// When returns value when cond holds, otherwise nil. Combine it with Merge
// to add optional keys.
func When(cond bool, value Map) Map {
	if !cond {
		return nil
	}
	return value
}

// Merge copies the keys of every extra map into base and returns it. Later
// maps win on conflicting keys.
func Merge(base Map, extra ...Map) Map {
	for _, m := range extra {
		for k, v := range m {
			base[k] = v
		}
	}
	return base
}
