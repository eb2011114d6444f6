package sql

// Field predicates are selector options that filter on a column of the
// selected table. The graph store composes them from query arguments.

// FieldEQ returns a predicate that checks if the field equals the given value.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(EQ(s.C(name), v))
	}
}

// FieldIn returns a predicate that checks if the field value is in the given list.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		args := make([]any, len(vs))
		for i := range vs {
			args[i] = vs[i]
		}
		s.Where(In(s.C(name), args...))
	}
}

// FieldIsNull returns a predicate that checks if the field is NULL.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) {
		s.Where(IsNull(s.C(name)))
	}
}

// FieldNotNull returns a predicate that checks if the field is not NULL.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) {
		s.Where(NotNull(s.C(name)))
	}
}

// AndPredicates returns a predicate that applies all the given predicates.
func AndPredicates(ps ...func(*Selector)) func(*Selector) {
	return func(s *Selector) {
		for _, p := range ps {
			p(s)
		}
	}
}
