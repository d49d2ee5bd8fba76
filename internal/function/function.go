package function

// Nest nests several functions to allow rewriting expressions like `res := a(b(c(final)))` as
// `res := function.Nest(final, a, b, c)`.
func Nest[T any](final T, funcs ...func(T) T) T {
	res := final
	for i := len(funcs); i > 0; i-- {
		res = funcs[i-1](res)
	}
	return res
}

// Map applies mapper to every element of values and returns the results in the same order.
// A nil slice is mapped to nil.
func Map[T, R any](values []T, mapper func(T) R) []R {
	if values == nil {
		return nil
	}
	res := make([]R, 0, len(values))
	for _, value := range values {
		res = append(res, mapper(value))
	}
	return res
}
