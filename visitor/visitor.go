package visitor

// Visitor walks (key, element) pairs in a stable order, calling the callback for each pair.
// Returning false stops the walk, returning an error stops it and the error is passed through.
type Visitor[K comparable, E any] func(func(key K, element E) (bool, error)) error

// Ordered returns visitor over keys in supplied order, each element is resolved with lookup at visit time
func Ordered[K comparable, E any](keys []K, lookup func(key K) E) Visitor[K, E] {
	return func(f func(key K, element E) (bool, error)) error {
		for _, key := range keys {
			next, err := f(key, lookup(key))
			if err != nil {
				return err
			}
			if !next {
				break
			}
		}
		return nil
	}
}
