package infra

// NumericKey is stricter than OrderedKey: it excludes ~string. The concurrent
// sorted list only ever orders numeric keys, matching the original C++
// collaborator's static_assert(std::is_integral || std::is_floating_point).
type NumericKey interface {
	Integer | Float
}
