package pipeline

// Kind tags the shape of an operation's Result.
type Kind uint8

const (
	// KindEmpty results leave the store untouched.
	KindEmpty Kind = iota
	// KindMerge results overlay their keys onto the store.
	KindMerge
	// KindScalar results are stored under ReturnValKey.
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindMerge:
		return "merge"
	case KindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Result is the value an operation resolves to. The zero Result is Empty.
type Result struct {
	kind   Kind
	values map[string]any
	value  any
}

// Merge returns a Result whose keys are merged into the store.
func Merge(values map[string]any) Result {
	return Result{kind: KindMerge, values: values}
}

// Scalar returns a Result stored under ReturnValKey. Scalar(nil) stores nil.
func Scalar(v any) Result {
	return Result{kind: KindScalar, value: v}
}

// Empty returns a Result that changes nothing.
func Empty() Result {
	return Result{}
}

// ResultOf classifies a bare value: a map[string]any merges, nil is empty,
// anything else is a scalar. Other map types are treated as scalars.
func ResultOf(v any) Result {
	switch t := v.(type) {
	case nil:
		return Empty()
	case Result:
		return t
	case map[string]any:
		return Merge(t)
	default:
		return Scalar(v)
	}
}

// Kind reports the shape of r.
func (r Result) Kind() Kind {
	return r.kind
}

// Values returns the mapping of a merge result, nil otherwise.
func (r Result) Values() map[string]any {
	return r.values
}

// Value returns the value of a scalar result, nil otherwise.
func (r Result) Value() any {
	return r.value
}
