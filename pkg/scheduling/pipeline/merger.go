package pipeline

import (
	"encoding/json"
	"fmt"
)

// merge applies the resolved results of a step to the store in declared
// order. Rejected operations contribute nothing.
func merge(store *Store, outcomes []outcome, e *emitter) {
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		switch o.result.Kind() {
		case KindMerge:
			store.Merge(o.result.Values())
			e.logf("push %s into pipeline.variables", render(o.result.Values()))
		case KindScalar:
			store.SetReturnVal(o.result.Value())
			e.logf("push { %s: %s } into pipeline.variables", ReturnValKey, render(o.result.Value()))
		}
	}
}

func render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
