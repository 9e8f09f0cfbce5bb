package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreMergeKeepsUntouchedKeys(t *testing.T) {
	s := NewStore(map[string]any{"a": 1, "b": 2})

	s.Merge(map[string]any{"b": 3, "c": 4})

	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, s.Snapshot())
}

func TestStoreReturnVal(t *testing.T) {
	s := NewStore(nil)

	s.SetReturnVal("hello")
	assert.Equal(t, "hello", s.Get(ReturnValKey))

	s.SetReturnVal(nil)
	v, ok := s.Lookup(ReturnValKey)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestStoreLookupAbsent(t *testing.T) {
	s := NewStore(nil)

	v, ok := s.Lookup("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, s.Get("missing"))
}

func TestStoreResetCopiesSeed(t *testing.T) {
	seed := map[string]any{"a": 1}
	s := NewStore(seed)

	s.Merge(map[string]any{"b": 2})
	s.Reset(seed)
	assert.Equal(t, map[string]any{"a": 1}, s.Snapshot())

	s.Merge(map[string]any{"a": 9})
	assert.Equal(t, 1, seed["a"], "seed must not be aliased")
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore(map[string]any{"a": 1})

	snap := s.Snapshot()
	snap["a"] = 2

	assert.Equal(t, 1, s.Get("a"))
	assert.Equal(t, 1, s.Len())
}

func TestBind(t *testing.T) {
	snapshot := map[string]any{"cookie": "abc", "n": 3}

	tests := []struct {
		name   string
		params []string
		want   Args
	}{
		{"no params", nil, Args{}},
		{"single", []string{"cookie"}, Args{"abc"}},
		{"ordered", []string{"n", "cookie"}, Args{3, "abc"}},
		{"missing binds nil", []string{"cookie", "absent"}, Args{"abc", nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bind(Operation{Params: tt.params}, snapshot)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgs(t *testing.T) {
	args := Args{"x", 2}

	assert.Equal(t, "x", args.At(0))
	assert.Nil(t, args.At(5))
	assert.Nil(t, args.At(-1))

	s, ok := args.String(0)
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = args.String(1)
	assert.False(t, ok)
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, KindEmpty, ResultOf(nil).Kind())
	assert.Equal(t, KindMerge, ResultOf(map[string]any{"a": 1}).Kind())
	assert.Equal(t, KindScalar, ResultOf("hello").Kind())
	assert.Equal(t, KindScalar, ResultOf(map[string]int{"a": 1}).Kind())
	assert.Equal(t, KindScalar, ResultOf(Scalar(1)).Kind())
	assert.Equal(t, KindEmpty, Result{}.Kind())
	assert.Equal(t, "merge", KindMerge.String())
}
