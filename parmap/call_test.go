package parmap

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/parmap/pool"
)

func TestProduct(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]int
		want  [][]int
	}{
		{"no lists", nil, nil},
		{"single list", [][]int{{1, 2}}, [][]int{{1}, {2}}},
		{"two lists", [][]int{{1, 2}, {3, 4}}, [][]int{{1, 3}, {1, 4}, {2, 3}, {2, 4}}},
		{"empty member", [][]int{{1, 2}, {}}, [][]int{}},
		{
			"three lists",
			[][]int{{0, 1}, {5}, {7, 8}},
			[][]int{{0, 5, 7}, {0, 5, 8}, {1, 5, 7}, {1, 5, 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Product(tt.lists...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Product mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArg(t *testing.T) {
	c := Call{Args: []any{1, "two"}}

	assert.Equal(t, 1, Arg[int](c, 0))
	assert.Equal(t, "two", Arg[string](c, 1))
	assert.Panics(t, func() { Arg[int](c, 1) })
	assert.Panics(t, func() { Arg[int](c, 2) })
	assert.Panics(t, func() { Arg[int](c, -1) })
}

func TestKwargOr(t *testing.T) {
	c := Call{Kwargs: Kwargs{"n": 3}}

	assert.Equal(t, 3, KwargOr(c, "n", 0))
	assert.Equal(t, "x", KwargOr(c, "missing", "x"))
	assert.Panics(t, func() { KwargOr(c, "n", "text") })
}

func TestArg_MismatchInsideMap(t *testing.T) {
	_, err := Map(context.Background(), func(ctx context.Context, c Call) (string, error) {
		return Arg[string](c, 0), nil
	}, []int{1})

	var pe *pool.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Value, "not string")
}

func TestShapeKind_String(t *testing.T) {
	assert.Equal(t, "map", mapShape[int]().kind.String())
	assert.Equal(t, "starmap", starMapShape[int]().kind.String())
}
