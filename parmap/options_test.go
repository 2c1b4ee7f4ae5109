package parmap

import (
	"context"
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		key   string
		async bool
	}{
		{"negative chunk size", WithChunkSize(-1), "chunk size", false},
		{"pm_chunksize negative", WithKwarg("pm_chunksize", -4), "chunk size", false},
		{"pm_chunksize string", WithKwarg("pm_chunksize", "4"), "pm_chunksize", true},
		{"pm_parallel not bool", WithKwarg("pm_parallel", 1), "pm_parallel", false},
		{"pm_pool not a pool", WithKwarg("pm_pool", "default"), "pm_pool", true},
		{"pm_pbar not bool", WithKwarg("pm_pbar", "yes"), "pm_pbar", false},
		{"pm_error_callback wrong func", WithKwarg("pm_error_callback", func() {}), "pm_error_callback", true},
		{"pm_callback wrong result type", WithKwarg("pm_callback", func([]string) {}), "pm_callback", true},
		{"typed callback wrong result type", WithCallback(func([]float64) {}), "pm_callback", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			fn := func(ctx context.Context, c Call) (int, error) {
				called = true
				return 0, nil
			}

			var err error
			if tt.async {
				_, err = MapAsync(context.Background(), fn, []int{1, 2}, tt.opt)
			} else {
				_, err = Map(context.Background(), fn, []int{1, 2}, tt.opt)
			}
			require.ErrorIs(t, err, ErrInvalidOption)

			var oe *OptionError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, tt.key, oe.Name)
			assert.False(t, called, "no work may start with an invalid option")
		})
	}
}

func TestOptions_KeywordSpellings(t *testing.T) {
	rec := recordWarnings(t)
	p := newTestPool(t, 2)

	results, err := Map(context.Background(), addKw, []int{1, 2}, WithKwargs(Kwargs{
		"pm_pool":      p,
		"pm_chunksize": 1,
		"pm_pbar":      false,
		"a":            100,
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{102, 103}, results)
	assert.Empty(t, rec.of(DeprecationWarning))
}

func TestOptions_OptionKeysNotForwarded(t *testing.T) {
	keys := func(ctx context.Context, c Call) ([]string, error) {
		var out []string
		for k := range c.Kwargs {
			out = append(out, k)
		}
		return out, nil
	}

	results, err := Map(context.Background(), keys, []int{0}, WithKwargs(Kwargs{
		"pm_parallel":  false,
		"pm_processes": 2,
		"extra":        true,
	}))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"extra"}}, results)
}

func TestOptions_DeprecatedAliasWarnsOnce(t *testing.T) {
	freshDeprecations(t)
	rec := recordWarnings(t)

	for range 3 {
		results, err := Map(context.Background(), square, []int{1, 2, 3}, WithKwarg("chunksize", 2))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 9}, results)
	}

	warnings := rec.of(DeprecationWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Argument 'chunksize' is deprecated. Use pm_chunksize instead", warnings[0].Message)
}

func TestOptions_DeprecatedAliasWins(t *testing.T) {
	freshDeprecations(t)
	rec := recordWarnings(t)

	// Callbacks only fire for parallel runs, so they show which value won.
	called := false
	_, err := Map(context.Background(), square, []int{1}, WithKwargs(Kwargs{
		"pm_parallel": true,
		"parallel":    false,
	}), WithCallback(func([]int) { called = true }))
	require.NoError(t, err)
	assert.False(t, called)

	deprecations := rec.of(DeprecationWarning)
	require.Len(t, deprecations, 1)
	assert.Contains(t, deprecations[0].Message, "'parallel'")
}

func TestOptions_DeprecatedProcesses(t *testing.T) {
	freshDeprecations(t)
	rec := recordWarnings(t)

	results, err := Map(context.Background(), square, []int{5}, WithKwarg("processes", -2))
	require.NoError(t, err)
	assert.Equal(t, []int{25}, results)

	assert.Len(t, rec.of(DeprecationWarning), 1)
	assert.Len(t, rec.of(RuntimeWarning), 1)
}

func TestOptions_DeprecatedAsyncCallbacks(t *testing.T) {
	freshDeprecations(t)
	rec := recordWarnings(t)
	errBad := errors.New("bad")

	got := make(chan error, 1)
	res, err := MapAsync(context.Background(), func(ctx context.Context, c Call) (int, error) {
		return 0, errBad
	}, []int{1}, WithKwargs(Kwargs{
		"error_callback": func(err error) { got <- err },
		"callback":       func([]int) { t.Error("success callback called for a failed call") },
	}))
	require.NoError(t, err)

	_, err = res.Get(0)
	assert.ErrorIs(t, err, errBad)
	assert.ErrorIs(t, <-got, errBad)
	assert.Len(t, rec.of(DeprecationWarning), 2)
}

func TestOptions_NilValuesRestoreDefaults(t *testing.T) {
	results, err := Map(context.Background(), square, []int{3}, WithKwargs(Kwargs{
		"pm_pool":      nil,
		"pm_chunksize": nil,
		"pm_processes": nil,
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{9}, results)
}

// kwargsOf returns the keyword names a call received, sorted.
func kwargsOf(ctx context.Context, c Call) ([]string, error) {
	return slices.Sorted(maps.Keys(c.Kwargs)), nil
}

func TestOptions_SyncForwardsCallbackKeywords(t *testing.T) {
	freshDeprecations(t)
	rec := recordWarnings(t)

	echo := func(ctx context.Context, c Call) (string, error) {
		return KwargOr(c, "callback", ""), nil
	}
	results, err := Map(context.Background(), echo, []int{1, 2}, WithKwarg("callback", "notify-url"))
	require.NoError(t, err)
	assert.Equal(t, []string{"notify-url", "notify-url"}, results)

	names, err := Map(context.Background(), kwargsOf, []int{0}, WithKwargs(Kwargs{
		"pm_callback":       "a",
		"pm_error_callback": "b",
		"error_callback":    "c",
	}))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"error_callback", "pm_callback", "pm_error_callback"}}, names)
	assert.Empty(t, rec.of(DeprecationWarning))
}

func TestOptions_AsyncForwardsProgressKeywords(t *testing.T) {
	freshDeprecations(t)
	rec := recordWarnings(t)

	res, err := MapAsync(context.Background(), kwargsOf, []int{0}, WithKwargs(Kwargs{
		"pm_pbar":         "x",
		"parmap_progress": "y",
	}))
	require.NoError(t, err)
	defer res.Close()

	names, err := res.Get(0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"parmap_progress", "pm_pbar"}}, names)
	assert.Empty(t, rec.of(DeprecationWarning))
}
