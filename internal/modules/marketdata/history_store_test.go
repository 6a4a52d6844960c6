package marketdata

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aristath/varengine/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(database.Config{
		Path: "file:" + name + "?mode=memory&cache=shared",
		Name: "history",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return NewHistoryStore(db, nopLogger())
}

func TestHistoryStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tb := table(t, []string{"AAA", "BBB"},
		[]float64{100, 50},
		[]float64{101, nan},
		[]float64{102, 52},
	)

	n, err := store.SavePrices(ctx, tb, "test")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	loaded, err := store.LoadPrices(ctx, []string{"BBB", "AAA"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB", "AAA"}, loaded.Symbols)
	require.Equal(t, 3, loaded.Len())
	assert.Equal(t, day(0), loaded.Dates[0])
	assert.Equal(t, []float64{50, 100}, loaded.Rows[0])
	assert.True(t, math.IsNaN(loaded.Rows[1][0]))
	assert.Equal(t, 101.0, loaded.Rows[1][1])

	windowed, err := store.LoadPrices(ctx, []string{"AAA"}, day(1), day(1))
	require.NoError(t, err)
	require.Equal(t, 1, windowed.Len())
	assert.Equal(t, 101.0, windowed.Rows[0][0])

	symbols, err := store.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, symbols)
}

func TestHistoryStore_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SavePrices(ctx, table(t, []string{"AAA"}, []float64{100}), "first")
	require.NoError(t, err)
	_, err = store.SavePrices(ctx, table(t, []string{"AAA"}, []float64{105}), "second")
	require.NoError(t, err)

	loaded, err := store.LoadPrices(ctx, []string{"AAA"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, 105.0, loaded.Rows[0][0])
}

func TestHistoryStore_LastSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	last, err := store.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	_, err = store.SavePrices(ctx, table(t, []string{"AAA"}, []float64{1}), "test")
	require.NoError(t, err)

	last, err = store.LastSync(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), last, time.Minute)
}

func TestHistoryStore_NoSymbols(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadPrices(context.Background(), nil, time.Time{}, time.Time{})
	assert.Error(t, err)
}
