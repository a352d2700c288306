package playerinfo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/mlb-projections/internal/models"
	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) People(ctx context.Context, ids []int) ([]models.PlayerInfo, error) {
	args := m.Called(ctx, ids)
	rows, _ := args.Get(0).([]models.PlayerInfo)
	return rows, args.Error(1)
}

func info(id int, year int64, pos string) models.PlayerInfo {
	return models.PlayerInfo{
		TrackingID: id,
		BirthYear:  models.SomeInt(year),
		BirthMonth: models.SomeInt(6),
		BirthDay:   models.SomeInt(15),
		Position:   pos,
	}
}

func TestEnrich_SecondCallPerformsNoFetches(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	fetcher := new(MockFetcher)
	fetcher.On("People", mock.Anything, []int{1, 2}).
		Return([]models.PlayerInfo{info(1, 1995, "SS"), info(2, 1990, "CF")}, nil).
		Once()

	e := NewEnricher(store, fetcher, 200, logger.NewDiscard())

	first, err := e.Enrich(context.Background(), []int{1, 2})
	require.NoError(t, err)

	second, err := e.Enrich(context.Background(), []int{1, 2})
	require.NoError(t, err)

	fetcher.AssertNumberOfCalls(t, "People", 1)
	assert.Equal(t, first.Rows(), second.Rows())
}

func TestEnrich_FetchesOnlyMissingIDs(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	seed := NewCache()
	seed.Add(info(1, 1995, "SS"))
	require.NoError(t, store.Save(seed))

	fetcher := new(MockFetcher)
	fetcher.On("People", mock.Anything, []int{3}).
		Return([]models.PlayerInfo{info(3, 1988, "P")}, nil).
		Once()

	e := NewEnricher(store, fetcher, 200, logger.NewDiscard())
	cache, err := e.Enrich(context.Background(), []int{1, 3, 3})
	require.NoError(t, err)

	fetcher.AssertExpectations(t)
	assert.Equal(t, 2, cache.Len())

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cache.Rows(), reloaded.Rows())
}

func TestEnrich_ExistingEntriesAreNeverOverwritten(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	seed := NewCache()
	seed.Add(info(1, 1995, "SS"))
	require.NoError(t, store.Save(seed))

	fetcher := new(MockFetcher)
	fetcher.On("People", mock.Anything, []int{2}).
		Return([]models.PlayerInfo{info(1, 2001, "C"), info(2, 1990, "1B")}, nil)

	e := NewEnricher(store, fetcher, 200, logger.NewDiscard())
	cache, err := e.Enrich(context.Background(), []int{1, 2})
	require.NoError(t, err)

	got, ok := cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, "SS", got.Position)
	assert.Equal(t, int64(1995), got.BirthYear.Int64)
}

func TestEnrich_BatchFailureIsNotFatal(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	fetcher := new(MockFetcher)
	fetcher.On("People", mock.Anything, []int{1, 2}).
		Return(nil, errors.New("503 from upstream")).Once()
	fetcher.On("People", mock.Anything, []int{3}).
		Return([]models.PlayerInfo{info(3, 1999, "RF")}, nil).Once()

	e := NewEnricher(store, fetcher, 2, logger.NewDiscard())
	cache, err := e.Enrich(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)

	fetcher.AssertExpectations(t)
	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get(3)
	assert.True(t, ok)
}

func TestEnrich_NothingFetchedLeavesStoreUntouched(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	fetcher := new(MockFetcher)
	fetcher.On("People", mock.Anything, []int{9}).Return([]models.PlayerInfo{}, nil)

	e := NewEnricher(store, fetcher, 200, logger.NewDiscard())
	cache, err := e.Enrich(context.Background(), []int{9})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
	assert.NoFileExists(t, store.Path)
}

func TestCSVStore_RoundTripKeepsMissingBirthFields(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	c := NewCache()
	c.Add(models.PlayerInfo{TrackingID: 42})
	c.Add(info(7, 1993, "LF"))
	require.NoError(t, store.Save(c))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, c.Rows(), loaded.Rows())

	row, _ := loaded.Get(42)
	assert.False(t, row.BirthYear.Valid)
	assert.Equal(t, "", row.Position)
}

func TestCache_Missing(t *testing.T) {
	c := NewCache()
	c.Add(info(1, 1990, "C"))

	assert.Equal(t, []int{2, 3}, c.Missing([]int{1, 2, 2, 3, 1}))
	assert.Empty(t, c.Missing([]int{1}))
}
