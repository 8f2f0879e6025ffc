package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageRows = []string{"id", "description", "location", "image_url"}

func TestSQLiteDeleteCachedFeedDeletesBothTables(t *testing.T) {
	store, mock := makeSQLMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feed_images").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM feed_cache").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := awaitCompletion(t, func(completion func(error)) {
		store.DeleteCachedFeed(context.Background(), completion)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteDeleteCachedFeedRollsBackOnError(t *testing.T) {
	store, mock := makeSQLMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feed_images").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := awaitCompletion(t, func(completion func(error)) {
		store.DeleteCachedFeed(context.Background(), completion)
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteInsertWritesTimestampAndImagesInOrder(t *testing.T) {
	store, mock := makeSQLMockStore(t)
	images := localImages(t)
	timestamp := time.Date(2023, 5, 17, 10, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feed_images").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT OR REPLACE INTO feed_cache").
		WithArgs(timestamp.UnixNano()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO feed_images").
		WithArgs(0, images[0].ID.String(), *images[0].Description, *images[0].Location, sampleImageUrl).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO feed_images").
		WithArgs(1, images[1].ID.String(), nil, nil, sampleImageUrl).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := awaitCompletion(t, func(completion func(error)) {
		store.Insert(context.Background(), images, timestamp, completion)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteInsertRollsBackOnImageError(t *testing.T) {
	store, mock := makeSQLMockStore(t)
	images := localImages(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feed_images").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT OR REPLACE INTO feed_cache").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO feed_images").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err := awaitCompletion(t, func(completion func(error)) {
		store.Insert(context.Background(), images, time.Now(), completion)
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRetrieveDeliversEmptyCacheWhenNothingStored(t *testing.T) {
	store, mock := makeSQLMockStore(t)
	mock.ExpectQuery("SELECT timestamp FROM feed_cache").WillReturnRows(sqlmock.NewRows([]string{"timestamp"}))

	_, err := store.Retrieve(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCache)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRetrieveDeliversStoredFeed(t *testing.T) {
	store, mock := makeSQLMockStore(t)
	images := localImages(t)
	timestamp := time.Date(2023, 5, 17, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT timestamp FROM feed_cache").
		WillReturnRows(sqlmock.NewRows([]string{"timestamp"}).AddRow(timestamp.UnixNano()))
	rows := sqlmock.NewRows(imageRows).
		AddRow(images[0].ID.String(), *images[0].Description, *images[0].Location, sampleImageUrl).
		AddRow(images[1].ID.String(), nil, nil, sampleImageUrl)
	mock.ExpectQuery("SELECT id, description, location, image_url FROM feed_images").WillReturnRows(rows)

	cached, err := store.Retrieve(context.Background())
	require.NoError(t, err)

	requireSameCachedFeed(t, images, timestamp, cached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRetrieveFailsOnCorruptedImageID(t *testing.T) {
	store, mock := makeSQLMockStore(t)

	mock.ExpectQuery("SELECT timestamp FROM feed_cache").
		WillReturnRows(sqlmock.NewRows([]string{"timestamp"}).AddRow(time.Now().UnixNano()))
	mock.ExpectQuery("SELECT id, description, location, image_url FROM feed_images").
		WillReturnRows(sqlmock.NewRows(imageRows).AddRow("not-a-uuid", nil, nil, sampleImageUrl))

	_, err := store.Retrieve(context.Background())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCache)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLiteFeedStore(filepath.Join(t.TempDir(), "db", "feed.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	_, err = store.Retrieve(ctx)
	require.ErrorIs(t, err, ErrEmptyCache)

	first := localImages(t)
	firstTimestamp := time.Now()
	require.NoError(t, awaitCompletion(t, func(completion func(error)) {
		store.Insert(ctx, first, firstTimestamp, completion)
	}))

	cached, err := store.Retrieve(ctx)
	require.NoError(t, err)
	requireSameCachedFeed(t, first, firstTimestamp, cached)

	second := []LocalFeedImage{{ID: uuid.New(), ImageURL: first[0].ImageURL}}
	secondTimestamp := firstTimestamp.Add(time.Minute)
	require.NoError(t, awaitCompletion(t, func(completion func(error)) {
		store.DeleteCachedFeed(ctx, completion)
	}))
	require.NoError(t, awaitCompletion(t, func(completion func(error)) {
		store.Insert(ctx, second, secondTimestamp, completion)
	}))

	cached, err = store.Retrieve(ctx)
	require.NoError(t, err)
	requireSameCachedFeed(t, second, secondTimestamp, cached)

	require.NoError(t, awaitCompletion(t, func(completion func(error)) {
		store.DeleteCachedFeed(ctx, completion)
	}))
	_, err = store.Retrieve(ctx)
	assert.ErrorIs(t, err, ErrEmptyCache)
	assert.NoError(t, store.Ping(ctx))
}

func TestSQLiteInterleavedSavesKeepOnlyTheLastFeed(t *testing.T) {
	store, err := OpenSQLiteFeedStore(filepath.Join(t.TempDir(), "feed.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	imageURL := localImages(t)[0].ImageURL
	first := []LocalFeedImage{
		{ID: uuid.New(), ImageURL: imageURL},
		{ID: uuid.New(), ImageURL: imageURL},
		{ID: uuid.New(), ImageURL: imageURL},
	}
	second := []LocalFeedImage{
		{ID: uuid.New(), ImageURL: imageURL},
		{ID: uuid.New(), ImageURL: imageURL},
	}
	secondTimestamp := time.Now()

	for i := 0; i < 2; i++ {
		require.NoError(t, awaitCompletion(t, func(completion func(error)) {
			store.DeleteCachedFeed(ctx, completion)
		}))
	}
	require.NoError(t, awaitCompletion(t, func(completion func(error)) {
		store.Insert(ctx, first, secondTimestamp.Add(-time.Second), completion)
	}))
	require.NoError(t, awaitCompletion(t, func(completion func(error)) {
		store.Insert(ctx, second, secondTimestamp, completion)
	}))

	cached, err := store.Retrieve(ctx)
	require.NoError(t, err)
	requireSameCachedFeed(t, second, secondTimestamp, cached)
}

func TestSQLiteDeleteCachedFeedOnEmptyStoreSucceeds(t *testing.T) {
	store, err := OpenSQLiteFeedStore(filepath.Join(t.TempDir(), "feed.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	err = awaitCompletion(t, func(completion func(error)) {
		store.DeleteCachedFeed(context.Background(), completion)
	})

	assert.NoError(t, err)
}

func makeSQLMockStore(t *testing.T) (*SQLiteFeedStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteFeedStore(db), mock
}
