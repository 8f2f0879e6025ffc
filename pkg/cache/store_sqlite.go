package cache

import (
	"context"
	"database/sql"
	"log"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/piraces/essentialfeed/pkg/metrics"
	"github.com/piraces/essentialfeed/scripts"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type SQLiteFeedStore struct {
	db *sql.DB
}

var _ FeedStore = &SQLiteFeedStore{}

func NewSQLiteFeedStore(db *sql.DB) *SQLiteFeedStore {
	return &SQLiteFeedStore{db: db}
}

// OpenSQLiteFeedStore opens the database at dsn, creating its directory and
// schema when needed.
func OpenSQLiteFeedStore(dsn string) (*SQLiteFeedStore, error) {
	dbPath := path.Dir(dsn)
	if err := os.MkdirAll(dbPath, 0750); err != nil {
		log.Printf("[INFO] unable to initialize database directory at: %s. Error: %v", dbPath, err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening the database")
	}
	// Limit SQLite to a single connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "error connecting to the database")
	}

	if _, err := db.Exec(scripts.SchemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "error migrating the schema")
	}

	log.Printf("[INFO] database opened at %s", dsn)
	return NewSQLiteFeedStore(db), nil
}

func (s *SQLiteFeedStore) DeleteCachedFeed(ctx context.Context, completion func(error)) {
	dispatch(ctx, s.deleteCachedFeed, completion)
}

func (s *SQLiteFeedStore) Insert(ctx context.Context, images []LocalFeedImage, timestamp time.Time, completion func(error)) {
	dispatch(ctx, func(ctx context.Context) error {
		return s.insert(ctx, images, timestamp)
	}, completion)
}

func (s *SQLiteFeedStore) Retrieve(ctx context.Context) (CachedFeed, error) {
	var nanos int64
	row := s.db.QueryRowContext(ctx, `SELECT timestamp FROM feed_cache WHERE id = 1`)
	if err := row.Scan(&nanos); err != nil {
		if err == sql.ErrNoRows {
			return CachedFeed{}, ErrEmptyCache
		}
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_SCAN"}).Inc()
		return CachedFeed{}, errors.Wrap(err, "error reading the cache timestamp")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, description, location, image_url FROM feed_images ORDER BY position`)
	if err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_READ"}).Inc()
		return CachedFeed{}, errors.Wrap(err, "error reading the cached images")
	}
	defer rows.Close() // not much we can do here

	images, err := s.scan(rows)
	if err != nil {
		return CachedFeed{}, err
	}

	return CachedFeed{Images: images, Timestamp: time.Unix(0, nanos)}, nil
}

func (s *SQLiteFeedStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteFeedStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteFeedStore) deleteCachedFeed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error starting the transaction")
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM feed_images`); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
		return errors.Wrap(err, "error deleting the cached images")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM feed_cache`); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
		return errors.Wrap(err, "error deleting the cache timestamp")
	}

	return errors.Wrap(tx.Commit(), "error committing the transaction")
}

func (s *SQLiteFeedStore) insert(ctx context.Context, images []LocalFeedImage, timestamp time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error starting the transaction")
	}
	defer tx.Rollback() // no-op after commit

	// Images left by an overlapping insert must not mix with this feed.
	if _, err := tx.ExecContext(ctx, `DELETE FROM feed_images`); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
		return errors.Wrap(err, "error clearing the cached images")
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO feed_cache (id, timestamp) VALUES (1, ?)`, timestamp.UnixNano()); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
		return errors.Wrap(err, "error inserting the cache timestamp")
	}

	for position, image := range images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO feed_images (position, id, description, location, image_url) VALUES (?, ?, ?, ?, ?)`,
			position,
			image.ID.String(),
			nullString(image.Description),
			nullString(image.Location),
			image.ImageURL.String(),
		); err != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
			return errors.Wrapf(err, "error inserting cached image %s", image.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "error committing the transaction")
}

func (s *SQLiteFeedStore) scan(rows *sql.Rows) ([]LocalFeedImage, error) {
	images := []LocalFeedImage{}
	for rows.Next() {
		var (
			tmpid          string
			tmpdescription sql.NullString
			tmplocation    sql.NullString
			tmpimageurl    string
		)

		if err := rows.Scan(&tmpid, &tmpdescription, &tmplocation, &tmpimageurl); err != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "SQL_SCAN"}).Inc()
			return nil, errors.Wrap(err, "error scanning the retrieved rows")
		}

		id, err := uuid.Parse(tmpid)
		if err != nil {
			return nil, errors.Wrap(err, "error parsing the image id")
		}

		imageURL, err := url.Parse(tmpimageurl)
		if err != nil {
			return nil, errors.Wrap(err, "error parsing the image url")
		}

		images = append(images, LocalFeedImage{
			ID:          id,
			Description: stringFromNull(tmpdescription),
			Location:    stringFromNull(tmplocation),
			ImageURL:    imageURL,
		})
	}
	return images, errors.Wrap(rows.Err(), "error iterating the retrieved rows")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
