package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// Store wraps a connection pool with the tweet schema operations.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an established pool. The caller owns the pool
// lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for callers that need raw access,
// such as the timed query runs.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// CreateSchema creates the user, geo, tweet and bench bookkeeping tables if
// they do not exist. Order matters: tweet references the other two.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, ddl := range []string{createUserTable, createGeoTable, createTweetTable, createBenchRunTable} {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create schema: %v: %w", err, tweetbench.ErrExecutionFailed)
		}
	}
	return nil
}

// Truncate removes all tweet, geo and user rows. Used between benchmark
// scenarios so each load starts from an empty store.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, truncateAll); err != nil {
		return fmt.Errorf("failed to truncate: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return nil
}

// InsertRecord writes one parsed record with one insert statement per table.
// This is the row-at-a-time loading mode.
func (s *Store) InsertRecord(ctx context.Context, rec *tweetbench.Record) error {
	u := rec.User
	if _, err := s.pool.Exec(ctx, insertUser, u.ID, u.Name, u.ScreenName, u.Description, u.FriendsCount); err != nil {
		return fmt.Errorf("failed to insert user %s: %v: %w", u.ID, err, tweetbench.ErrExecutionFailed)
	}

	if g := rec.Geo; g != nil {
		if _, err := s.pool.Exec(ctx, insertGeo, g.ID, g.Type, g.Longitude, g.Latitude); err != nil {
			return fmt.Errorf("failed to insert geo %s: %v: %w", g.ID, err, tweetbench.ErrExecutionFailed)
		}
	}

	t := rec.Tweet
	if _, err := s.pool.Exec(ctx, insertTweet,
		t.ID, t.CreatedAt, t.Text, t.Source,
		t.InReplyToUserID, t.InReplyToScreenName, t.InReplyToStatusID,
		t.RetweetCount, t.Contributors, t.UserID, t.GeoID,
	); err != nil {
		return fmt.Errorf("failed to insert tweet %s: %v: %w", t.ID, err, tweetbench.ErrExecutionFailed)
	}

	return nil
}

// InsertBatch writes a bounded group of records in a single batched
// round-trip. Users and geos are queued before the tweets that reference
// them; statements execute in queue order on the server.
func (s *Store) InsertBatch(ctx context.Context, recs []*tweetbench.Record) error {
	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		u := rec.User
		batch.Queue(insertUser, u.ID, u.Name, u.ScreenName, u.Description, u.FriendsCount)
		if g := rec.Geo; g != nil {
			batch.Queue(insertGeo, g.ID, g.Type, g.Longitude, g.Latitude)
		}
	}
	for _, rec := range recs {
		t := rec.Tweet
		batch.Queue(insertTweet,
			t.ID, t.CreatedAt, t.Text, t.Source,
			t.InReplyToUserID, t.InReplyToScreenName, t.InReplyToStatusID,
			t.RetweetCount, t.Contributors, t.UserID, t.GeoID,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("batch insert failed at statement %d: %v: %w", i, err, tweetbench.ErrExecutionFailed)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to complete batch insert: %v: %w", err, tweetbench.ErrExecutionFailed)
	}

	return nil
}

// CopyRecords stages a group of records with the COPY protocol into
// session temp tables, then merges them into the target tables with one
// insert-select per table. COPY cannot skip conflicting rows on its own,
// so the merge step carries the ON CONFLICT handling.
func (s *Store) CopyRecords(ctx context.Context, recs []*tweetbench.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin copy transaction: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	defer tx.Rollback(ctx)

	stagingDDL := []string{
		`CREATE TEMP TABLE staging_user (LIKE tweet_user) ON COMMIT DROP`,
		`CREATE TEMP TABLE staging_geo (LIKE geo) ON COMMIT DROP`,
		`CREATE TEMP TABLE staging_tweet (LIKE tweet) ON COMMIT DROP`,
	}
	for _, ddl := range stagingDDL {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create staging tables: %v: %w", err, tweetbench.ErrExecutionFailed)
		}
	}

	userRows := make([][]interface{}, 0, len(recs))
	geoRows := make([][]interface{}, 0, len(recs))
	tweetRows := make([][]interface{}, 0, len(recs))
	for _, rec := range recs {
		u := rec.User
		userRows = append(userRows, []interface{}{u.ID, u.Name, u.ScreenName, u.Description, u.FriendsCount})
		if g := rec.Geo; g != nil {
			geoRows = append(geoRows, []interface{}{g.ID, g.Type, g.Longitude, g.Latitude})
		}
		t := rec.Tweet
		tweetRows = append(tweetRows, []interface{}{
			t.ID, t.CreatedAt, t.Text, t.Source,
			t.InReplyToUserID, t.InReplyToScreenName, t.InReplyToStatusID,
			t.RetweetCount, t.Contributors, t.UserID, t.GeoID,
		})
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]interface{}
	}{
		{"staging_user", []string{"id", "name", "screen_name", "description", "friends_count"}, userRows},
		{"staging_geo", []string{"geo_id", "type", "longitude", "latitude"}, geoRows},
		{"staging_tweet", []string{
			"id_str", "created_at", "text", "source",
			"in_reply_to_user_id", "in_reply_to_screen_name", "in_reply_to_status_id",
			"retweet_count", "contributors", "user_id", "geo_id",
		}, tweetRows},
	}
	for _, c := range copies {
		if len(c.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
			return fmt.Errorf("COPY into %s failed: %v: %w", c.table, err, tweetbench.ErrExecutionFailed)
		}
	}

	// DISTINCT ON collapses duplicate keys within the staged group itself;
	// ON CONFLICT handles keys already present in the target.
	merges := []string{
		`INSERT INTO tweet_user SELECT DISTINCT ON (id) * FROM staging_user ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO geo SELECT DISTINCT ON (geo_id) * FROM staging_geo ON CONFLICT (geo_id) DO NOTHING`,
		`INSERT INTO tweet SELECT DISTINCT ON (id_str) * FROM staging_tweet ON CONFLICT (id_str) DO NOTHING`,
	}
	for _, merge := range merges {
		if _, err := tx.Exec(ctx, merge); err != nil {
			return fmt.Errorf("staging merge failed: %v: %w", err, tweetbench.ErrExecutionFailed)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit copy transaction: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return nil
}

// TableCounts holds distinct row counts per table.
type TableCounts struct {
	Users  int64
	Geos   int64
	Tweets int64
}

// Counts returns distinct row counts for the three tables.
func (s *Store) Counts(ctx context.Context) (TableCounts, error) {
	var counts TableCounts
	queries := []struct {
		sql  string
		dest *int64
	}{
		{queryCountUsers, &counts.Users},
		{queryCountGeos, &counts.Geos},
		{queryCountTweets, &counts.Tweets},
	}
	for _, q := range queries {
		if err := s.pool.QueryRow(ctx, q.sql).Scan(q.dest); err != nil {
			return TableCounts{}, fmt.Errorf("count query failed: %v: %w", err, tweetbench.ErrExecutionFailed)
		}
	}
	return counts, nil
}

// UserAverages runs the per-user location aggregation. Tweets without a geo
// reference do not participate.
func (s *Store) UserAverages(ctx context.Context) ([]tweetbench.UserAverage, error) {
	rows, err := s.pool.Query(ctx, queryUserAverages)
	if err != nil {
		return nil, fmt.Errorf("aggregation query failed: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	defer rows.Close()

	var averages []tweetbench.UserAverage
	for rows.Next() {
		var avg tweetbench.UserAverage
		if err := rows.Scan(&avg.UserID, &avg.Longitude, &avg.Latitude); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation row: %v: %w", err, tweetbench.ErrExecutionFailed)
		}
		averages = append(averages, avg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregation query failed: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return averages, nil
}

// CreateDenorm rebuilds the materialized three-way join in tweet_denorm and
// returns its row count. Any previous materialization is replaced.
func (s *Store) CreateDenorm(ctx context.Context) (int64, error) {
	if _, err := s.pool.Exec(ctx, dropDenormTable); err != nil {
		return 0, fmt.Errorf("failed to drop tweet_denorm: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	if _, err := s.pool.Exec(ctx, createDenormTable); err != nil {
		return 0, fmt.Errorf("failed to create tweet_denorm: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	var count int64
	if err := s.pool.QueryRow(ctx, queryCountDenorm).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tweet_denorm: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return count, nil
}

// RecordBenchRun stamps a benchmark run into the bookkeeping table.
func (s *Store) RecordBenchRun(ctx context.Context, id uuid.UUID, label string) error {
	if _, err := s.pool.Exec(ctx, insertBenchRun, id, label); err != nil {
		return fmt.Errorf("failed to record bench run: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return nil
}
