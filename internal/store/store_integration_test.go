package store_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvellian/tweetbench/internal/store"
	"github.com/kvellian/tweetbench/internal/testinfra"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// makeRecord builds a record for user u with an optional coordinate pair.
func makeRecord(id int, userID string, lon, lat float64, withGeo bool) *tweetbench.Record {
	text := fmt.Sprintf("tweet %d", id)
	rec := &tweetbench.Record{
		User: tweetbench.User{ID: userID},
		Tweet: tweetbench.Tweet{
			ID:     fmt.Sprintf("%d", id),
			Text:   &text,
			UserID: userID,
		},
	}
	if withGeo {
		geoID := fmt.Sprintf("%g_%g", lon, lat)
		rec.Geo = &tweetbench.Geo{ID: geoID, Type: "Point", Longitude: lon, Latitude: lat}
		rec.Tweet.GeoID = &geoID
	}
	return rec
}

func tweetIDs(t *testing.T, pool *pgxpool.Pool) []string {
	t.Helper()
	rows, err := pool.Query(context.Background(), "SELECT id_str FROM tweet ORDER BY id_str")
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestStore_Integration(t *testing.T) {
	pool := testinfra.RequirePool(t)
	ctx := context.Background()

	s := store.New(pool)
	require.NoError(t, s.CreateSchema(ctx))

	// Ten records for two users; half carry coordinates.
	records := func() []*tweetbench.Record {
		var recs []*tweetbench.Record
		for i := 0; i < 10; i++ {
			userID := fmt.Sprintf("u%d", i%2)
			recs = append(recs, makeRecord(i, userID, float64(10+i), float64(20+i), i%2 == 0))
		}
		return recs
	}()

	t.Run("batched load writes exactly N tweet rows", func(t *testing.T) {
		require.NoError(t, s.Truncate(ctx))
		require.NoError(t, s.InsertBatch(ctx, records))

		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), counts.Tweets)
		assert.Equal(t, int64(2), counts.Users)
		assert.Equal(t, int64(5), counts.Geos)
	})

	t.Run("row and batch and copy produce identical row sets", func(t *testing.T) {
		require.NoError(t, s.Truncate(ctx))
		for _, rec := range records {
			require.NoError(t, s.InsertRecord(ctx, rec))
		}
		rowIDs := tweetIDs(t, pool)
		rowCounts, err := s.Counts(ctx)
		require.NoError(t, err)

		require.NoError(t, s.Truncate(ctx))
		require.NoError(t, s.InsertBatch(ctx, records))
		assert.Equal(t, rowIDs, tweetIDs(t, pool))
		batchCounts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, rowCounts, batchCounts)

		require.NoError(t, s.Truncate(ctx))
		require.NoError(t, s.CopyRecords(ctx, records))
		assert.Equal(t, rowIDs, tweetIDs(t, pool))
		copyCounts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, rowCounts, copyCounts)
	})

	t.Run("duplicate keys are ignored on reload", func(t *testing.T) {
		require.NoError(t, s.Truncate(ctx))
		require.NoError(t, s.InsertBatch(ctx, records))
		require.NoError(t, s.InsertBatch(ctx, records))

		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), counts.Tweets)
	})

	t.Run("aggregation averages per user", func(t *testing.T) {
		require.NoError(t, s.Truncate(ctx))
		recs := []*tweetbench.Record{
			makeRecord(100, "geo-user", 10, 40, true),
			makeRecord(101, "geo-user", 20, 50, true),
			makeRecord(102, "plain-user", 0, 0, false),
		}
		require.NoError(t, s.InsertBatch(ctx, recs))

		averages, err := s.UserAverages(ctx)
		require.NoError(t, err)

		// The geo-less user must not appear at all.
		require.Len(t, averages, 1)
		assert.Equal(t, "geo-user", averages[0].UserID)
		assert.InDelta(t, 15.0, averages[0].Longitude, 1e-9)
		assert.InDelta(t, 45.0, averages[0].Latitude, 1e-9)
	})

	t.Run("denorm table keeps geo-less tweets", func(t *testing.T) {
		require.NoError(t, s.Truncate(ctx))
		require.NoError(t, s.InsertBatch(ctx, records))

		count, err := s.CreateDenorm(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), count)
	})

	t.Run("export JSON and CSV", func(t *testing.T) {
		var jsonBuf bytes.Buffer
		require.NoError(t, s.ExportJSON(ctx, &jsonBuf))

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &doc))
		assert.Contains(t, doc, "tweets")
		assert.Contains(t, doc, "tweet_denorm")

		var tweetBuf, denormBuf bytes.Buffer
		require.NoError(t, s.ExportCSV(ctx, &tweetBuf, &denormBuf))

		tweetRows, err := csv.NewReader(&tweetBuf).ReadAll()
		require.NoError(t, err)
		// Header plus ten rows.
		assert.Len(t, tweetRows, 11)

		denormRows, err := csv.NewReader(&denormBuf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, denormRows, 11)
	})

	t.Run("bench run bookkeeping", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, s.RecordBenchRun(ctx, id, "integration"))

		var label string
		require.NoError(t, pool.QueryRow(ctx, "SELECT label FROM bench_run WHERE id = $1", id).Scan(&label))
		assert.Equal(t, "integration", label)
	})
}
