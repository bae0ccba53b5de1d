package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// exportedTweet is the JSON shape of one tweet table row.
type exportedTweet struct {
	ID                  string  `json:"id_str"`
	CreatedAt           *string `json:"created_at"`
	Text                *string `json:"text"`
	Source              *string `json:"source,omitempty"`
	InReplyToUserID     *string `json:"in_reply_to_user_id,omitempty"`
	InReplyToScreenName *string `json:"in_reply_to_screen_name,omitempty"`
	InReplyToStatusID   *string `json:"in_reply_to_status_id,omitempty"`
	RetweetCount        *int64  `json:"retweet_count,omitempty"`
	Contributors        *string `json:"contributors,omitempty"`
	UserID              *string `json:"user_id,omitempty"`
	GeoID               *string `json:"geo_id,omitempty"`
}

// exportedDenorm is the JSON shape of one denormalized row.
type exportedDenorm struct {
	ID              string   `json:"id_str"`
	CreatedAt       *string  `json:"created_at"`
	Text            *string  `json:"text"`
	UserName        *string  `json:"user_name"`
	ScreenName      *string  `json:"screen_name"`
	UserDescription *string  `json:"user_description"`
	FriendsCount    *int64   `json:"friends_count"`
	GeoType         *string  `json:"geo_type"`
	Longitude       *float64 `json:"longitude"`
	Latitude        *float64 `json:"latitude"`
}

// ExportJSON writes the tweet table and the denormalized join table as one
// JSON document with a key per table. CreateDenorm must have run first.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	tweets, err := s.collectTweets(ctx)
	if err != nil {
		return err
	}
	denorm, err := s.collectDenorm(ctx)
	if err != nil {
		return err
	}

	doc := map[string]interface{}{
		"tweets":       tweets,
		"tweet_denorm": denorm,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export JSON: %w", err)
	}
	return nil
}

// ExportCSV writes the tweet table to tweetW and the denormalized join
// table to denormW, each with a header row.
func (s *Store) ExportCSV(ctx context.Context, tweetW, denormW io.Writer) error {
	tweets, err := s.collectTweets(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(tweetW)
	if err := cw.Write([]string{
		"id_str", "created_at", "text", "source",
		"in_reply_to_user_id", "in_reply_to_screen_name", "in_reply_to_status_id",
		"retweet_count", "contributors", "user_id", "geo_id",
	}); err != nil {
		return fmt.Errorf("failed to write tweet CSV header: %w", err)
	}
	for _, t := range tweets {
		row := []string{
			t.ID, strOrEmpty(t.CreatedAt), strOrEmpty(t.Text), strOrEmpty(t.Source),
			strOrEmpty(t.InReplyToUserID), strOrEmpty(t.InReplyToScreenName), strOrEmpty(t.InReplyToStatusID),
			intOrEmpty(t.RetweetCount), strOrEmpty(t.Contributors), strOrEmpty(t.UserID), strOrEmpty(t.GeoID),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write tweet CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush tweet CSV: %w", err)
	}

	denorm, err := s.collectDenorm(ctx)
	if err != nil {
		return err
	}

	dw := csv.NewWriter(denormW)
	if err := dw.Write([]string{
		"id_str", "created_at", "text",
		"user_name", "screen_name", "user_description", "friends_count",
		"geo_type", "longitude", "latitude",
	}); err != nil {
		return fmt.Errorf("failed to write denorm CSV header: %w", err)
	}
	for _, d := range denorm {
		row := []string{
			d.ID, strOrEmpty(d.CreatedAt), strOrEmpty(d.Text),
			strOrEmpty(d.UserName), strOrEmpty(d.ScreenName), strOrEmpty(d.UserDescription),
			intOrEmpty(d.FriendsCount),
			strOrEmpty(d.GeoType), floatOrEmpty(d.Longitude), floatOrEmpty(d.Latitude),
		}
		if err := dw.Write(row); err != nil {
			return fmt.Errorf("failed to write denorm CSV row: %w", err)
		}
	}
	dw.Flush()
	if err := dw.Error(); err != nil {
		return fmt.Errorf("failed to flush denorm CSV: %w", err)
	}

	return nil
}

func (s *Store) collectTweets(ctx context.Context) ([]exportedTweet, error) {
	rows, err := s.pool.Query(ctx, queryExportTweets)
	if err != nil {
		return nil, fmt.Errorf("tweet export query failed: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (exportedTweet, error) {
		var t exportedTweet
		err := row.Scan(
			&t.ID, &t.CreatedAt, &t.Text, &t.Source,
			&t.InReplyToUserID, &t.InReplyToScreenName, &t.InReplyToStatusID,
			&t.RetweetCount, &t.Contributors, &t.UserID, &t.GeoID,
		)
		return t, err
	})
}

func (s *Store) collectDenorm(ctx context.Context) ([]exportedDenorm, error) {
	rows, err := s.pool.Query(ctx, queryExportDenorm)
	if err != nil {
		return nil, fmt.Errorf("denorm export query failed: %v: %w", err, tweetbench.ErrExecutionFailed)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (exportedDenorm, error) {
		var d exportedDenorm
		err := row.Scan(
			&d.ID, &d.CreatedAt, &d.Text,
			&d.UserName, &d.ScreenName, &d.UserDescription, &d.FriendsCount,
			&d.GeoType, &d.Longitude, &d.Latitude,
		)
		return d, err
	})
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
