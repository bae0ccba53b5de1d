package tweet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// GeoType is the only geo type present in the source data.
const GeoType = "Point"

// Wire shapes for the raw tweet JSON. Numeric counts are decoded as
// interface{} because the source mixes numbers and numeric strings.
type wireUser struct {
	IDStr        *string     `json:"id_str"`
	Name         *string     `json:"name"`
	ScreenName   *string     `json:"screen_name"`
	Description  *string     `json:"description"`
	FriendsCount interface{} `json:"friends_count"`
}

type wireGeo struct {
	Coordinates []interface{} `json:"coordinates"`
}

type wireTweet struct {
	CreatedAt           *string         `json:"created_at"`
	IDStr               *string         `json:"id_str"`
	Text                *string         `json:"text"`
	Source              *string         `json:"source"`
	InReplyToUserID     *string         `json:"in_reply_to_user_id_str"`
	InReplyToScreenName *string         `json:"in_reply_to_screen_name"`
	InReplyToStatusID   *string         `json:"in_reply_to_status_id_str"`
	RetweetCount        interface{}     `json:"retweet_count"`
	Contributors        json.RawMessage `json:"contributors"`
	User                *wireUser       `json:"user"`
	Geo                 json.RawMessage `json:"geo"`
}

// ParseLine decodes a single tweet line into a Record.
//
// Lines that are empty, not valid JSON, or missing the tweet or author
// identifier return an error wrapping tweetbench.ErrMalformedRecord.
func ParseLine(line []byte) (*tweetbench.Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("empty line: %w", tweetbench.ErrMalformedRecord)
	}

	var wire wireTweet
	if err := json.Unmarshal(line, &wire); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", tweetbench.ErrMalformedRecord)
	}

	tweetID := normalizeString(wire.IDStr)
	if tweetID == nil {
		return nil, fmt.Errorf("missing tweet id_str: %w", tweetbench.ErrMalformedRecord)
	}

	if wire.User == nil {
		return nil, fmt.Errorf("missing user object: %w", tweetbench.ErrMalformedRecord)
	}
	userID := normalizeString(wire.User.IDStr)
	if userID == nil {
		return nil, fmt.Errorf("missing user id_str: %w", tweetbench.ErrMalformedRecord)
	}

	rec := &tweetbench.Record{
		User: tweetbench.User{
			ID:           *userID,
			Name:         normalizeString(wire.User.Name),
			ScreenName:   normalizeString(wire.User.ScreenName),
			Description:  normalizeString(wire.User.Description),
			FriendsCount: normalizeCount(wire.User.FriendsCount),
		},
		Tweet: tweetbench.Tweet{
			ID:                  *tweetID,
			CreatedAt:           normalizeString(wire.CreatedAt),
			Text:                normalizeString(wire.Text),
			Source:              normalizeString(wire.Source),
			InReplyToUserID:     normalizeString(wire.InReplyToUserID),
			InReplyToScreenName: normalizeString(wire.InReplyToScreenName),
			InReplyToStatusID:   normalizeString(wire.InReplyToStatusID),
			RetweetCount:        normalizeCount(wire.RetweetCount),
			Contributors:        rawContributors(wire.Contributors),
			UserID:              *userID,
		},
	}

	if geo := parseGeo(wire.Geo); geo != nil {
		rec.Geo = geo
		id := geo.ID
		rec.Tweet.GeoID = &id
	}

	return rec, nil
}

// parseGeo decodes the geo object leniently. An unusable geo (missing,
// null, wrong shape, or non-numeric coordinates) yields a geo-less tweet,
// never a rejected line.
func parseGeo(raw json.RawMessage) *tweetbench.Geo {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var wire wireGeo
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}
	if len(wire.Coordinates) != 2 {
		return nil
	}

	// Source convention: first coordinate is longitude. Each coordinate
	// must be a JSON number; numeric strings do not count.
	lon, lonOK := wire.Coordinates[0].(float64)
	lat, latOK := wire.Coordinates[1].(float64)
	if !lonOK || !latOK {
		return nil
	}

	return &tweetbench.Geo{
		ID:        GeoID(lon, lat),
		Type:      GeoType,
		Longitude: lon,
		Latitude:  lat,
	}
}

// GeoID derives the geo table key from a coordinate pair, so that repeated
// locations map onto the same row.
func GeoID(longitude, latitude float64) string {
	return strconv.FormatFloat(longitude, 'g', -1, 64) + "_" + strconv.FormatFloat(latitude, 'g', -1, 64)
}

// normalizeString maps the source's null spellings (the literal "NULL" and
// the empty string) onto SQL NULL.
func normalizeString(s *string) *string {
	if s == nil || *s == "" || *s == "NULL" {
		return nil
	}
	return s
}

// normalizeCount coerces a count field that may arrive as a JSON number or a
// numeric string. Anything else becomes NULL.
func normalizeCount(v interface{}) *int64 {
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i
	case string:
		if n == "" || n == "NULL" {
			return nil
		}
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return &i
		}
		return nil
	default:
		return nil
	}
}

// rawContributors keeps the contributors field as its raw JSON text.
func rawContributors(raw json.RawMessage) *string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	s := string(raw)
	return &s
}
