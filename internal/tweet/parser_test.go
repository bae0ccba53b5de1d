package tweet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

const fullTweetLine = `{"created_at":"Thu Apr 06 15:24:15 +0000 2017","id_str":"850006245121695744","text":"Sunset over the lake","source":"web","in_reply_to_user_id_str":null,"in_reply_to_screen_name":"NULL","in_reply_to_status_id_str":"","retweet_count":12,"contributors":[1,2],"user":{"id_str":"2244994945","name":"Ken","screen_name":"kenv","description":"NULL","friends_count":158},"geo":{"type":"Point","coordinates":[-87.65,41.85]}}`

func TestParseLine_FullTweet(t *testing.T) {
	rec, err := ParseLine([]byte(fullTweetLine))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "850006245121695744", rec.Tweet.ID)
	assert.Equal(t, "2244994945", rec.Tweet.UserID)
	require.NotNil(t, rec.Tweet.Text)
	assert.Equal(t, "Sunset over the lake", *rec.Tweet.Text)
	require.NotNil(t, rec.Tweet.RetweetCount)
	assert.Equal(t, int64(12), *rec.Tweet.RetweetCount)
	require.NotNil(t, rec.Tweet.Contributors)
	assert.Equal(t, "[1,2]", *rec.Tweet.Contributors)

	// "NULL", "" and JSON null all normalize to nil.
	assert.Nil(t, rec.Tweet.InReplyToUserID)
	assert.Nil(t, rec.Tweet.InReplyToScreenName)
	assert.Nil(t, rec.Tweet.InReplyToStatusID)
	assert.Nil(t, rec.User.Description)

	assert.Equal(t, "2244994945", rec.User.ID)
	require.NotNil(t, rec.User.FriendsCount)
	assert.Equal(t, int64(158), *rec.User.FriendsCount)

	require.NotNil(t, rec.Geo)
	assert.Equal(t, "-87.65_41.85", rec.Geo.ID)
	assert.Equal(t, GeoType, rec.Geo.Type)
	assert.Equal(t, -87.65, rec.Geo.Longitude)
	assert.Equal(t, 41.85, rec.Geo.Latitude)
	require.NotNil(t, rec.Tweet.GeoID)
	assert.Equal(t, rec.Geo.ID, *rec.Tweet.GeoID)
}

func TestParseLine_NoGeo(t *testing.T) {
	line := `{"id_str":"1","text":"hi","user":{"id_str":"9"}}`
	rec, err := ParseLine([]byte(line))
	require.NoError(t, err)

	assert.Nil(t, rec.Geo)
	assert.Nil(t, rec.Tweet.GeoID)
}

func TestParseLine_GeoMissingCoordinates(t *testing.T) {
	line := `{"id_str":"1","user":{"id_str":"9"},"geo":{"type":"Point"}}`
	rec, err := ParseLine([]byte(line))
	require.NoError(t, err)

	assert.Nil(t, rec.Geo)
}

func TestParseLine_UnusableGeoKeepsTweet(t *testing.T) {
	// A bad geo never costs the tweet, only its location.
	tests := []struct {
		name string
		line string
	}{
		{"string coordinates", `{"id_str":"1","user":{"id_str":"9"},"geo":{"type":"Point","coordinates":["41.8","-87.6"]}}`},
		{"one string coordinate", `{"id_str":"1","user":{"id_str":"9"},"geo":{"type":"Point","coordinates":[41.8,"-87.6"]}}`},
		{"null coordinates", `{"id_str":"1","user":{"id_str":"9"},"geo":{"type":"Point","coordinates":[null,null]}}`},
		{"wrong arity", `{"id_str":"1","user":{"id_str":"9"},"geo":{"type":"Point","coordinates":[41.8]}}`},
		{"geo is a string", `{"id_str":"1","user":{"id_str":"9"},"geo":"NULL"}`},
		{"geo is null", `{"id_str":"1","user":{"id_str":"9"},"geo":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseLine([]byte(tt.line))
			require.NoError(t, err)
			require.NotNil(t, rec)

			assert.Equal(t, "1", rec.Tweet.ID)
			assert.Nil(t, rec.Geo)
			assert.Nil(t, rec.Tweet.GeoID)
		})
	}
}

func TestParseLine_CountAsString(t *testing.T) {
	line := `{"id_str":"1","retweet_count":"100","user":{"id_str":"9","friends_count":"NULL"}}`
	rec, err := ParseLine([]byte(line))
	require.NoError(t, err)

	require.NotNil(t, rec.Tweet.RetweetCount)
	assert.Equal(t, int64(100), *rec.Tweet.RetweetCount)
	assert.Nil(t, rec.User.FriendsCount)
}

func TestParseLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"broken JSON", `{"id_str":"1",`},
		{"not an object", `[1,2,3]`},
		{"missing tweet id", `{"text":"hi","user":{"id_str":"9"}}`},
		{"tweet id NULL", `{"id_str":"NULL","user":{"id_str":"9"}}`},
		{"missing user", `{"id_str":"1"}`},
		{"missing user id", `{"id_str":"1","user":{"name":"Ken"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseLine([]byte(tt.line))
			assert.Nil(t, rec)
			assert.True(t, errors.Is(err, tweetbench.ErrMalformedRecord), "got: %v", err)
		})
	}
}

func TestGeoID_Stable(t *testing.T) {
	assert.Equal(t, "-87.65_41.85", GeoID(-87.65, 41.85))
	assert.Equal(t, "10_20", GeoID(10, 20))
	// Same coordinates always collapse onto the same key.
	assert.Equal(t, GeoID(1.5, -2.25), GeoID(1.5, -2.25))
}
