package store

// SQL statements for the tweet schema and benchmark queries.
// Centralizing SQL here keeps it out of the Go control flow.

const (
	createUserTable = `
	CREATE TABLE IF NOT EXISTS tweet_user (
		id            text PRIMARY KEY,
		name          text,
		screen_name   text,
		description   text,
		friends_count bigint
	)`

	createGeoTable = `
	CREATE TABLE IF NOT EXISTS geo (
		geo_id    text PRIMARY KEY,
		type      text,
		longitude double precision,
		latitude  double precision
	)`

	createTweetTable = `
	CREATE TABLE IF NOT EXISTS tweet (
		id_str                  text PRIMARY KEY,
		created_at              text,
		text                    text,
		source                  text,
		in_reply_to_user_id     text,
		in_reply_to_screen_name text,
		in_reply_to_status_id   text,
		retweet_count           bigint,
		contributors            text,
		user_id                 text REFERENCES tweet_user(id),
		geo_id                  text REFERENCES geo(geo_id)
	)`

	createBenchRunTable = `
	CREATE TABLE IF NOT EXISTS bench_run (
		id         uuid PRIMARY KEY,
		label      text NOT NULL,
		started_at timestamptz NOT NULL DEFAULT now()
	)`

	insertUser = `
	INSERT INTO tweet_user (id, name, screen_name, description, friends_count)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING`

	insertGeo = `
	INSERT INTO geo (geo_id, type, longitude, latitude)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (geo_id) DO NOTHING`

	insertTweet = `
	INSERT INTO tweet (
		id_str, created_at, text, source,
		in_reply_to_user_id, in_reply_to_screen_name, in_reply_to_status_id,
		retweet_count, contributors, user_id, geo_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id_str) DO NOTHING`

	insertBenchRun = `
	INSERT INTO bench_run (id, label) VALUES ($1, $2)`

	// queryUserAverages is the benchmark aggregation: average location per
	// user. The inner join deliberately excludes tweets without coordinates.
	queryUserAverages = `
	SELECT t.user_id, AVG(g.longitude) AS avg_longitude, AVG(g.latitude) AS avg_latitude
	FROM tweet t
	INNER JOIN geo g ON t.geo_id = g.geo_id
	GROUP BY t.user_id
	ORDER BY t.user_id`

	queryCountUsers  = `SELECT COUNT(DISTINCT id) FROM tweet_user`
	queryCountGeos   = `SELECT COUNT(DISTINCT geo_id) FROM geo`
	queryCountTweets = `SELECT COUNT(DISTINCT id_str) FROM tweet`

	truncateAll = `TRUNCATE tweet, geo, tweet_user`

	dropDenormTable = `DROP TABLE IF EXISTS tweet_denorm`

	// createDenormTable materializes the three-way join. LEFT JOINs keep
	// tweets that have no geo reference.
	createDenormTable = `
	CREATE TABLE tweet_denorm AS
	SELECT
		t.id_str, t.created_at, t.text, t.source,
		t.in_reply_to_user_id, t.in_reply_to_screen_name, t.in_reply_to_status_id,
		t.retweet_count, t.contributors, t.user_id, t.geo_id,
		u.name AS user_name,
		u.screen_name,
		u.description AS user_description,
		u.friends_count,
		g.type AS geo_type,
		g.longitude,
		g.latitude
	FROM tweet t
	LEFT JOIN tweet_user u ON t.user_id = u.id
	LEFT JOIN geo g ON t.geo_id = g.geo_id`

	queryCountDenorm = `SELECT COUNT(*) FROM tweet_denorm`

	queryExportTweets = `
	SELECT id_str, created_at, text, source,
	       in_reply_to_user_id, in_reply_to_screen_name, in_reply_to_status_id,
	       retweet_count, contributors, user_id, geo_id
	FROM tweet
	ORDER BY id_str`

	queryExportDenorm = `
	SELECT id_str, created_at, text,
	       user_name, screen_name, user_description, friends_count,
	       geo_type, longitude, latitude
	FROM tweet_denorm
	ORDER BY id_str`
)
