package models

// MaxTweetLen is the maximum tweet body length, counted in characters
// (runes), not bytes.
const MaxTweetLen = 300

// Tweet is a single append-only post. ID doubles as the global append order:
// it is assigned by the database sequence and never reused.
type Tweet struct {
	ID     int64
	UserID int64
	Tweet  string
}

// TimelineEntry is one row of a composed timeline, in the wire shape the
// API exposes (author id + body).
type TimelineEntry struct {
	UserID int64  `json:"user_id"`
	Tweet  string `json:"tweet"`
}
