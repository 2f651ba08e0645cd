package game

// Comment is a single top-level comment fetched from the upstream platform.
// Comments are immutable once fetched.
type Comment struct {
	ID        string `json:"commentId"`
	Text      string `json:"text"`
	LikeCount int    `json:"likeCount"`
}

// VideoDetails carries the metadata needed to judge a candidate video.
type VideoDetails struct {
	Title           string
	DurationSeconds int
}

// PoolItem is one stocked round, persisted as the JSON payload of a pool row.
// Items are immutable after insertion; regenerating the same round id replaces
// the stored copy. Invariant: TopComment.ID never appears in OtherComments.
type PoolItem struct {
	RoundID         string    `json:"roundId"`
	Day             string    `json:"date"`
	Theme           string    `json:"theme"`
	VideoID         string    `json:"videoId"`
	VideoLink       string    `json:"videoLink"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"durationSeconds"`
	TopComment      Comment   `json:"topComment"`
	OtherComments   []Comment `json:"otherComments"`
}

// Mode selects the win condition applied when a guess is evaluated.
type Mode string

const (
	// ModeSingle rewards guessing the most-liked comment.
	ModeSingle Mode = "single"
	// ModeDissident inverts the win condition: picking any comment other
	// than the most-liked one wins.
	ModeDissident Mode = "dissident"
)

// SessionRound is the answer key for a materialized round, held in memory
// until the round is judged or evicted. Invariant: CorrectCommentID is always
// present among Options.
type SessionRound struct {
	RoundID          string
	Mode             Mode
	VideoID          string
	VideoLink        string
	CorrectCommentID string
	Options          []Comment
}

// RoundOption is a single choice shown to the client. Like counts are
// withheld until the guess is evaluated.
type RoundOption struct {
	CommentID string `json:"commentId"`
	Text      string `json:"text"`
}

// PlayableRound is the client-facing payload for one round.
type PlayableRound struct {
	RoundID         string        `json:"roundId"`
	VideoLink       string        `json:"videoLink"`
	DurationSeconds int           `json:"durationSeconds"`
	Options         []RoundOption `json:"options"`
}

// RevealedOption annotates an option with its like count after evaluation.
// IsTop marks the most-liked comment regardless of game mode.
type RevealedOption struct {
	CommentID string `json:"commentId"`
	Text      string `json:"text"`
	Likes     int    `json:"likes"`
	IsTop     bool   `json:"isTop"`
}

// Verdict is the result of evaluating a guess.
type Verdict struct {
	IsCorrect         bool             `json:"isCorrect"`
	SelectedCommentID string           `json:"selectedOptionId"`
	Options           []RevealedOption `json:"options"`
}

// PoolRow is the persisted form of a PoolItem: one row per (date, round id)
// with the item serialized into round_data.
type PoolRow struct {
	Day     string `gorm:"column:date;size:10;not null;index:idx_daily_pool_date"`
	RoundID string `gorm:"column:round_id;primaryKey;size:190;not null"`
	Payload string `gorm:"column:round_data;type:text;not null"`
	Theme   string `gorm:"column:theme;size:190;not null;default:''"`
}

// TableName provides the explicit table binding for GORM.
func (PoolRow) TableName() string {
	return "daily_pool"
}
