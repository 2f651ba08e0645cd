package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testDay = "2026-03-14"

var testClock = func() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

// fakeSource scripts the upstream capability per video id.
type fakeSource struct {
	searchIDs         []string
	details           map[string]*VideoDetails
	detailsErr        map[string]error
	comments          map[string][]Comment
	commentsErrOnCall int

	searchCalls   int
	commentsCalls int
}

func (f *fakeSource) SearchVideos(ctx context.Context, query string, maxResults int) ([]string, error) {
	f.searchCalls++
	return append([]string(nil), f.searchIDs...), nil
}

func (f *fakeSource) VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	if err := f.detailsErr[videoID]; err != nil {
		return nil, err
	}
	return f.details[videoID], nil
}

func (f *fakeSource) TopComments(ctx context.Context, videoID string, maxResults int) ([]Comment, error) {
	f.commentsCalls++
	if f.commentsErrOnCall != 0 && f.commentsCalls == f.commentsErrOnCall {
		return nil, errors.New("comment fetch failed")
	}
	return append([]Comment(nil), f.comments[videoID]...), nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&PoolRow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, source VideoSource, ids IDProvider, poolTarget int) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	if ids == nil {
		ids = NewUUIDProvider()
	}
	service, err := NewService(ServiceConfig{
		Database:   db,
		Source:     source,
		IDProvider: ids,
		Clock:      testClock,
		Rand:       rand.New(rand.NewSource(1)),
		PoolTarget: poolTarget,
		Logger:     nil,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service, db
}

// makePoolItem builds a stored item with a 50-like top comment and
// descending-like distractors.
func makePoolItem(id string, durationSeconds, otherCount int) PoolItem {
	others := make([]Comment, 0, otherCount)
	for i := 0; i < otherCount; i++ {
		others = append(others, Comment{
			ID:        fmt.Sprintf("%s-other-%d", id, i),
			Text:      fmt.Sprintf("distractor %d for %s", i, id),
			LikeCount: 40 - i,
		})
	}
	return PoolItem{
		RoundID:         id,
		Day:             testDay,
		Theme:           "Parkour",
		VideoID:         "video-" + id,
		VideoLink:       videoWatchURL + "video-" + id,
		Title:           "clip " + id,
		DurationSeconds: durationSeconds,
		TopComment:      Comment{ID: id + "-top", Text: "the top comment", LikeCount: 50},
		OtherComments:   others,
	}
}

func seedPool(t *testing.T, service *Service, items ...PoolItem) {
	t.Helper()
	for _, item := range items {
		if err := service.saveRound(context.Background(), item); err != nil {
			t.Fatalf("failed to seed pool item %s: %v", item.RoundID, err)
		}
	}
}

// makeComments yields count valid comments with strictly descending likes.
func makeComments(prefix string, count, topLikes int) []Comment {
	comments := make([]Comment, 0, count)
	for i := 0; i < count; i++ {
		comments = append(comments, Comment{
			ID:        fmt.Sprintf("%s-c%d", prefix, i),
			Text:      fmt.Sprintf("comment %d on %s", i, prefix),
			LikeCount: topLikes - i,
		})
	}
	return comments
}
