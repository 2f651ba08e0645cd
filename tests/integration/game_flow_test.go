package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/commentguesser/backend/internal/database"
	"github.com/commentguesser/backend/internal/game"
	"github.com/commentguesser/backend/internal/server"
	"github.com/commentguesser/backend/internal/youtube"
	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json"

// fakeYouTube emulates the three upstream endpoints with eight viable videos.
func fakeYouTube(t *testing.T) *httptest.Server {
	t.Helper()

	videoIDs := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		videoIDs = append(videoIDs, fmt.Sprintf("vid-%d", i))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		type searchItem struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		}
		items := make([]searchItem, 0, len(videoIDs))
		for _, id := range videoIDs {
			var item searchItem
			item.ID.VideoID = id
			items = append(items, item)
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items}) //nolint:errcheck
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		body := fmt.Sprintf(`{"items":[{"snippet":{"title":"clip %s"},"contentDetails":{"duration":"PT1M5S"},"status":{"embeddable":true,"uploadStatus":"processed"}}]}`, r.URL.Query().Get("id"))
		w.Write([]byte(body)) //nolint:errcheck
	})
	mux.HandleFunc("/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		videoID := r.URL.Query().Get("videoId")
		items := make([]map[string]any, 0, 10)
		for i := 0; i < 10; i++ {
			items = append(items, map[string]any{
				"snippet": map[string]any{
					"topLevelComment": map[string]any{
						"id": fmt.Sprintf("%s-c%d", videoID, i),
						"snippet": map[string]any{
							"textDisplay": fmt.Sprintf("comment %d on %s", i, videoID),
							"likeCount":   100 - i,
						},
					},
				},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items}) //nolint:errcheck
	})

	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)
	return upstream
}

func TestGameRoundTripAgainstFakeUpstream(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	upstream := fakeYouTube(testContext)

	db, err := database.Open(filepath.Join(testContext.TempDir(), "game.db"), nil)
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}

	source, err := youtube.NewClient(youtube.ClientConfig{
		APIKey:  "integration-key",
		BaseURL: upstream.URL,
	})
	if err != nil {
		testContext.Fatalf("failed to build youtube client: %v", err)
	}

	gameService, err := game.NewService(game.ServiceConfig{
		Database:   db,
		Source:     source,
		IDProvider: game.NewUUIDProvider(),
		PoolTarget: 8,
	})
	if err != nil {
		testContext.Fatalf("failed to build game service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{GameService: gameService})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	// Fetch a round.
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/round", http.NoBody))
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("GET /round: expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var round game.PlayableRound
	if err := json.Unmarshal(recorder.Body.Bytes(), &round); err != nil {
		testContext.Fatalf("failed to decode round: %v", err)
	}
	if len(round.Options) != 4 {
		testContext.Fatalf("expected 4 options, got %d", len(round.Options))
	}

	// Submit a guess for the first shown option.
	guess := fmt.Sprintf(`{"roundId":%q,"commentId":%q}`, round.RoundID, round.Options[0].CommentID)
	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/guess", bytes.NewReader([]byte(guess)))
	request.Header.Set("Content-Type", jsonContentType)
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("POST /guess: expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var verdict game.Verdict
	if err := json.Unmarshal(recorder.Body.Bytes(), &verdict); err != nil {
		testContext.Fatalf("failed to decode verdict: %v", err)
	}
	if len(verdict.Options) != 4 {
		testContext.Fatalf("reveal must cover all 4 options, got %d", len(verdict.Options))
	}
	if verdict.SelectedCommentID != round.Options[0].CommentID {
		testContext.Fatalf("unexpected selected comment: %q", verdict.SelectedCommentID)
	}

	// The round is consumed; a second judgment 404s.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/guess", bytes.NewReader([]byte(guess)))
	request.Header.Set("Content-Type", jsonContentType)
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNotFound {
		testContext.Fatalf("expected 404 on a consumed round, got %d", recorder.Code)
	}

	// The daily path yields five stages with the fixed option schedule.
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/daily-path", http.NoBody))
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("GET /daily-path: expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var path struct {
		Stages []game.PlayableRound `json:"stages"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &path); err != nil {
		testContext.Fatalf("failed to decode daily path: %v", err)
	}
	if len(path.Stages) != 5 {
		testContext.Fatalf("expected 5 stages, got %d", len(path.Stages))
	}
	expectedCounts := []int{4, 4, 3, 3, 2}
	for i, stage := range path.Stages {
		if len(stage.Options) != expectedCounts[i] {
			testContext.Fatalf("stage %d: expected %d options, got %d", i+1, expectedCounts[i], len(stage.Options))
		}
	}
}
