package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/commentguesser/backend/internal/game"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMissingGameService = errors.New("game service dependency required")

// Dependencies collects the collaborators the HTTP layer needs.
type Dependencies struct {
	GameService *game.Service
	Logger      *zap.Logger
}

// NewHTTPHandler wires the game endpoints into a gin router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.GameService == nil {
		return nil, errMissingGameService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		game:   deps.GameService,
		logger: logger,
	}

	router.GET("/", handler.handleRoot)
	router.GET("/round", handler.handleRound)
	router.GET("/daily-path", handler.handleDailyPath)
	router.POST("/guess", handler.handleGuess)

	return router, nil
}

type httpHandler struct {
	game   *game.Service
	logger *zap.Logger
}

func (h *httpHandler) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "commentguesser-api"})
}

func (h *httpHandler) handleRound(c *gin.Context) {
	round, err := h.game.Round(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to serve round", zap.Error(err))
		code := "round_failed"
		if errors.Is(err, game.ErrPoolExhausted) {
			code = "pool_exhausted"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": code})
		return
	}
	c.JSON(http.StatusOK, round)
}

type dailyPathResponsePayload struct {
	Stages []game.PlayableRound `json:"stages"`
}

func (h *httpHandler) handleDailyPath(c *gin.Context) {
	stages, err := h.game.BuildDailyPath(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build daily path", zap.Error(err))
		code := "daily_path_failed"
		if errors.Is(err, game.ErrPoolExhausted) {
			code = "pool_exhausted"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": code})
		return
	}
	c.JSON(http.StatusOK, dailyPathResponsePayload{Stages: stages})
}

type guessRequestPayload struct {
	RoundID   string `json:"roundId"`
	CommentID string `json:"commentId"`
}

func (h *httpHandler) handleGuess(c *gin.Context) {
	var request guessRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil ||
		strings.TrimSpace(request.RoundID) == "" ||
		strings.TrimSpace(request.CommentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	verdict, err := h.game.EvaluateGuess(request.RoundID, request.CommentID)
	switch {
	case errors.Is(err, game.ErrRoundNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "round_not_found"})
	case errors.Is(err, game.ErrInvalidGuess):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_guess"})
	case err != nil:
		h.logger.Error("failed to evaluate guess", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "guess_failed"})
	default:
		c.JSON(http.StatusOK, verdict)
	}
}
