package game

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

const (
	populateAttempts    = 5
	searchCandidateCap  = 50
	commentFetchCap     = 40
	minCommentsPerVideo = 8
	minDistractors      = 5
	maxDistractors      = 20

	videoWatchURL = "https://www.youtube.com/watch?v="
)

// PopulateDailyPool tops the stored pool for the given day up to targetSize
// rounds. A pool that ends below target after all attempts is a degraded but
// accepted state: it is logged, not surfaced as an error. Concurrent calls
// racing on the same day may slightly over-generate, which is fine; the
// failure to avoid is under-generation.
func (s *Service) PopulateDailyPool(ctx context.Context, day string, targetSize int) error {
	count, err := s.countForDay(ctx, day)
	if err != nil {
		s.logError(opPopulatePool, "count_failed", err, zap.String("day", day))
		return newServiceError(opPopulatePool, "count_failed", err)
	}

	needed := targetSize - int(count)
	if needed <= 0 {
		return nil
	}

	theme := DailyTheme(day)
	collected := 0
	for attempt := 1; attempt <= populateAttempts && collected < needed; attempt++ {
		batch, batchErr := s.generateRoundBatch(ctx, day, theme, needed-collected)
		for _, item := range batch {
			if err := s.saveRound(ctx, item); err != nil {
				s.logError(opPopulatePool, "save_failed", err,
					zap.String("day", day),
					zap.String("round_id", item.RoundID))
				return newServiceError(opPopulatePool, "save_failed", err)
			}
			collected++
		}
		if batchErr != nil {
			s.logger.Warn("round batch aborted",
				zap.String("day", day),
				zap.Int("attempt", attempt),
				zap.Error(batchErr))
		}
	}

	if collected < needed {
		s.logger.Warn("daily pool below target",
			zap.String("day", day),
			zap.Int("target", targetSize),
			zap.Int("generated", collected))
	}
	return nil
}

// generateRoundBatch performs exactly one upstream search and evaluates the
// candidates until batchSize rounds have been assembled. The single search
// call amortizes quota cost across many candidate evaluations. On a transport
// failure the rounds assembled so far are returned alongside the error so the
// caller can persist them before retrying.
func (s *Service) generateRoundBatch(ctx context.Context, day, theme string, batchSize int) ([]PoolItem, error) {
	videoIDs, err := s.source.SearchVideos(ctx, theme, searchCandidateCap)
	if err != nil {
		return nil, newServiceError(opGenerateBatch, "search_failed", err)
	}

	// Shuffle so the pool is not biased toward the search engine's ranking.
	s.shuffle(len(videoIDs), func(i, j int) {
		videoIDs[i], videoIDs[j] = videoIDs[j], videoIDs[i]
	})

	items := make([]PoolItem, 0, batchSize)
	for _, videoID := range videoIDs {
		if len(items) >= batchSize {
			break
		}

		details, err := s.source.VideoDetails(ctx, videoID)
		if err != nil {
			return items, newServiceError(opGenerateBatch, "details_failed", err)
		}
		if details == nil || details.DurationSeconds <= 0 {
			continue
		}

		comments, err := s.source.TopComments(ctx, videoID, commentFetchCap)
		if err != nil {
			return items, newServiceError(opGenerateBatch, "comments_failed", err)
		}
		if len(comments) < minCommentsPerVideo {
			continue
		}

		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].LikeCount > comments[j].LikeCount
		})

		top := comments[0]
		others := comments[1:]
		if len(others) < minDistractors {
			continue
		}
		if len(others) > maxDistractors {
			others = others[:maxDistractors]
		}

		roundID, err := s.ids.NewID()
		if err != nil {
			return items, newServiceError(opGenerateBatch, "id_generation_failed", err)
		}

		items = append(items, PoolItem{
			RoundID:         roundID,
			Day:             day,
			Theme:           theme,
			VideoID:         videoID,
			VideoLink:       videoWatchURL + videoID,
			Title:           details.Title,
			DurationSeconds: details.DurationSeconds,
			TopComment:      top,
			OtherComments:   append([]Comment(nil), others...),
		})
	}

	return items, nil
}
