package game

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

const (
	singleOptionCount = 4
	pathPoolTarget    = 20
	pathLength        = 5
)

// pathOptionCounts is applied positionally to the duration-sorted stages:
// the longest video opens with the widest choice, the shortest closes with two.
var pathOptionCounts = [pathLength]int{4, 4, 3, 3, 2}

// MaterializeRound shapes a stored pool item into a playable round without
// mutating the stored copy, and registers the answer key in the session cache.
func (s *Service) MaterializeRound(item PoolItem, optionCount int, mode Mode) PlayableRound {
	distractorCount := optionCount - 1
	if distractorCount > len(item.OtherComments) {
		distractorCount = len(item.OtherComments)
	}

	options := make([]Comment, 0, distractorCount+1)
	options = append(options, item.TopComment)
	for _, idx := range s.perm(len(item.OtherComments))[:distractorCount] {
		options = append(options, item.OtherComments[idx])
	}
	// Order must not leak which option is correct.
	s.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	s.sessions.put(SessionRound{
		RoundID:          item.RoundID,
		Mode:             mode,
		VideoID:          item.VideoID,
		VideoLink:        item.VideoLink,
		CorrectCommentID: item.TopComment.ID,
		Options:          options,
	})

	payload := PlayableRound{
		RoundID:         item.RoundID,
		VideoLink:       item.VideoLink,
		DurationSeconds: item.DurationSeconds,
		Options:         make([]RoundOption, 0, len(options)),
	}
	for _, option := range options {
		payload.Options = append(payload.Options, RoundOption{
			CommentID: option.ID,
			Text:      option.Text,
		})
	}
	return payload
}

// Round serves one baseline round from today's pool, topping the pool up to
// the configured target first.
func (s *Service) Round(ctx context.Context) (PlayableRound, error) {
	day := s.today()
	if err := s.PopulateDailyPool(ctx, day, s.poolTarget); err != nil {
		return PlayableRound{}, err
	}

	items, err := s.roundsForDay(ctx, day, "")
	if err != nil {
		s.logError(opRound, "pool_read_failed", err, zap.String("day", day))
		return PlayableRound{}, newServiceError(opRound, "pool_read_failed", err)
	}
	if len(items) == 0 {
		return PlayableRound{}, ErrPoolExhausted
	}

	item := items[s.intn(len(items))]
	return s.MaterializeRound(item, singleOptionCount, ModeSingle), nil
}

// BuildDailyPath assembles the five-stage dissident path: five distinct pool
// items, longest video first, option counts shrinking stage by stage.
func (s *Service) BuildDailyPath(ctx context.Context) ([]PlayableRound, error) {
	day := s.today()
	if err := s.PopulateDailyPool(ctx, day, pathPoolTarget); err != nil {
		return nil, err
	}

	items, err := s.roundsForDay(ctx, day, "")
	if err != nil {
		s.logError(opDailyPath, "pool_read_failed", err, zap.String("day", day))
		return nil, newServiceError(opDailyPath, "pool_read_failed", err)
	}
	if len(items) < pathLength {
		return nil, ErrPoolExhausted
	}

	picks := make([]PoolItem, 0, pathLength)
	for _, idx := range s.perm(len(items))[:pathLength] {
		picks = append(picks, items[idx])
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].DurationSeconds > picks[j].DurationSeconds
	})

	stages := make([]PlayableRound, 0, pathLength)
	for i, item := range picks {
		stages = append(stages, s.MaterializeRound(item, pathOptionCounts[i], ModeDissident))
	}
	return stages, nil
}
