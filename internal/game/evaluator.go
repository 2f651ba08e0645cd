package game

import "sort"

// EvaluateGuess judges a guess against a cached round. A valid guess consumes
// the round: judging it again yields ErrRoundNotFound. An invalid guess leaves
// the round in place so the client can pick one of the actual options.
func (s *Service) EvaluateGuess(roundID, commentID string) (Verdict, error) {
	round, ok := s.sessions.get(roundID)
	if !ok {
		return Verdict{}, ErrRoundNotFound
	}

	shown := false
	for _, option := range round.Options {
		if option.ID == commentID {
			shown = true
			break
		}
	}
	if !shown {
		return Verdict{}, ErrInvalidGuess
	}

	// The take is the authoritative claim on the round: a concurrent guess
	// may have consumed it between the peek and here.
	round, ok = s.sessions.takeAndInvalidate(roundID)
	if !ok {
		return Verdict{}, ErrRoundNotFound
	}

	pickedTop := commentID == round.CorrectCommentID
	isCorrect := pickedTop
	if round.Mode == ModeDissident {
		isCorrect = !pickedTop
	}

	revealed := make([]RevealedOption, 0, len(round.Options))
	for _, option := range round.Options {
		revealed = append(revealed, RevealedOption{
			CommentID: option.ID,
			Text:      option.Text,
			Likes:     option.LikeCount,
			IsTop:     option.ID == round.CorrectCommentID,
		})
	}
	// Stable: like-count ties keep their shown order.
	sort.SliceStable(revealed, func(i, j int) bool {
		return revealed[i].Likes > revealed[j].Likes
	})

	return Verdict{
		IsCorrect:         isCorrect,
		SelectedCommentID: commentID,
		Options:           revealed,
	}, nil
}
