package game

import (
	"hash/fnv"
	"math/rand"
)

var themes = []string{
	"Minecraft",
	"Pranks",
	"Fail Compilation",
	"Cooking Fails",
	"Street Interviews",
	"Dashcam Footage",
	"Parkour",
	"Magic Tricks",
	"Cute Animals",
	"Hydraulic Press",
}

// DailyTheme maps a calendar day (YYYY-MM-DD) to a theme. The same day always
// yields the same theme; no shared generator state is touched.
func DailyTheme(day string) string {
	hasher := fnv.New64a()
	hasher.Write([]byte(day))
	rng := rand.New(rand.NewSource(int64(hasher.Sum64())))
	return themes[rng.Intn(len(themes))]
}
