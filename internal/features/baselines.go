package features

import "strings"

// sportBaselines are the neutral per-game score defaults substituted when a
// team has no scoring history
var sportBaselines = map[string]float64{
	"basketball":       105,
	"football":         22,
	"americanfootball": 22,
	"baseball":         4.5,
	"hockey":           3,
	"icehockey":        3,
	"soccer":           1.3,
}

const genericBaseline = 50

// baselineScore returns the neutral scoring average for a sport. Sport keys
// like "basketball_nba" match on their leading segment.
func baselineScore(sport string) float64 {
	key := strings.ToLower(sport)
	if idx := strings.IndexByte(key, '_'); idx > 0 {
		key = key[:idx]
	}
	if baseline, ok := sportBaselines[key]; ok {
		return baseline
	}
	return genericBaseline
}
