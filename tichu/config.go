package tichu

import "fmt"

type Config struct {
	// Score a team must reach (with a strict lead) to end the game
	// (0 => DefaultScoreLimit)
	ScoreLimit int

	// RNG seed (0 => time-based)
	Seed int64
}

func (c Config) validate() error {
	if c.ScoreLimit < 0 {
		return fmt.Errorf("ScoreLimit must be >= 0")
	}
	return nil
}

func (c Config) scoreLimit() int {
	if c.ScoreLimit == 0 {
		return DefaultScoreLimit
	}
	return c.ScoreLimit
}
