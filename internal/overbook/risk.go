package overbook

import (
	"math/rand/v2"
	"regexp"
	"time"
)

// RiskScore is a no-show risk classification with its confidence.
type RiskScore struct {
	Risk       Risk
	Confidence float64
}

var (
	reliableDepartments = regexp.MustCompile(`(?i)derm|orth`)
	volatileDepartments = regexp.MustCompile(`(?i)emerg|onco`)
)

// Scorer classifies a slot's no-show risk from its department and time of
// day. A small jitter term keeps identical slot shapes from scoring
// identically; the source is injectable so tests can pin it.
type Scorer struct {
	jitter func() float64
}

// NewScorer builds a scorer. A nil jitter source means real entropy.
func NewScorer(jitter func() float64) *Scorer {
	if jitter == nil {
		jitter = rand.Float64
	}
	return &Scorer{jitter: jitter}
}

// Score is deterministic apart from the jitter term.
func (s *Scorer) Score(department string, at time.Time) RiskScore {
	hour := at.Hour()

	base := 0.3 // base show probability
	if hour >= 7 && hour <= 10 {
		base += 0.2 // morning clinics run smoothly
	}
	if hour >= 17 || hour <= 8 {
		base -= 0.05 // early and late slots skew toward no-shows
	}
	if reliableDepartments.MatchString(department) {
		base += 0.05
	}
	if volatileDepartments.MatchString(department) {
		base -= 0.05
	}

	confidence := base + (s.jitter()-0.5)*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	if confidence < 0.4 {
		confidence = 0.4
	}

	risk := RiskHigh
	switch {
	case confidence > 0.55:
		risk = RiskLow
	case confidence > 0.48:
		risk = RiskMedium
	}

	return RiskScore{Risk: risk, Confidence: confidence}
}
