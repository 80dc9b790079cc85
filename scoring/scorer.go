package scoring

import (
	"math"
	"strings"
	"time"

	"clipbot/config"
	"clipbot/types"
)

// Scorer assigns a virality score to a single candidate. It is a pure
// function of the candidate, its statistics and the supplied clock; it never
// performs I/O.
type Scorer struct {
	weights     config.Weights
	keywords    []string
	keywordCap  int
	scoreMax    float64
	minAgeHours float64
	// missingAgeHours is the assumed age when a candidate has no usable
	// publish timestamp. An old assumption penalizes malformed data instead
	// of handing it the maximum velocity term.
	missingAgeHours float64
}

// NewScorer builds a scorer from the scoring configuration
func NewScorer(cfg config.ScoringConfig) *Scorer {
	keywords := make([]string, 0, len(cfg.HotKeywords))
	for _, k := range cfg.HotKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	return &Scorer{
		weights:         cfg.Weights,
		keywords:        keywords,
		keywordCap:      cfg.KeywordCap,
		scoreMax:        cfg.ScoreMax,
		minAgeHours:     cfg.MinAgeHours,
		missingAgeHours: cfg.MissingPublishAgeHours,
	}
}

// Score combines raw popularity, velocity, engagement rate and keyword
// relevance into a single clamped value. Zero statistics are fine: the
// candidate can still score through keyword hits.
func (s *Scorer) Score(c types.Candidate, stats types.Statistics, now time.Time) float64 {
	ageHours := s.ageHours(c.PublishedAt, now)

	views := float64(stats.Views)
	likes := float64(stats.Likes)
	comments := float64(stats.Comments)

	viewsTerm := math.Log10(views+1) * s.weights.Views
	velocityTerm := math.Log10(views/ageHours+1) * s.weights.Velocity

	var likeRatio, commentRatio float64
	if views > 0 {
		likeRatio = likes / views
		commentRatio = comments / views
	}
	engagementTerm := likeRatio*s.weights.LikeRatio + commentRatio*s.weights.CommentRatio

	hits := s.keywordHits(c.Title + " " + c.Description)
	keywordTerm := float64(hits) * s.weights.Keyword

	score := viewsTerm + velocityTerm + engagementTerm + keywordTerm
	return clamp(score, 0, s.scoreMax)
}

// ScoreAll scores a batch against a single clock reading so one run is
// internally consistent.
func (s *Scorer) ScoreAll(candidates []types.Candidate, stats map[string]types.Statistics, now time.Time) []types.ScoredCandidate {
	scored := make([]types.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		st, ok := stats[c.ID]
		if !ok {
			// No statistics means the candidate cannot be scored this run.
			continue
		}
		scored = append(scored, types.ScoredCandidate{
			Candidate:  c,
			Statistics: st,
			Score:      s.Score(c, st, now),
		})
	}
	return scored
}

func (s *Scorer) ageHours(publishedAt, now time.Time) float64 {
	if publishedAt.IsZero() || publishedAt.After(now) {
		return math.Max(s.missingAgeHours, s.minAgeHours)
	}
	age := now.Sub(publishedAt).Hours()
	if age < s.minAgeHours {
		return s.minAgeHours
	}
	return age
}

func (s *Scorer) keywordHits(text string) int {
	text = strings.ToLower(text)
	hits := 0
	for _, k := range s.keywords {
		if strings.Contains(text, k) {
			hits++
			if hits >= s.keywordCap {
				return s.keywordCap
			}
		}
	}
	return hits
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
