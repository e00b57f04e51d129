package models

// MatchResult pairs a stored deal with the score it earned against a user
// profile. Results are computed at request time and never persisted.
type MatchResult struct {
	OfferID      string   `json:"offer_id"`
	MatchScore   float64  `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
	Deal         Deal     `json:"deal"`
}
