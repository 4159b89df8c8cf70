package registry

import "time"

// SessionRecord captures the outcome of one review session. Skipped items do
// not appear here; precision only counts decided items.
type SessionRecord struct {
	StartedAt          time.Time `json:"startedAt"`
	Verified           int       `json:"verified"`
	Rejected           int       `json:"rejected"`
	Precision          float64   `json:"precision"`
	CumulativeVerified int       `json:"cumulativeVerified"`
	CumulativeReviewed int       `json:"cumulativeReviewed"`
}

// Stats accumulates decision counts across all sessions.
type Stats struct {
	VerifiedCount  int             `json:"verifiedCount"`
	RejectedCount  int             `json:"rejectedCount"`
	SessionHistory []SessionRecord `json:"sessionHistory"`
}

// Precision returns verified / (verified + rejected), or zero before any
// decision has been made.
func (s Stats) Precision() float64 {
	decided := s.VerifiedCount + s.RejectedCount
	if decided == 0 {
		return 0
	}
	return float64(s.VerifiedCount) / float64(decided)
}

// Precision computes session-local precision for the given counts.
func Precision(verified, rejected int) float64 {
	return Stats{VerifiedCount: verified, RejectedCount: rejected}.Precision()
}
