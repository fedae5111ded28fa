package extract

import "InfluencerOps/internal/domain"

// Score attaches quality, confidence, and reliability to a normalized
// record. Model-supplied values are trusted but clamped to [0,1]; absent
// values default to 0.5 and reliability to medium. Deterministic, no I/O.
func Score(rec domain.MetricsRecord, c Candidate) domain.MetricsRecord {
	if !rec.HasMetrics {
		return rec
	}

	if q := ParseDecimal(c.QualityScore); q != nil {
		rec.QualityScore = clamp01(*q)
	} else {
		rec.QualityScore = 0.5
	}

	if conf := ParseDecimal(c.Confidence); conf != nil {
		rec.Confidence = clamp01(*conf)
	} else {
		rec.Confidence = 0.5
	}

	rec.Reliability = domain.NormalizeReliability(c.Reliability)
	return rec
}
