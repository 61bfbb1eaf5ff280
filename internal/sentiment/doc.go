// Package sentiment wraps the VADER sentiment analyzer behind the engine's
// SentimentScorer port. Scoring never fails: empty or unscorable text yields
// the neutral record. An optional Redis cache memoizes compound scores so
// repeated aggregation over the same comments does not re-run the analyzer.
package sentiment
