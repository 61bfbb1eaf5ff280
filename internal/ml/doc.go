// Package ml implements the offline training pipeline and the model bundle
// consumed by the scoring engine.
//
// A bundle binds fitted models, the fitted standardization transform, the
// exact feature-column order seen at fit time, and (for the winner variant)
// the candidate index. Bundles are persisted as a JSON artifact with a sidecar
// metadata file, loaded once at process start, and treated as immutable
// shared-read state for the process lifetime.
//
// No ML framework is involved: the model families are small, fully seeded
// implementations on gonum numerics, so re-running training over the same
// data with the same seed reproduces identical metrics bit for bit.
package ml
