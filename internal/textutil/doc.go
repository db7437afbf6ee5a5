// Package textutil provides topic normalization and similarity scoring used
// by the reconciliation fallback matcher.
//
// Topics arrive from several ingestion channels with inconsistent casing,
// accents, and whitespace. Normalization folds those differences away before
// tokenization; similarity is plain cosine distance over term-frequency
// vectors, which is enough for the short strings meeting topics are.
package textutil
