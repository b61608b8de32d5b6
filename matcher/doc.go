// Package matcher finds exact and near duplicates among fingerprinted images.
//
// A run builds one FingerprintMap, then runs two independent passes over it:
// FindDuplicates, a single pass keyed on the whole fingerprint, and
// FindSimilar, which evaluates every unordered pair produced by
// EnumeratePairs on a bounded worker pool and keeps the pairs whose Hamming
// distance stays within DiffLimit.
package matcher
