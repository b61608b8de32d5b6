// Package imageprocessor loads images from disk and computes their average-hash
// fingerprints.
package imageprocessor
