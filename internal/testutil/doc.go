// Package testutil provides numeric and image comparison helpers shared
// across this module's test files: tolerance-based float/matrix
// equality assertions, and golden-image similarity comparison for
// mosaic output.
package testutil
