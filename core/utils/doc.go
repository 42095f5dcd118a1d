// Package utils contains small string helpers shared by the extractor and the reconcilers.
package utils
