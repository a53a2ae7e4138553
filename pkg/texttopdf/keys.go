package texttopdf

import "strings"

const (
	sourceSuffix = ".txt"
	outputSuffix = ".pdf"
)

// DeriveOutputKey replaces the first ".txt" in key with ".pdf".
// A key without ".txt" is returned unchanged, so the output overwrites it.
func DeriveOutputKey(key string) string {
	return strings.Replace(key, sourceSuffix, outputSuffix, 1)
}
