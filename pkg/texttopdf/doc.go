// Package texttopdf converts plain-text objects into paginated PDF documents
// stored next to the original object.
//
// A Converter is invoked once per bucket notification. It parses the event,
// downloads the referenced object through a Buckets implementation, decodes
// the bytes as UTF-8, lays every line out as one fixed-height row on A4 pages
// and uploads the rendered PDF under the derived ".pdf" key.
//
// Storage backends (memory, filesystem, S3) live under the storage
// subpackages; the HTTP webhook surface lives under api.
//
// Errors
//
// Every failure is reported as an *Error tagged with one Kind. Handle maps any
// error to a 500 Response and success to a 200 Response, so callers that only
// need the invocation result never inspect the kind.
package texttopdf
