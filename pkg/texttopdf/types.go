package texttopdf

import (
	"fmt"
	"net/http"
)

const (
	// PDFMimeType is the content type set on every uploaded document
	PDFMimeType = "application/pdf"

	// SuccessBody is the fixed body of a successful Response
	SuccessBody = "File converted and uploaded successfully"
)

// ObjectRef identifies an object inside a bucket
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

// Page holds the rows placed on one page, top to bottom
type Page struct {
	Rows []string
}

// Document is the laid-out form of the source text
type Document struct {
	Pages []Page
}

// RowCount returns the number of rows across all pages
func (d Document) RowCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Rows)
	}
	return n
}

// Result describes a successful conversion
type Result struct {
	Source ObjectRef `json:"source"`
	Output ObjectRef `json:"output"`
	Pages  int       `json:"pages"`
	Rows   int       `json:"rows"`
	Size   int64     `json:"size"`
}

// Response is the invocation result returned to the trigger infrastructure
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// NewErrorResponse builds the 500 response for err
func NewErrorResponse(err error) Response {
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body:       "Error: " + err.Error(),
	}
}

// NewSuccessResponse builds the fixed 200 response
func NewSuccessResponse() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       SuccessBody,
	}
}
