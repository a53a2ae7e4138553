package texttopdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const invocationIDKey contextKey = "invocation_id"

// WithInvocationID attaches the host's request identifier to ctx
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey, id)
}

// InvocationID returns the identifier stored by WithInvocationID, or ""
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey).(string)
	return id
}

// Converter runs the text to PDF pipeline for one notification at a time.
// A Converter holds no per-invocation state and may serve concurrent calls.
type Converter struct {
	buckets  Buckets
	renderer *Renderer
	logger   *slog.Logger
}

// Option represents a functional option for configuring the converter
type Option func(*Converter)

// WithBuckets sets the storage the converter reads from and writes to
func WithBuckets(buckets Buckets) Option {
	return func(c *Converter) {
		c.buckets = buckets
	}
}

// WithRenderer sets the PDF renderer
func WithRenderer(renderer *Renderer) Option {
	return func(c *Converter) {
		c.renderer = renderer
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// New creates a new converter with the given options
func New(options ...Option) (*Converter, error) {
	c := &Converter{}
	for _, option := range options {
		option(c)
	}

	if c.buckets == nil {
		return nil, errors.New("buckets are required")
	}
	if c.renderer == nil {
		c.renderer = NewRenderer()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Handle parses a raw notification, converts the referenced object and
// returns the invocation result. It never returns an error: every failure is
// logged and reported as a 500 Response.
func (c *Converter) Handle(ctx context.Context, raw []byte) Response {
	log := c.invocationLogger(ctx)
	log.Debug("Received event", "event", string(raw))

	ref, err := ParseEvent(raw)
	if err != nil {
		log.Error("Failed to parse event", "error", err)
		return NewErrorResponse(err)
	}

	return c.respond(ctx, log, ref)
}

// HandleEvent is Handle for an already decoded notification
func (c *Converter) HandleEvent(ctx context.Context, event Event) Response {
	log := c.invocationLogger(ctx)

	ref, err := RefFromEvent(event)
	if err != nil {
		log.Error("Failed to parse event", "error", err)
		return NewErrorResponse(err)
	}

	return c.respond(ctx, log, ref)
}

func (c *Converter) respond(ctx context.Context, log *slog.Logger, ref ObjectRef) Response {
	log.Info("Bucket name", "bucket", ref.Bucket)
	log.Info("Object key", "key", ref.Key)

	result, err := c.convert(ctx, log, ref)
	if err != nil {
		log.Error("Conversion failed", "kind", KindOf(err).String(), "error", err)
		return NewErrorResponse(err)
	}

	log.Info("PDF uploaded successfully",
		"output_key", result.Output.Key,
		"pages", result.Pages,
		"rows", result.Rows,
		"size", result.Size,
	)
	return NewSuccessResponse()
}

// Convert downloads ref, renders it and uploads the PDF under the derived key
func (c *Converter) Convert(ctx context.Context, ref ObjectRef) (*Result, error) {
	return c.convert(ctx, c.invocationLogger(ctx), ref)
}

func (c *Converter) convert(ctx context.Context, log *slog.Logger, ref ObjectRef) (*Result, error) {
	store, err := c.buckets.Bucket(ctx, ref.Bucket)
	if err != nil {
		return nil, newError(KindRetrieval, "open bucket", ref, err)
	}

	log.Info("Starting download")
	data, err := download(ctx, store, ref.Key)
	if err != nil {
		return nil, newError(KindRetrieval, "download", ref, err)
	}

	text, err := DecodeText(data)
	if err != nil {
		return nil, newError(KindDecode, "decode", ref, err)
	}

	log.Info("Starting conversion", "bytes", len(data))
	doc, pdf, err := c.render(ref, text)
	if err != nil {
		if KindOf(err) == KindRender {
			return nil, err
		}
		return nil, newError(KindSerialize, "serialize", ref, err)
	}
	log.Info("Conversion completed", "pages", len(doc.Pages))

	output := ObjectRef{Bucket: ref.Bucket, Key: DeriveOutputKey(ref.Key)}
	log.Info("Starting upload", "output_key", output.Key)
	err = store.UploadWithParams(ctx, bytes.NewReader(pdf), UploadParams{
		ObjectKey:     output.Key,
		MimeType:      PDFMimeType,
		ContentLength: int64(len(pdf)),
	})
	if err != nil {
		return nil, newError(KindStore, "upload", output, err)
	}

	return &Result{
		Source: ref,
		Output: output,
		Pages:  len(doc.Pages),
		Rows:   doc.RowCount(),
		Size:   int64(len(pdf)),
	}, nil
}

// render lays out and serializes text. A panic in either step is reported as
// a KindRender error; serialization failures are returned unwrapped.
func (c *Converter) render(ref ObjectRef, text string) (doc Document, pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindRender, "render", ref, fmt.Errorf("panic: %v", r))
		}
	}()

	doc = Layout(SplitLines(text))
	pdf, err = c.renderer.Render(doc)
	return doc, pdf, err
}

func download(ctx context.Context, store BlobStore, key string) ([]byte, error) {
	reader, err := store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

func (c *Converter) invocationLogger(ctx context.Context) *slog.Logger {
	id := InvocationID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	return c.logger.With("invocation_id", id)
}
