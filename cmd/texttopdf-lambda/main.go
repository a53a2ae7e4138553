package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/tendant/texttopdf/pkg/texttopdf"
	"github.com/tendant/texttopdf/pkg/texttopdf/config"
)

// The converter, and with it the S3 client, is built on the first invocation
// and reused by every later invocation of this process. A failed build is
// retried by the next invocation.
var (
	setupMu   sync.Mutex
	converter *texttopdf.Converter

	buildConverter = setup
)

func setup() (*texttopdf.Converter, error) {
	cfg, err := config.Load(config.WithEnv(), config.WithStorageBackend("s3"))
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		return nil, err
	}

	logger := cfg.BuildLogger()
	slog.SetDefault(logger)

	c, err := cfg.BuildConverter(logger)
	if err != nil {
		logger.Error("Failed to build converter", "err", err)
		return nil, err
	}
	return c, nil
}

func getConverter() (*texttopdf.Converter, error) {
	setupMu.Lock()
	defer setupMu.Unlock()

	if converter != nil {
		return converter, nil
	}
	c, err := buildConverter()
	if err != nil {
		return nil, err
	}
	converter = c
	return c, nil
}

func handler(ctx context.Context, raw json.RawMessage) (texttopdf.Response, error) {
	c, err := getConverter()
	if err != nil {
		return texttopdf.NewErrorResponse(err), nil
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = texttopdf.WithInvocationID(ctx, lc.AwsRequestID)
	}
	return c.Handle(ctx, raw), nil
}

func main() {
	lambda.Start(handler)
}
