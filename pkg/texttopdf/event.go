package texttopdf

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// Event is the bucket notification that triggers a conversion
type Event = events.S3Event

// ParseEvent extracts the bucket and the decoded object key from the first
// record of a raw S3 notification.
func ParseEvent(raw []byte) (ObjectRef, error) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return ObjectRef{}, newError(KindMalformedEvent, "parse event", ObjectRef{}, err)
	}
	return RefFromEvent(event)
}

// RefFromEvent extracts the source object of an already decoded notification.
// Only the first record is considered.
func RefFromEvent(event Event) (ObjectRef, error) {
	if len(event.Records) == 0 {
		return ObjectRef{}, newError(KindMalformedEvent, "parse event", ObjectRef{}, errors.New("no records"))
	}

	entity := event.Records[0].S3
	if entity.Bucket.Name == "" {
		return ObjectRef{}, newError(KindMalformedEvent, "parse event", ObjectRef{}, errors.New("missing s3.bucket.name"))
	}
	if entity.Object.Key == "" {
		return ObjectRef{}, newError(KindMalformedEvent, "parse event", ObjectRef{}, errors.New("missing s3.object.key"))
	}

	// Keys arrive form-encoded: '+' is a space and %XX an escaped byte.
	key, err := url.QueryUnescape(entity.Object.Key)
	if err != nil {
		return ObjectRef{}, newError(KindMalformedEvent, "parse event", ObjectRef{}, fmt.Errorf("decode object key %q: %w", entity.Object.Key, err))
	}

	return ObjectRef{Bucket: entity.Bucket.Name, Key: key}, nil
}

// NewEvent builds a single-record notification for bucket and key.
// The key is encoded the way S3 encodes it in notifications.
func NewEvent(bucket, key string) Event {
	return Event{
		Records: []events.S3EventRecord{
			{
				EventSource: "aws:s3",
				EventName:   "ObjectCreated:Put",
				S3: events.S3Entity{
					Bucket: events.S3Bucket{Name: bucket},
					Object: events.S3Object{Key: url.QueryEscape(key)},
				},
			},
		},
	}
}
