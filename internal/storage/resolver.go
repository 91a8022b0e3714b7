// Package storage maps document and report locations onto ObjectStorage backends.
//
// A location is a local path, s3://bucket/key or gs://bucket/object. Backends are
// created on first use so a run that only touches local files never loads cloud
// credentials.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"ordercheck/internal/domain"
	"ordercheck/internal/port"
)

// ErrUnsupportedLocation is returned for an unknown scheme or a malformed bucket URL.
var ErrUnsupportedLocation = domain.ErrUnsupportedLocation

// Scheme names.
const (
	SchemeLocal = "file"
	SchemeS3    = "s3"
	SchemeGCS   = "gs"
)

// Location is a parsed document or report location.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Scheme == SchemeLocal {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// Name returns the last path element, used as the document name.
func (l Location) Name() string {
	if i := strings.LastIndexAny(l.Key, `/\`); i >= 0 {
		return l.Key[i+1:]
	}
	return l.Key
}

// ParseLocation parses raw. Anything without a scheme is a local path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty location", ErrUnsupportedLocation)
	}
	scheme, rest, found := strings.Cut(raw, "://")
	if !found {
		return Location{Scheme: SchemeLocal, Key: raw}, nil
	}

	switch scheme {
	case SchemeLocal:
		if rest == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedLocation, raw)
		}
		return Location{Scheme: SchemeLocal, Key: rest}, nil
	case SchemeS3, SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %s needs a bucket and a key", ErrUnsupportedLocation, raw)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedLocation, scheme)
	}
}

// Opener creates the backend for one scheme.
type Opener func(ctx context.Context) (port.ObjectStorage, error)

// Resolver reads and writes locations through per-scheme backends.
type Resolver struct {
	mu      sync.Mutex
	openers map[string]Opener
	stores  map[string]port.ObjectStorage
}

// NewResolver creates a Resolver with no backends.
func NewResolver() *Resolver {
	return &Resolver{
		openers: make(map[string]Opener),
		stores:  make(map[string]port.ObjectStorage),
	}
}

// Register sets the opener for scheme, replacing any earlier one.
func (r *Resolver) Register(scheme string, open Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[scheme] = open
	delete(r.stores, scheme)
}

func (r *Resolver) store(ctx context.Context, scheme string) (port.ObjectStorage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[scheme]; ok {
		return s, nil
	}
	open, ok := r.openers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no backend for scheme %q", ErrUnsupportedLocation, scheme)
	}
	s, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", scheme, err)
	}
	r.stores[scheme] = s
	return s, nil
}

// Read returns the bytes at raw.
func (r *Resolver) Read(ctx context.Context, raw string) ([]byte, Location, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, Location{}, err
	}
	s, err := r.store(ctx, loc.Scheme)
	if err != nil {
		return nil, loc, err
	}
	data, err := s.Download(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, loc, err
	}
	return data, loc, nil
}

// Write stores body at raw and returns the backend's location for it.
func (r *Resolver) Write(ctx context.Context, raw string, body []byte, contentType string) (string, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return "", err
	}
	s, err := r.store(ctx, loc.Scheme)
	if err != nil {
		return "", err
	}
	out, err := s.Upload(ctx, port.UploadInput{
		Bucket:      loc.Bucket,
		Key:         loc.Key,
		Body:        bytes.NewReader(body),
		ContentType: contentType,
		Size:        int64(len(body)),
	})
	if err != nil {
		return "", err
	}
	if out.Location == "" {
		return loc.String(), nil
	}
	return out.Location, nil
}
