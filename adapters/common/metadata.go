// Package common provides shared adapter utilities for goIDVerify.
//
// Concurrency: All exported types and functions are safe for concurrent use.
package common

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/keksclan/goIDVerify/idverify"
)

// RequiredMetadata defines mandatory metadata keys that must be present
// in a request before authentication proceeds.
type RequiredMetadata struct {
	// Keys lists required metadata/header names.
	// For HTTP headers, comparison is case-insensitive.
	// For gRPC metadata, keys are treated as lower-case per gRPC conventions.
	Keys []string

	// Enabled controls whether metadata validation is active.
	// If false, Validate always returns nil.
	Enabled bool
}

// MetadataExtractor abstracts reading metadata from different transports.
type MetadataExtractor interface {
	// Get returns the value for the given key and whether it was found.
	Get(key string) (string, bool)
}

// Validate checks that all required keys are present and non-empty.
// Returns idverify.ErrMissingRequiredMetadata wrapping the missing key name on failure.
func (r RequiredMetadata) Validate(ex MetadataExtractor) error {
	if !r.Enabled || len(r.Keys) == 0 {
		return nil
	}
	for _, key := range r.Keys {
		val, ok := ex.Get(key)
		if !ok || strings.TrimSpace(val) == "" {
			return fmt.Errorf("%w: %s", idverify.ErrMissingRequiredMetadata, key)
		}
	}
	return nil
}

// ExtractMetadataMap extracts the values of the required keys into a map.
// Only non-empty values are included. Keys are normalized to lower-case.
func (r RequiredMetadata) ExtractMetadataMap(ex MetadataExtractor) map[string]string {
	if !r.Enabled || len(r.Keys) == 0 {
		return nil
	}
	m := make(map[string]string, len(r.Keys))
	for _, key := range r.Keys {
		if val, ok := ex.Get(key); ok && strings.TrimSpace(val) != "" {
			m[strings.ToLower(key)] = val
		}
	}
	return m
}

// AdapterOptions holds common adapter configuration.
type AdapterOptions struct {
	RequiredMeta   RequiredMetadata
	AttachMetadata bool
}

// Option configures an adapter.
type Option func(*AdapterOptions)

// WithRequiredMetadata specifies header or metadata keys that must be present
// before authentication proceeds.
func WithRequiredMetadata(keys ...string) Option {
	return func(o *AdapterOptions) {
		o.RequiredMeta.Keys = keys
		o.RequiredMeta.Enabled = true
	}
}

// WithRequiredMetadataEnabled toggles required metadata validation on or off.
func WithRequiredMetadataEnabled(enabled bool) Option {
	return func(o *AdapterOptions) {
		o.RequiredMeta.Enabled = enabled
	}
}

// WithAttachMetadata copies the required metadata values into Identity.Metadata.
func WithAttachMetadata(attach bool) Option {
	return func(o *AdapterOptions) {
		o.AttachMetadata = attach
	}
}

func BuildOptions(opts []Option) AdapterOptions {
	var o AdapterOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// HTTPHeader adapts net/http headers to the MetadataExtractor interface.
type HTTPHeader http.Header

func (h HTTPHeader) Get(key string) (string, bool) {
	val := http.Header(h).Get(key)
	if val == "" {
		return "", false
	}
	return val, true
}
