package source_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/JorgeRod2594/feature-hub/pkg/hubtest"
	"github.com/JorgeRod2594/feature-hub/pkg/source"
)

type stubObjectStore struct {
	objects map[string][]byte // "bucket/key" -> body
	calls   []string
}

func (s *stubObjectStore) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	addr := *in.Bucket + "/" + *in.Key
	s.calls = append(s.calls, addr)
	data, ok := s.objects[addr]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func newObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: map[string][]byte{
		"modules/apps/checkout.json": []byte(`{"name":"checkout","markup":"<div>Checkout</div>"}`),
		"other/apps/nav.json":        []byte(`{"name":"nav","markup":"<nav></nav>"}`),
	}}
}

func TestS3_LoadsFromConfiguredBucket(t *testing.T) {
	store := newObjectStore()
	s := source.NewS3(store, "modules", source.NewDecoder())

	def, err := s.LoadModule(context.Background(), "apps/checkout.json")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if def.Name != "checkout" {
		t.Errorf("expected name checkout, got %s", def.Name)
	}
	hubtest.ExpectContains(t, renderDefinition(t, def), "<div>Checkout</div>")
}

func TestS3_FullObjectURLOverridesBucket(t *testing.T) {
	store := newObjectStore()
	s := source.NewS3(store, "modules", source.NewDecoder())

	def, err := s.LoadModule(context.Background(), "s3://other/apps/nav.json")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if def.Name != "nav" {
		t.Errorf("expected name nav, got %s", def.Name)
	}
	if got := store.calls[0]; got != "other/apps/nav.json" {
		t.Errorf("expected fetch of other/apps/nav.json, got %s", got)
	}
}

func TestS3_NoSuchKeyIsNotFound(t *testing.T) {
	s := source.NewS3(newObjectStore(), "modules", source.NewDecoder())

	_, err := s.LoadModule(context.Background(), "apps/missing.json")
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestS3_NoBucket(t *testing.T) {
	s := source.NewS3(newObjectStore(), "", source.NewDecoder())

	_, err := s.LoadModule(context.Background(), "apps/checkout.json")
	if !errors.Is(err, source.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
