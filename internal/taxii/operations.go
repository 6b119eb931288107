package taxii

import (
	"context"
	"encoding/json"
	"fmt"
)

// Typed wrappers over Do for callers that want decoded documents.

func (d *Dispatcher) Discover(ctx context.Context, req *ProxyRequest) (*Discovery, error) {
	return doTyped[Discovery](ctx, d, OpDiscover, req)
}

func (d *Dispatcher) GetAPIRoot(ctx context.Context, req *ProxyRequest) (*APIRoot, error) {
	return doTyped[APIRoot](ctx, d, OpGetAPIRoot, req)
}

func (d *Dispatcher) ListCollections(ctx context.Context, req *ProxyRequest) (*Collections, error) {
	return doTyped[Collections](ctx, d, OpListCollections, req)
}

func (d *Dispatcher) ListObjects(ctx context.Context, req *ProxyRequest) (*Envelope, error) {
	return doTyped[Envelope](ctx, d, OpListObjects, req)
}

// GetObject returns the envelope holding every stored version of one object.
func (d *Dispatcher) GetObject(ctx context.Context, req *ProxyRequest) (*Envelope, error) {
	return doTyped[Envelope](ctx, d, OpGetObject, req)
}

func (d *Dispatcher) AddObject(ctx context.Context, req *ProxyRequest) (*Status, error) {
	return doTyped[Status](ctx, d, OpAddObject, req)
}

func (d *Dispatcher) DeleteObject(ctx context.Context, req *ProxyRequest) error {
	_, err := d.Do(ctx, OpDeleteObject, req)
	return err
}

func (d *Dispatcher) GetManifest(ctx context.Context, req *ProxyRequest) (*Manifest, error) {
	return doTyped[Manifest](ctx, d, OpGetManifest, req)
}

func (d *Dispatcher) GetStatus(ctx context.Context, req *ProxyRequest) (*Status, error) {
	return doTyped[Status](ctx, d, OpGetStatus, req)
}

func (d *Dispatcher) GetVersions(ctx context.Context, req *ProxyRequest) (*Versions, error) {
	return doTyped[Versions](ctx, d, OpGetVersions, req)
}

func doTyped[T any](ctx context.Context, d *Dispatcher, op Operation, req *ProxyRequest) (*T, error) {
	raw, err := d.Do(ctx, op, req)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return &out, nil
}
