package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// mockDiscoverer implements Discoverer for testing
type mockDiscoverer struct {
	discoverFunc func(ctx context.Context, req *taxii.ProxyRequest) (*taxii.Discovery, error)
	lastRequest  *taxii.ProxyRequest
}

func (m *mockDiscoverer) Discover(ctx context.Context, req *taxii.ProxyRequest) (*taxii.Discovery, error) {
	m.lastRequest = req
	if m.discoverFunc != nil {
		return m.discoverFunc(ctx, req)
	}
	return &taxii.Discovery{
		Title:    "Test Server",
		APIRoots: []string{"https://taxii.example.com/api1/", "/api2/"},
	}, nil
}

func connected(t *testing.T) *Session {
	t.Helper()
	sess, err := Connect(context.Background(), &mockDiscoverer{}, "https://taxii.example.com/taxii2/", &taxii.Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)
	return sess
}

func TestConnect(t *testing.T) {
	d := &mockDiscoverer{}
	creds := &taxii.Credentials{Username: "u", Password: "p"}

	sess, err := Connect(context.Background(), d, "https://taxii.example.com/taxii2/", creds)
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.Connected())
	assert.Equal(t, "https://taxii.example.com/taxii2/", d.lastRequest.ServerURL)
	assert.Same(t, creds, d.lastRequest.Credentials)

	server, err := sess.Server()
	require.NoError(t, err)
	assert.Equal(t, "Test Server", server.Title)

	roots, err := sess.APIRoots()
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestConnectDefaultTitle(t *testing.T) {
	d := &mockDiscoverer{discoverFunc: func(context.Context, *taxii.ProxyRequest) (*taxii.Discovery, error) {
		return &taxii.Discovery{}, nil
	}}
	sess, err := Connect(context.Background(), d, "https://taxii.example.com/", nil)
	require.NoError(t, err)

	server, err := sess.Server()
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, server.Title)
}

func TestConnectFailure(t *testing.T) {
	cause := &taxii.UpstreamError{StatusCode: 401, StatusText: "Unauthorized"}
	d := &mockDiscoverer{discoverFunc: func(context.Context, *taxii.ProxyRequest) (*taxii.Discovery, error) {
		return nil, cause
	}}

	sess, err := Connect(context.Background(), d, "https://taxii.example.com/", nil)
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, cause)
}

func TestSelectAPIRoot(t *testing.T) {
	tests := []struct {
		name     string
		apiRoot  string
		expected string
	}{
		{"absolute", "https://taxii.example.com/api1/", "https://taxii.example.com/api1/"},
		{"relative", "/api2/", "https://taxii.example.com/api2/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := connected(t)
			require.NoError(t, sess.SelectAPIRoot(tt.apiRoot))

			apiRoot, err := sess.APIRoot()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, apiRoot)
		})
	}
}

func TestSelectAPIRootClearsCollection(t *testing.T) {
	sess := connected(t)
	require.NoError(t, sess.SelectAPIRoot("https://taxii.example.com/api1/"))
	require.NoError(t, sess.SelectCollection(taxii.Collection{ID: "c1", Title: "One"}))

	require.NoError(t, sess.SelectAPIRoot("/api2/"))
	_, err := sess.Collection()
	assert.ErrorIs(t, err, ErrNoCollection)
}

func TestSelectCollectionRequiresAPIRoot(t *testing.T) {
	sess := connected(t)
	err := sess.SelectCollection(taxii.Collection{ID: "c1"})
	assert.ErrorIs(t, err, ErrNoAPIRoot)
}

func TestRequest(t *testing.T) {
	sess := connected(t)

	_, err := sess.Request()
	assert.ErrorIs(t, err, ErrNoAPIRoot)

	require.NoError(t, sess.SelectAPIRoot("https://taxii.example.com/api1/"))
	req, err := sess.Request()
	require.NoError(t, err)
	assert.Equal(t, "https://taxii.example.com/api1/", req.APIRootURL)
	assert.Equal(t, "u", req.Credentials.Username)
	assert.Empty(t, req.CollectionID)

	_, err = sess.CollectionRequest()
	assert.ErrorIs(t, err, ErrNoCollection)

	require.NoError(t, sess.SelectCollection(taxii.Collection{ID: "c1"}))
	req, err = sess.CollectionRequest()
	require.NoError(t, err)
	assert.Equal(t, "c1", req.CollectionID)
}

func TestDisconnect(t *testing.T) {
	sess := connected(t)
	require.NoError(t, sess.SelectAPIRoot("/api2/"))
	sess.Disconnect()

	assert.False(t, sess.Connected())
	_, err := sess.Server()
	assert.True(t, errors.Is(err, ErrNotConnected))
	_, err = sess.APIRoot()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, sess.SelectAPIRoot("/api1/"), ErrNotConnected)
}

func TestConcurrentAccess(t *testing.T) {
	sess := connected(t)
	require.NoError(t, sess.SelectAPIRoot("/api1/"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = sess.SelectCollection(taxii.Collection{ID: "c1"})
		}()
		go func() {
			defer wg.Done()
			_, _ = sess.Request()
		}()
	}
	wg.Wait()

	c, err := sess.Collection()
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}
