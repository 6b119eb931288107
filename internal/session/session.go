// Package session holds the connection context a presentation layer carries
// between TAXII calls: the connected server, the selected API root and the
// selected collection.
//
// A Session is created by Connect after a successful discovery and is
// cleared by Disconnect. Nothing is persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// DefaultTitle is used when the discovery document carries no title.
const DefaultTitle = "TAXII Server"

var (
	ErrNotConnected = errors.New("not connected to a TAXII server")
	ErrNoAPIRoot    = errors.New("no API root selected")
	ErrNoCollection = errors.New("no collection selected")
)

// Discoverer runs discovery against a TAXII server. *taxii.Dispatcher satisfies it.
type Discoverer interface {
	Discover(ctx context.Context, req *taxii.ProxyRequest) (*taxii.Discovery, error)
}

// ServerConnection is the connected TAXII server.
type ServerConnection struct {
	URL         string             `json:"url"`
	Credentials *taxii.Credentials `json:"credentials,omitempty"`
	Title       string             `json:"title"`
}

// Session is the explicit client context. Methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.RWMutex
	server     *ServerConnection
	discovery  *taxii.Discovery
	apiRoot    string
	collection *taxii.Collection
}

// Connect performs discovery and returns a Session on success.
// No Session exists when discovery fails.
func Connect(ctx context.Context, d Discoverer, serverURL string, creds *taxii.Credentials) (*Session, error) {
	discovery, err := d.Discover(ctx, &taxii.ProxyRequest{
		ServerURL:   serverURL,
		Credentials: creds,
	})
	if err != nil {
		return nil, err
	}

	title := discovery.Title
	if title == "" {
		title = DefaultTitle
	}

	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		server: &ServerConnection{
			URL:         serverURL,
			Credentials: creds,
			Title:       title,
		},
		discovery: discovery,
	}, nil
}

// Disconnect clears every piece of state held by the session.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server = nil
	s.discovery = nil
	s.apiRoot = ""
	s.collection = nil
}

// Connected reports whether the session still holds a server.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server != nil
}

// Server returns a copy of the connected server.
func (s *Session) Server() (ServerConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return ServerConnection{}, ErrNotConnected
	}
	return *s.server, nil
}

// Discovery returns the discovery document fetched on Connect.
func (s *Session) Discovery() (*taxii.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return nil, ErrNotConnected
	}
	return s.discovery, nil
}

// APIRoots lists the API roots advertised at discovery time.
func (s *Session) APIRoots() ([]string, error) {
	d, err := s.Discovery()
	if err != nil {
		return nil, err
	}
	return d.APIRoots, nil
}

// SelectAPIRoot selects an API root and drops any selected collection.
// Relative API root references are resolved against the server URL.
func (s *Session) SelectAPIRoot(apiRoot string) error {
	if apiRoot == "" {
		return fmt.Errorf("API root URL is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return ErrNotConnected
	}

	resolved, err := resolveAPIRoot(s.server.URL, apiRoot)
	if err != nil {
		return err
	}
	s.apiRoot = resolved
	s.collection = nil
	return nil
}

// APIRoot returns the selected API root URL.
func (s *Session) APIRoot() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return "", ErrNotConnected
	}
	if s.apiRoot == "" {
		return "", ErrNoAPIRoot
	}
	return s.apiRoot, nil
}

// SelectCollection selects a collection within the selected API root.
func (s *Session) SelectCollection(c taxii.Collection) error {
	if c.ID == "" {
		return fmt.Errorf("collection ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return ErrNotConnected
	}
	if s.apiRoot == "" {
		return ErrNoAPIRoot
	}
	s.collection = &c
	return nil
}

// Collection returns the selected collection.
func (s *Session) Collection() (taxii.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return taxii.Collection{}, ErrNotConnected
	}
	if s.collection == nil {
		return taxii.Collection{}, ErrNoCollection
	}
	return *s.collection, nil
}

// Request returns a ProxyRequest pre-filled from the session: API root,
// collection (when selected) and credentials.
func (s *Session) Request() (*taxii.ProxyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return nil, ErrNotConnected
	}
	if s.apiRoot == "" {
		return nil, ErrNoAPIRoot
	}

	req := &taxii.ProxyRequest{
		APIRootURL:  s.apiRoot,
		Credentials: s.server.Credentials,
	}
	if s.collection != nil {
		req.CollectionID = s.collection.ID
	}
	return req, nil
}

// CollectionRequest is Request for calls that need a selected collection.
func (s *Session) CollectionRequest() (*taxii.ProxyRequest, error) {
	req, err := s.Request()
	if err != nil {
		return nil, err
	}
	if req.CollectionID == "" {
		return nil, ErrNoCollection
	}
	return req, nil
}
