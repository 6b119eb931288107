package taxii

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIRoot = "https://taxii.example.com/api1/"

func TestBuildURLs(t *testing.T) {
	tests := []struct {
		name     string
		op       Operation
		req      *ProxyRequest
		method   string
		expected string
	}{
		{
			name:     "discover",
			op:       OpDiscover,
			req:      &ProxyRequest{ServerURL: "https://taxii.example.com/taxii2"},
			method:   http.MethodGet,
			expected: "https://taxii.example.com/taxii2/",
		},
		{
			name:     "api root",
			op:       OpGetAPIRoot,
			req:      &ProxyRequest{APIRootURL: testAPIRoot},
			method:   http.MethodGet,
			expected: testAPIRoot,
		},
		{
			name:     "collections",
			op:       OpListCollections,
			req:      &ProxyRequest{APIRootURL: testAPIRoot},
			method:   http.MethodGet,
			expected: testAPIRoot + "collections/",
		},
		{
			name:     "objects",
			op:       OpListObjects,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1"},
			method:   http.MethodGet,
			expected: testAPIRoot + "collections/c1/objects/",
		},
		{
			name:     "object",
			op:       OpGetObject,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1", ObjectID: "indicator--1"},
			method:   http.MethodGet,
			expected: testAPIRoot + "collections/c1/objects/indicator--1/",
		},
		{
			name:     "delete object",
			op:       OpDeleteObject,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1", ObjectID: "indicator--1"},
			method:   http.MethodDelete,
			expected: testAPIRoot + "collections/c1/objects/indicator--1/",
		},
		{
			name:     "versions",
			op:       OpGetVersions,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1", ObjectID: "indicator--1"},
			method:   http.MethodGet,
			expected: testAPIRoot + "collections/c1/objects/indicator--1/versions/",
		},
		{
			name:     "manifest",
			op:       OpGetManifest,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1"},
			method:   http.MethodGet,
			expected: testAPIRoot + "collections/c1/manifest/",
		},
		{
			name:     "status",
			op:       OpGetStatus,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, StatusID: "s1"},
			method:   http.MethodGet,
			expected: testAPIRoot + "status/s1/",
		},
		{
			name:     "add object",
			op:       OpAddObject,
			req:      &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1", Object: json.RawMessage(`{"id":"x"}`)},
			method:   http.MethodPost,
			expected: testAPIRoot + "collections/c1/objects/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := Build(tt.op, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.method, built.Method)
			assert.Equal(t, tt.method, tt.op.Method())
			assert.Equal(t, tt.expected, built.URL)
			assert.Equal(t, tt.op, built.Operation)
		})
	}
}

func TestBuildTrailingSlashEquivalence(t *testing.T) {
	withSlash, err := Build(OpListCollections, &ProxyRequest{APIRootURL: "https://taxii.example.com/api1/"})
	require.NoError(t, err)
	withoutSlash, err := Build(OpListCollections, &ProxyRequest{APIRootURL: "https://taxii.example.com/api1"})
	require.NoError(t, err)

	assert.Equal(t, withSlash.URL, withoutSlash.URL)
	assert.Equal(t, "https://taxii.example.com/api1/collections/", withSlash.URL)
}

func TestBuildHeaders(t *testing.T) {
	built, err := Build(OpDiscover, &ProxyRequest{ServerURL: "https://taxii.example.com/taxii2/"})
	require.NoError(t, err)

	assert.Equal(t, MediaTypeTAXII, built.Header.Get("Accept"))
	assert.Equal(t, MediaTypeTAXII, built.Header.Get("Content-Type"))
	assert.Empty(t, built.Header.Get("Authorization"))
	assert.Nil(t, built.Body)
}

func TestBuildAuthorization(t *testing.T) {
	built, err := Build(OpGetAPIRoot, &ProxyRequest{
		APIRootURL:  testAPIRoot,
		Credentials: &Credentials{Username: "user", Password: "pass"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNz", built.Header.Get("Authorization"))
}

func TestBuildFilters(t *testing.T) {
	req := &ProxyRequest{
		APIRootURL:   testAPIRoot,
		CollectionID: "c1",
		Filters:      NewFilter(FilterOptions{AddedAfter: "2024-01-01T00:00:00Z", Limit: 10}),
	}

	built, err := Build(OpListObjects, req)
	require.NoError(t, err)
	assert.Equal(t, testAPIRoot+"collections/c1/objects/?added_after=2024-01-01T00%3A00%3A00Z&limit=10", built.URL)

	// Filters are ignored by operations that do not take them
	built, err = Build(OpListCollections, req)
	require.NoError(t, err)
	assert.Equal(t, testAPIRoot+"collections/", built.URL)
}

func TestBuildEscapesIDs(t *testing.T) {
	built, err := Build(OpGetObject, &ProxyRequest{
		APIRootURL:   testAPIRoot,
		CollectionID: "my collection",
		ObjectID:     "a/b",
	})
	require.NoError(t, err)
	assert.Equal(t, testAPIRoot+"collections/my%20collection/objects/a%2Fb/", built.URL)
}

func TestBuildAddObject(t *testing.T) {
	tests := []struct {
		name     string
		object   string
		expected string
	}{
		{"single object is wrapped", `{"type":"indicator","id":"indicator--1"}`, `{"objects":[{"type":"indicator","id":"indicator--1"}]}`},
		{"array is kept", `[{"id":"a"},{"id":"b"}]`, `{"objects":[{"id":"a"},{"id":"b"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := Build(OpAddObject, &ProxyRequest{
				APIRootURL:   testAPIRoot,
				CollectionID: "c1",
				Object:       json.RawMessage(tt.object),
			})
			require.NoError(t, err)
			assert.Equal(t, MediaTypeSTIX, built.Header.Get("Content-Type"))
			assert.Equal(t, MediaTypeTAXII, built.Header.Get("Accept"))
			assert.JSONEq(t, tt.expected, string(built.Body))
		})
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		op      Operation
		req     *ProxyRequest
		message string
		missing []string
	}{
		{
			name:    "discover without server",
			op:      OpDiscover,
			req:     &ProxyRequest{},
			message: "Server URL is required",
			missing: []string{"Server URL"},
		},
		{
			name:    "nil request",
			op:      OpGetAPIRoot,
			req:     nil,
			message: "API Root URL is required",
			missing: []string{"API Root URL"},
		},
		{
			name:    "objects without collection",
			op:      OpListObjects,
			req:     &ProxyRequest{APIRootURL: testAPIRoot},
			message: "API Root URL and Collection ID are required",
			missing: []string{"Collection ID"},
		},
		{
			name:    "object without anything",
			op:      OpGetObject,
			req:     &ProxyRequest{},
			message: "API Root URL, Collection ID, and Object ID are required",
			missing: []string{"API Root URL", "Collection ID", "Object ID"},
		},
		{
			name:    "add with null object",
			op:      OpAddObject,
			req:     &ProxyRequest{APIRootURL: testAPIRoot, CollectionID: "c1", Object: json.RawMessage(`null`)},
			message: "API Root URL, Collection ID, and Object data are required",
			missing: []string{"Object data"},
		},
		{
			name:    "status without id",
			op:      OpGetStatus,
			req:     &ProxyRequest{APIRootURL: testAPIRoot},
			message: "API Root URL and Status ID are required",
			missing: []string{"Status ID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.op, tt.req)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.message, verr.Error())
			assert.ElementsMatch(t, tt.missing, verr.Missing)
		})
	}
}

func TestBuildInvalidBaseURL(t *testing.T) {
	_, err := Build(OpGetAPIRoot, &ProxyRequest{APIRootURL: "not a url"})
	require.Error(t, err)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestBuildUnknownOperation(t *testing.T) {
	_, err := Build(Operation("bogus"), &ProxyRequest{})
	assert.Error(t, err)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://a/b/", NormalizeURL("https://a/b"))
	assert.Equal(t, "https://a/b/", NormalizeURL("https://a/b/"))
	assert.Equal(t, "/", NormalizeURL(""))
}

func TestAPIRootPath(t *testing.T) {
	assert.Equal(t, "/api1/", APIRootPath("https://taxii.example.com/api1/"))
	assert.Equal(t, "", APIRootPath("://bad"))
}

func TestOperationsCoverEveryOperation(t *testing.T) {
	ops := Operations()
	assert.Len(t, ops, len(operations))
	for _, op := range ops {
		_, ok := operations[op]
		assert.True(t, ok, string(op))
	}
}
