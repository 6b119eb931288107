package taxii

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MediaTypeTAXII is sent as Accept and Content-Type on every TAXII call.
	MediaTypeTAXII = "application/vnd.oasis.taxii+json;version=2.1"
	// MediaTypeSTIX is the Content-Type of an add-object request body.
	MediaTypeSTIX = "application/vnd.oasis.stix+json;version=2.1"
)

// Operation names one TAXII resource call.
type Operation string

const (
	OpDiscover        Operation = "discover"
	OpGetAPIRoot      Operation = "get-api-root"
	OpListCollections Operation = "list-collections"
	OpListObjects     Operation = "list-objects"
	OpGetObject       Operation = "get-object"
	OpAddObject       Operation = "add-object"
	OpDeleteObject    Operation = "delete-object"
	OpGetManifest     Operation = "get-manifest"
	OpGetStatus       Operation = "get-status"
	OpGetVersions     Operation = "get-versions"
)

// ProxyRequest is the inbound JSON body shared by every proxy operation.
// Which fields are required depends on the operation.
type ProxyRequest struct {
	ServerURL    string          `json:"serverUrl,omitempty" validate:"required"`
	APIRootURL   string          `json:"apiRootUrl,omitempty" validate:"required"`
	CollectionID string          `json:"collectionId,omitempty" validate:"required"`
	ObjectID     string          `json:"objectId,omitempty" validate:"required"`
	StatusID     string          `json:"statusId,omitempty" validate:"required"`
	Object       json.RawMessage `json:"object,omitempty" validate:"required"`
	Credentials  *Credentials    `json:"credentials,omitempty"`
	Filters      *Filter         `json:"filters,omitempty"`
}

// Request is a fully built outbound TAXII call.
type Request struct {
	Operation Operation
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
}

type operationDef struct {
	method   string
	required []string
	path     func(r *ProxyRequest) string
	filtered bool
}

var operations = map[Operation]operationDef{
	OpDiscover: {
		method:   http.MethodGet,
		required: []string{"ServerURL"},
		path:     func(*ProxyRequest) string { return "" },
	},
	OpGetAPIRoot: {
		method:   http.MethodGet,
		required: []string{"APIRootURL"},
		path:     func(*ProxyRequest) string { return "" },
	},
	OpListCollections: {
		method:   http.MethodGet,
		required: []string{"APIRootURL"},
		path:     func(*ProxyRequest) string { return "collections/" },
	},
	OpListObjects: {
		method:   http.MethodGet,
		required: []string{"APIRootURL", "CollectionID"},
		path:     objectsPath,
		filtered: true,
	},
	OpAddObject: {
		method:   http.MethodPost,
		required: []string{"APIRootURL", "CollectionID", "Object"},
		path:     objectsPath,
	},
	OpGetObject: {
		method:   http.MethodGet,
		required: []string{"APIRootURL", "CollectionID", "ObjectID"},
		path:     objectPath,
	},
	OpDeleteObject: {
		method:   http.MethodDelete,
		required: []string{"APIRootURL", "CollectionID", "ObjectID"},
		path:     objectPath,
	},
	OpGetVersions: {
		method:   http.MethodGet,
		required: []string{"APIRootURL", "CollectionID", "ObjectID"},
		path:     func(r *ProxyRequest) string { return objectPath(r) + "versions/" },
	},
	OpGetManifest: {
		method:   http.MethodGet,
		required: []string{"APIRootURL", "CollectionID"},
		path: func(r *ProxyRequest) string {
			return "collections/" + url.PathEscape(r.CollectionID) + "/manifest/"
		},
		filtered: true,
	},
	OpGetStatus: {
		method:   http.MethodGet,
		required: []string{"APIRootURL", "StatusID"},
		path:     func(r *ProxyRequest) string { return "status/" + url.PathEscape(r.StatusID) + "/" },
	},
}

var fieldLabels = map[string]string{
	"ServerURL":    "Server URL",
	"APIRootURL":   "API Root URL",
	"CollectionID": "Collection ID",
	"ObjectID":     "Object ID",
	"StatusID":     "Status ID",
	"Object":       "Object data",
}

var validate = validator.New()

// Operations lists every supported operation in a stable order.
func Operations() []Operation {
	return []Operation{
		OpDiscover, OpGetAPIRoot, OpListCollections, OpListObjects, OpGetObject,
		OpAddObject, OpDeleteObject, OpGetManifest, OpGetStatus, OpGetVersions,
	}
}

// Method returns the HTTP method the operation uses against the TAXII server.
func (op Operation) Method() string {
	return operations[op].method
}

// Build validates req for op and produces the outbound request.
// A *ValidationError is returned before anything else is inspected.
func Build(op Operation, req *ProxyRequest) (*Request, error) {
	def, ok := operations[op]
	if !ok {
		return nil, fmt.Errorf("unknown TAXII operation %q", op)
	}
	if req == nil {
		req = &ProxyRequest{}
	}
	if err := validateRequest(def, req); err != nil {
		return nil, err
	}

	base, err := parseBaseURL(req.baseURL(op))
	if err != nil {
		return nil, err
	}

	target := base
	if rel := def.path(req); rel != "" {
		ref, err := url.Parse(rel)
		if err != nil {
			return nil, fmt.Errorf("invalid resource path %q: %w", rel, err)
		}
		target = base.ResolveReference(ref)
	}
	if def.filtered && req.Filters.Len() > 0 {
		target.RawQuery = req.Filters.Encode()
	}

	header := http.Header{}
	header.Set("Accept", MediaTypeTAXII)
	header.Set("Content-Type", MediaTypeTAXII)
	if op == OpAddObject {
		header.Set("Content-Type", MediaTypeSTIX)
	}
	if req.Credentials != nil {
		header.Set("Authorization", req.Credentials.Header())
	}

	built := &Request{
		Operation: op,
		Method:    def.method,
		URL:       target.String(),
		Header:    header,
	}

	if op == OpAddObject {
		body, err := wrapObjects(req.Object)
		if err != nil {
			return nil, err
		}
		built.Body = body
	}

	return built, nil
}

// NormalizeURL appends a trailing slash when s has none.
func NormalizeURL(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// APIRootPath returns the path component of an API root URL, or "" when it
// cannot be parsed.
func APIRootPath(apiRootURL string) string {
	u, err := url.Parse(apiRootURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func (r *ProxyRequest) baseURL(op Operation) string {
	if op == OpDiscover {
		return r.ServerURL
	}
	return r.APIRootURL
}

func validateRequest(def operationDef, req *ProxyRequest) error {
	if isEmptyJSON(req.Object) {
		req.Object = nil
	}

	err := validate.StructPartial(req, def.required...)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	verr := &ValidationError{}
	for _, name := range def.required {
		verr.Required = append(verr.Required, fieldLabels[name])
	}
	for _, fe := range fieldErrs {
		verr.Missing = append(verr.Missing, fieldLabels[fe.StructField()])
	}
	return verr
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be an absolute http(s) URL", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u, nil
}

func objectsPath(r *ProxyRequest) string {
	return "collections/" + url.PathEscape(r.CollectionID) + "/objects/"
}

func objectPath(r *ProxyRequest) string {
	return objectsPath(r) + url.PathEscape(r.ObjectID) + "/"
}

// wrapObjects turns a single object or an array of objects into a TAXII
// envelope body {"objects": [...]}.
func wrapObjects(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, errors.New("object data is not valid JSON")
	}

	objects := trimmed
	if len(trimmed) == 0 || trimmed[0] != '[' {
		objects = append(append([]byte{'['}, trimmed...), ']')
	}

	body, err := json.Marshal(struct {
		Objects json.RawMessage `json:"objects"`
	}{Objects: objects})
	if err != nil {
		return nil, fmt.Errorf("failed to encode objects: %w", err)
	}
	return body, nil
}

// isEmptyJSON reports whether raw is a JSON value a caller would consider
// "no object": null, an empty string, false or zero.
func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "null", `""`, "false", "0":
		return true
	}
	return false
}
