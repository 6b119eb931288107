package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/taxiiproxy/internal/session"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// toolSet implements the TAXII tools over a single session
type toolSet struct {
	dispatcher *taxii.Dispatcher
	logger     arbor.ILogger

	mu   sync.Mutex
	sess *session.Session
}

func newToolSet(dispatcher *taxii.Dispatcher, logger arbor.ILogger) *toolSet {
	return &toolSet{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (t *toolSet) current() (*session.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sess == nil || !t.sess.Connected() {
		return nil, session.ErrNotConnected
	}
	return t.sess, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(tool string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("Error (%s): %v", tool, err)),
		},
		IsError: true,
	}
}

func (t *toolSet) fail(tool string, err error) (*mcp.CallToolResult, error) {
	t.logger.Warn().Err(err).Str("tool", tool).Msg("TAXII tool failed")
	return errorResult(tool, err), nil
}

func (t *toolSet) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serverURL, err := request.RequireString("server_url")
	if err != nil || serverURL == "" {
		return textResult("Error: server_url parameter is required"), nil
	}

	var creds *taxii.Credentials
	if username := request.GetString("username", ""); username != "" {
		creds = &taxii.Credentials{
			Username: username,
			Password: request.GetString("password", ""),
		}
	}

	sess, err := session.Connect(ctx, t.dispatcher, serverURL, creds)
	if err != nil {
		return t.fail("connect", err)
	}

	t.mu.Lock()
	if t.sess != nil {
		t.sess.Disconnect()
	}
	t.sess = sess
	t.mu.Unlock()

	discovery, _ := sess.Discovery()
	return textResult(formatDiscovery(discovery)), nil
}

func (t *toolSet) handleDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sess == nil {
		return textResult("Not connected."), nil
	}
	t.sess.Disconnect()
	t.sess = nil
	return textResult("Disconnected."), nil
}

func (t *toolSet) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := t.current()
	if err != nil {
		return t.fail("server_info", err)
	}

	server, err := sess.Server()
	if err != nil {
		return t.fail("server_info", err)
	}

	// Fresh discovery so the answer reflects the server now
	discovery, err := t.dispatcher.Discover(ctx, &taxii.ProxyRequest{
		ServerURL:   server.URL,
		Credentials: server.Credentials,
	})
	if err != nil {
		return t.fail("server_info", err)
	}
	return textResult(formatDiscovery(discovery)), nil
}

func (t *toolSet) handleListAPIRoots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := t.current()
	if err != nil {
		return t.fail("list_api_roots", err)
	}
	roots, err := sess.APIRoots()
	if err != nil {
		return t.fail("list_api_roots", err)
	}
	return textResult(formatAPIRoots(roots)), nil
}

func (t *toolSet) handleSelectAPIRoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apiRoot, err := request.RequireString("api_root")
	if err != nil || apiRoot == "" {
		return textResult("Error: api_root parameter is required"), nil
	}

	sess, err := t.current()
	if err != nil {
		return t.fail("select_api_root", err)
	}
	if err := sess.SelectAPIRoot(apiRoot); err != nil {
		return t.fail("select_api_root", err)
	}

	selected, _ := sess.APIRoot()
	return textResult(fmt.Sprintf("Selected API root %s (path %s)", selected, taxii.APIRootPath(selected))), nil
}

func (t *toolSet) handleAPIRootInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := t.request(false)
	if err != nil {
		return t.fail("api_root_info", err)
	}
	info, err := t.dispatcher.GetAPIRoot(ctx, req)
	if err != nil {
		return t.fail("api_root_info", err)
	}
	return textResult(formatAPIRoot(req.APIRootURL, info)), nil
}

func (t *toolSet) handleListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := t.request(false)
	if err != nil {
		return t.fail("list_collections", err)
	}
	collections, err := t.dispatcher.ListCollections(ctx, req)
	if err != nil {
		return t.fail("list_collections", err)
	}
	return textResult(formatCollections(collections.Collections)), nil
}

func (t *toolSet) handleSelectCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collectionID, err := request.RequireString("collection_id")
	if err != nil || collectionID == "" {
		return textResult("Error: collection_id parameter is required"), nil
	}

	sess, err := t.current()
	if err != nil {
		return t.fail("select_collection", err)
	}
	req, err := sess.Request()
	if err != nil {
		return t.fail("select_collection", err)
	}

	collections, err := t.dispatcher.ListCollections(ctx, req)
	if err != nil {
		return t.fail("select_collection", err)
	}
	for _, c := range collections.Collections {
		if c.ID != collectionID {
			continue
		}
		if err := sess.SelectCollection(c); err != nil {
			return t.fail("select_collection", err)
		}
		return textResult(formatCollection(c)), nil
	}

	return t.fail("select_collection", fmt.Errorf("collection %s not found", collectionID))
}

func (t *toolSet) handleListObjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := t.request(true)
	if err != nil {
		return t.fail("list_objects", err)
	}
	req.Filters = taxii.NewFilter(filterOptions(request))

	envelope, err := t.dispatcher.ListObjects(ctx, req)
	if err != nil {
		return t.fail("list_objects", err)
	}

	pageSize := request.GetInt("page_size", 10)
	if pageSize > 100 {
		pageSize = 100
	}
	matched := taxii.SearchObjects(envelope.Objects, request.GetString("search", ""))
	objects, page := taxii.Paginate(matched, request.GetInt("page", 0), pageSize)

	return textResult(formatObjectList(objects, page, envelope)), nil
}

func (t *toolSet) handleGetObject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	objectID, err := request.RequireString("object_id")
	if err != nil || objectID == "" {
		return textResult("Error: object_id parameter is required"), nil
	}

	req, err := t.request(true)
	if err != nil {
		return t.fail("get_object", err)
	}
	req.ObjectID = objectID

	envelope, err := t.dispatcher.GetObject(ctx, req)
	if err != nil {
		return t.fail("get_object", err)
	}
	text, err := formatObjects(envelope.Objects)
	if err != nil {
		return t.fail("get_object", err)
	}
	return textResult(text), nil
}

func (t *toolSet) handleGetVersions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	objectID, err := request.RequireString("object_id")
	if err != nil || objectID == "" {
		return textResult("Error: object_id parameter is required"), nil
	}

	req, err := t.request(true)
	if err != nil {
		return t.fail("get_versions", err)
	}
	req.ObjectID = objectID

	versions, err := t.dispatcher.GetVersions(ctx, req)
	if err != nil {
		return t.fail("get_versions", err)
	}
	return textResult(formatVersions(objectID, versions)), nil
}

func (t *toolSet) handleGetManifest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := t.request(true)
	if err != nil {
		return t.fail("get_manifest", err)
	}
	req.Filters = taxii.NewFilter(filterOptions(request))

	manifest, err := t.dispatcher.GetManifest(ctx, req)
	if err != nil {
		return t.fail("get_manifest", err)
	}
	return textResult(formatManifest(manifest)), nil
}

func (t *toolSet) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statusID, err := request.RequireString("status_id")
	if err != nil || statusID == "" {
		return textResult("Error: status_id parameter is required"), nil
	}

	req, err := t.request(false)
	if err != nil {
		return t.fail("get_status", err)
	}
	req.StatusID = statusID

	status, err := t.dispatcher.GetStatus(ctx, req)
	if err != nil {
		return t.fail("get_status", err)
	}
	return textResult(formatStatus(status)), nil
}

func (t *toolSet) handleAddObject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	object, err := request.RequireString("object")
	if err != nil || object == "" {
		return textResult("Error: object parameter is required"), nil
	}
	if !json.Valid([]byte(object)) {
		return textResult("Error: object must be valid JSON"), nil
	}

	req, err := t.request(true)
	if err != nil {
		return t.fail("add_object", err)
	}
	req.Object = json.RawMessage(object)

	status, err := t.dispatcher.AddObject(ctx, req)
	if err != nil {
		return t.fail("add_object", err)
	}
	return textResult(formatStatus(status)), nil
}

func (t *toolSet) handleDeleteObject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	objectID, err := request.RequireString("object_id")
	if err != nil || objectID == "" {
		return textResult("Error: object_id parameter is required"), nil
	}

	req, err := t.request(true)
	if err != nil {
		return t.fail("delete_object", err)
	}
	req.ObjectID = objectID

	if err := t.dispatcher.DeleteObject(ctx, req); err != nil {
		return t.fail("delete_object", err)
	}
	return textResult(fmt.Sprintf("Deleted %s.", objectID)), nil
}

// request builds a ProxyRequest from the session; withCollection requires a selected collection
func (t *toolSet) request(withCollection bool) (*taxii.ProxyRequest, error) {
	sess, err := t.current()
	if err != nil {
		return nil, err
	}
	if withCollection {
		return sess.CollectionRequest()
	}
	return sess.Request()
}

func filterOptions(request mcp.CallToolRequest) taxii.FilterOptions {
	return taxii.FilterOptions{
		AddedAfter: request.GetString("added_after", ""),
		Limit:      request.GetInt("limit", 0),
		Match:      matchFilters(request),
		Types:      request.GetStringSlice("types", nil),
		Next:       request.GetString("next", ""),
	}
}

// matchFilters reads the match argument; values that render empty are skipped
func matchFilters(request mcp.CallToolRequest) map[string]string {
	raw, ok := request.GetArguments()["match"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	match := make(map[string]string, len(raw))
	for field, value := range raw {
		if s := matchValue(value); s != "" {
			match[field] = s
		}
	}
	return match
}

func matchValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := matchValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
