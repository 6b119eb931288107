package main

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// register adds every TAXII tool to the MCP server
func (t *toolSet) register(s *server.MCPServer) {
	s.AddTool(createConnectTool(), t.handleConnect)
	s.AddTool(createDisconnectTool(), t.handleDisconnect)
	s.AddTool(createServerInfoTool(), t.handleServerInfo)
	s.AddTool(createListAPIRootsTool(), t.handleListAPIRoots)
	s.AddTool(createSelectAPIRootTool(), t.handleSelectAPIRoot)
	s.AddTool(createAPIRootInfoTool(), t.handleAPIRootInfo)
	s.AddTool(createListCollectionsTool(), t.handleListCollections)
	s.AddTool(createSelectCollectionTool(), t.handleSelectCollection)
	s.AddTool(createListObjectsTool(), t.handleListObjects)
	s.AddTool(createGetObjectTool(), t.handleGetObject)
	s.AddTool(createGetVersionsTool(), t.handleGetVersions)
	s.AddTool(createGetManifestTool(), t.handleGetManifest)
	s.AddTool(createGetStatusTool(), t.handleGetStatus)
	s.AddTool(createAddObjectTool(), t.handleAddObject)
	s.AddTool(createDeleteObjectTool(), t.handleDeleteObject)
}

func createConnectTool() mcp.Tool {
	return mcp.NewTool("connect",
		mcp.WithDescription("Connect to a TAXII 2.1 server by running discovery. Replaces any existing connection."),
		mcp.WithString("server_url",
			mcp.Required(),
			mcp.Description("Discovery URL of the TAXII server, e.g. https://taxii.example.com/taxii2/"),
		),
		mcp.WithString("username",
			mcp.Description("HTTP Basic username (optional)"),
		),
		mcp.WithString("password",
			mcp.Description("HTTP Basic password (optional)"),
		),
	)
}

func createDisconnectTool() mcp.Tool {
	return mcp.NewTool("disconnect",
		mcp.WithDescription("Forget the connected server, API root and collection"),
	)
}

func createServerInfoTool() mcp.Tool {
	return mcp.NewTool("server_info",
		mcp.WithDescription("Show the discovery document of the connected server"),
	)
}

func createListAPIRootsTool() mcp.Tool {
	return mcp.NewTool("list_api_roots",
		mcp.WithDescription("List API roots advertised by the connected server"),
	)
}

func createSelectAPIRootTool() mcp.Tool {
	return mcp.NewTool("select_api_root",
		mcp.WithDescription("Select the API root used by collection and object tools"),
		mcp.WithString("api_root",
			mcp.Required(),
			mcp.Description("API root URL as listed by list_api_roots"),
		),
	)
}

func createAPIRootInfoTool() mcp.Tool {
	return mcp.NewTool("api_root_info",
		mcp.WithDescription("Show information about the selected API root"),
	)
}

func createListCollectionsTool() mcp.Tool {
	return mcp.NewTool("list_collections",
		mcp.WithDescription("List collections in the selected API root"),
	)
}

func createSelectCollectionTool() mcp.Tool {
	return mcp.NewTool("select_collection",
		mcp.WithDescription("Select the collection used by object tools"),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("Collection ID as listed by list_collections"),
		),
	)
}

func createListObjectsTool() mcp.Tool {
	return mcp.NewTool("list_objects",
		mcp.WithDescription("List STIX objects in the selected collection with optional server-side filters and local search/pagination"),
		mcp.WithString("search",
			mcp.Description("Case-insensitive text matched against id, type and name"),
		),
		mcp.WithNumber("page",
			mcp.Description("Zero-indexed page (default: 0)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Objects per page (default: 10, max: 100)"),
		),
		mcp.WithString("added_after",
			mcp.Description("Only objects added after this RFC 3339 timestamp"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum objects the server should return"),
		),
		mcp.WithArray("types",
			mcp.WithStringItems(),
			mcp.Description("STIX types to match, e.g. indicator, malware"),
		),
		withMatch(),
		mcp.WithString("next",
			mcp.Description("Pagination token returned by a previous call"),
		),
	)
}

func createGetObjectTool() mcp.Tool {
	return mcp.NewTool("get_object",
		mcp.WithDescription("Retrieve a STIX object from the selected collection"),
		mcp.WithString("object_id",
			mcp.Required(),
			mcp.Description("STIX id, e.g. indicator--8e2e2d2b-17d4-4cbf-938f-98ee46b3cd3f"),
		),
	)
}

func createGetVersionsTool() mcp.Tool {
	return mcp.NewTool("get_versions",
		mcp.WithDescription("List the versions of a STIX object in the selected collection"),
		mcp.WithString("object_id",
			mcp.Required(),
			mcp.Description("STIX id"),
		),
	)
}

func createGetManifestTool() mcp.Tool {
	return mcp.NewTool("get_manifest",
		mcp.WithDescription("List object metadata (id, version, date added) in the selected collection"),
		mcp.WithString("added_after",
			mcp.Description("Only entries added after this RFC 3339 timestamp"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries the server should return"),
		),
		mcp.WithArray("types",
			mcp.WithStringItems(),
			mcp.Description("STIX types to match"),
		),
		withMatch(),
	)
}

func createGetStatusTool() mcp.Tool {
	return mcp.NewTool("get_status",
		mcp.WithDescription("Show the status of an add_object request"),
		mcp.WithString("status_id",
			mcp.Required(),
			mcp.Description("Status ID returned by add_object"),
		),
	)
}

func createAddObjectTool() mcp.Tool {
	return mcp.NewTool("add_object",
		mcp.WithDescription("Add one STIX object (or a JSON array of objects) to the selected collection"),
		mcp.WithString("object",
			mcp.Required(),
			mcp.Description("STIX object or array of objects as JSON"),
		),
	)
}

func createDeleteObjectTool() mcp.Tool {
	return mcp.NewTool("delete_object",
		mcp.WithDescription("Delete a STIX object from the selected collection"),
		mcp.WithString("object_id",
			mcp.Required(),
			mcp.Description("STIX id"),
		),
	)
}

// withMatch declares the match[<field>] filters as an object of field -> value
func withMatch() mcp.ToolOption {
	return mcp.WithObject("match",
		mcp.Description(`Server-side match filters keyed by field, e.g. {"id": "indicator--1", "spec_version": "2.1"}. Arrays are sent comma-separated`),
		mcp.AdditionalProperties(map[string]any{"type": []string{"string", "number", "boolean", "array"}}),
	)
}
