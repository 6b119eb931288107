package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/taxiiproxy/internal/taxii"
	"gopkg.in/yaml.v3"
)

// formatDiscovery formats a discovery document as markdown
func formatDiscovery(d *taxii.Discovery) string {
	var sb strings.Builder
	title := d.Title
	if title == "" {
		title = "TAXII Server"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if d.Description != "" {
		sb.WriteString(d.Description + "\n\n")
	}
	if d.Contact != "" {
		sb.WriteString(fmt.Sprintf("**Contact:** %s\n", d.Contact))
	}
	if d.Default != "" {
		sb.WriteString(fmt.Sprintf("**Default API root:** %s\n", d.Default))
	}
	sb.WriteString("\n")
	sb.WriteString(formatAPIRoots(d.APIRoots))
	return sb.String()
}

func formatAPIRoots(roots []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## API Roots (%d)\n\n", len(roots)))
	if len(roots) == 0 {
		sb.WriteString("No API roots advertised.\n")
		return sb.String()
	}
	for _, root := range roots {
		sb.WriteString(fmt.Sprintf("- %s\n", root))
	}
	return sb.String()
}

func formatAPIRoot(url string, root *taxii.APIRoot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", root.Title))
	sb.WriteString(fmt.Sprintf("**URL:** %s\n", url))
	if root.Description != "" {
		sb.WriteString(fmt.Sprintf("**Description:** %s\n", root.Description))
	}
	sb.WriteString(fmt.Sprintf("**Versions:** %s\n", strings.Join(root.Versions, ", ")))
	sb.WriteString(fmt.Sprintf("**Max content length:** %d\n", root.MaxContentLength))
	return sb.String()
}

func formatCollections(collections []taxii.Collection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Collections (%d)\n\n", len(collections)))
	if len(collections) == 0 {
		sb.WriteString("No collections found.\n")
		return sb.String()
	}
	for _, c := range collections {
		sb.WriteString(fmt.Sprintf("- **%s** `%s` (%s)\n", c.Title, c.ID, access(c)))
	}
	return sb.String()
}

func formatCollection(c taxii.Collection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected collection **%s**\n\n", c.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", c.ID))
	if c.Description != "" {
		sb.WriteString(fmt.Sprintf("**Description:** %s\n", c.Description))
	}
	sb.WriteString(fmt.Sprintf("**Access:** %s\n", access(c)))
	if len(c.MediaTypes) > 0 {
		sb.WriteString(fmt.Sprintf("**Media types:** %s\n", strings.Join(c.MediaTypes, ", ")))
	}
	return sb.String()
}

func access(c taxii.Collection) string {
	switch {
	case c.CanRead && c.CanWrite:
		return "read/write"
	case c.CanRead:
		return "read"
	case c.CanWrite:
		return "write"
	default:
		return "no access"
	}
}

// formatObjectList formats one page of objects as a markdown table
func formatObjectList(objects []*taxii.Object, page taxii.Page, envelope *taxii.Envelope) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Objects (page %d of %d, %d matching)\n\n", page.Page+1, page.TotalPages, page.TotalItems))

	if len(objects) == 0 {
		sb.WriteString("No objects match your search.\n")
	} else {
		sb.WriteString("| Type | Name | ID | Modified |\n|---|---|---|---|\n")
		for _, obj := range objects {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", obj.Type(), obj.Name(), obj.ID(), obj.Modified()))
		}
	}

	if envelope.More && envelope.Next != "" {
		sb.WriteString(fmt.Sprintf("\nMore objects are available on the server; pass next=%q to continue.\n", envelope.Next))
	}
	return sb.String()
}

// formatObjects renders every object as YAML, keeping the server's property order
func formatObjects(objects []*taxii.Object) (string, error) {
	if len(objects) == 0 {
		return "Object not found.\n", nil
	}

	var sb strings.Builder
	for i, obj := range objects {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		text, err := objectYAML(obj)
		if err != nil {
			return "", err
		}
		sb.WriteString(fmt.Sprintf("# %s\n\n```yaml\n%s```\n", obj.ID(), text))
	}
	return sb.String(), nil
}

func objectYAML(obj *taxii.Object) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range obj.Keys() {
		raw, _ := obj.Get(key)

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return "", fmt.Errorf("failed to decode property %s: %w", key, err)
		}

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return "", fmt.Errorf("failed to encode property %s: %w", key, err)
		}

		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valueNode,
		)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render object: %w", err)
	}
	return string(out), nil
}

func formatVersions(objectID string, versions *taxii.Versions) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Versions of %s (%d)\n\n", objectID, len(versions.Versions)))
	for _, v := range versions.Versions {
		sb.WriteString(fmt.Sprintf("- %s\n", v))
	}
	return sb.String()
}

func formatManifest(manifest *taxii.Manifest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Manifest (%d entries)\n\n", len(manifest.Objects)))
	if len(manifest.Objects) == 0 {
		sb.WriteString("No entries.\n")
		return sb.String()
	}
	sb.WriteString("| ID | Version | Date added | Media type |\n|---|---|---|---|\n")
	for _, r := range manifest.Objects {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", r.ID, r.Version, r.DateAdded, r.MediaType))
	}
	return sb.String()
}

func formatStatus(status *taxii.Status) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Status %s: %s\n\n", status.ID, status.Status))
	sb.WriteString(fmt.Sprintf("**Total:** %d  **Success:** %d  **Failure:** %d  **Pending:** %d\n",
		status.TotalCount, status.SuccessCount, status.FailureCount, status.PendingCount))
	for _, f := range status.Failures {
		sb.WriteString(fmt.Sprintf("- failed %s: %s\n", f.ID, f.Message))
	}
	return sb.String()
}
