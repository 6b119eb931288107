package taxii

import "strings"

// SearchObjects keeps objects whose id, type or name contains term,
// case-insensitively. An empty term keeps everything.
func SearchObjects(objects []*Object, term string) []*Object {
	if term == "" {
		return objects
	}

	needle := strings.ToLower(term)
	matched := make([]*Object, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if strings.Contains(strings.ToLower(obj.ID()), needle) ||
			strings.Contains(strings.ToLower(obj.Type()), needle) ||
			strings.Contains(strings.ToLower(obj.Name()), needle) {
			matched = append(matched, obj)
		}
	}
	return matched
}

// Page describes one page of a paginated object list.
type Page struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the zero-indexed page of objects. pageSize below 1 is treated as 10.
func Paginate(objects []*Object, page, pageSize int) ([]*Object, Page) {
	if pageSize < 1 {
		pageSize = 10
	}
	if page < 0 {
		page = 0
	}

	totalItems := len(objects)
	totalPages := totalItems / pageSize
	if totalItems%pageSize != 0 {
		totalPages++
	}
	meta := Page{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}

	// Compare pages before multiplying so huge page values cannot overflow
	if page >= totalPages {
		return []*Object{}, meta
	}
	start := page * pageSize
	end := totalItems
	if totalItems-start > pageSize {
		end = start + pageSize
	}
	return objects[start:end], meta
}
