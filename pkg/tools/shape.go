package tools

import (
	"github.com/oangelo/homebox-mcp/pkg/homebox"
)

// Shaped output types. Internal backing-service fields are stripped and
// nested location/label objects normalized; shaping is pure.

// LocationResult is the shaped location returned by listing tools.
type LocationResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
	ItemCount   int     `json:"item_count"`
}

// LabelRef is a reduced label reference attached to items.
type LabelRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LocationRef is a reduced location reference attached to items.
type LocationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemResult is the shaped item returned by the listing tool.
type ItemResult struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	Location    LocationRef `json:"location"`
	Labels      []LabelRef  `json:"labels"`
	Insured     bool        `json:"insured"`
	Archived    bool        `json:"archived"`
}

// SearchResult is the reduced item returned by the search tool.
type SearchResult struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	Location    LocationRef `json:"location"`
}

// LabelResult is the shaped label returned by the listing tool.
type LabelResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	ItemCount   int    `json:"item_count"`
}

func shapeLocations(locations []homebox.Location) []LocationResult {
	results := make([]LocationResult, 0, len(locations))
	for _, loc := range locations {
		shaped := LocationResult{
			ID:          loc.ID,
			Name:        loc.Name,
			Description: loc.Description,
			ItemCount:   loc.ItemCount,
		}
		if loc.Parent != nil {
			parentID := loc.Parent.ID
			shaped.ParentID = &parentID
		}
		results = append(results, shaped)
	}
	return results
}

func shapeItems(items []homebox.Item) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		shaped := ItemResult{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Location:    LocationRef{ID: item.Location.ID, Name: item.Location.Name},
			Labels:      make([]LabelRef, 0, len(item.Labels)),
			Insured:     item.Insured,
			Archived:    item.Archived,
		}
		for _, label := range item.Labels {
			shaped.Labels = append(shaped.Labels, LabelRef{ID: label.ID, Name: label.Name})
		}
		results = append(results, shaped)
	}
	return results
}

func shapeSearchResults(items []homebox.Item) []SearchResult {
	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, SearchResult{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Location:    LocationRef{ID: item.Location.ID, Name: item.Location.Name},
		})
	}
	return results
}

func shapeLabels(labels []homebox.Label) []LabelResult {
	results := make([]LabelResult, 0, len(labels))
	for _, label := range labels {
		results = append(results, LabelResult{
			ID:          label.ID,
			Name:        label.Name,
			Description: label.Description,
			Color:       label.Color,
			ItemCount:   label.ItemCount,
		})
	}
	return results
}
