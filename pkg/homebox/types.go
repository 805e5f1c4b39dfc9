package homebox

// LocationSummary is the reduced location embedded in other entities.
type LocationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is a storage location in the Homebox inventory.
type Location struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parent      *LocationSummary `json:"parent,omitempty"`
	ItemCount   int              `json:"itemCount"`
}

// LocationCreate is the payload for creating a location.
type LocationCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
}

// LocationUpdate is the payload for updating a location. Nil fields are
// left unchanged.
type LocationUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
}

// LabelSummary is the reduced label embedded in items.
type LabelSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is a categorization label in the Homebox inventory.
type Label struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	ItemCount   int    `json:"itemCount"`
}

// LabelCreate is the payload for creating a label.
type LabelCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// LabelUpdate is the payload for updating a label. Nil fields are left
// unchanged.
type LabelUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// Item is an inventory item.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	Location      LocationSummary `json:"location"`
	Labels        []LabelSummary  `json:"labels"`
	Insured       bool            `json:"insured"`
	Archived      bool            `json:"archived"`
	AssetID       string          `json:"assetId"`
	SerialNumber  string          `json:"serialNumber"`
	ModelNumber   string          `json:"modelNumber"`
	Manufacturer  string          `json:"manufacturer"`
	PurchasePrice float64         `json:"purchasePrice"`
	Notes         string          `json:"notes"`
}

// ItemsPage is the wrapper the items listing endpoint returns.
type ItemsPage struct {
	Items    []Item `json:"items"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Total    int    `json:"total"`
}

// ItemFilter narrows an items listing.
type ItemFilter struct {
	LocationID string
	LabelID    string
	Search     string
}

// ItemCreate is the payload for creating an item.
type ItemCreate struct {
	Name        string   `json:"name"`
	LocationID  string   `json:"locationId"`
	Description string   `json:"description,omitempty"`
	Quantity    int      `json:"quantity"`
	LabelIDs    []string `json:"labelIds,omitempty"`
}

// ItemUpdate carries the fields to change on an item. Nil fields are left
// unchanged; the client merges them into the current item state since the
// backing API requires full payloads on PUT.
type ItemUpdate struct {
	Name          *string
	Description   *string
	Quantity      *int
	LocationID    *string
	LabelIDs      []string
	Insured       *bool
	Archived      *bool
	AssetID       *string
	SerialNumber  *string
	ModelNumber   *string
	Manufacturer  *string
	PurchasePrice *float64
	Notes         *string
}

// itemPut is the full item payload the backing API expects on PUT.
type itemPut struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Quantity      int      `json:"quantity"`
	LocationID    string   `json:"locationId"`
	LabelIDs      []string `json:"labelIds,omitempty"`
	Insured       *bool    `json:"insured,omitempty"`
	Archived      *bool    `json:"archived,omitempty"`
	AssetID       *string  `json:"assetId,omitempty"`
	SerialNumber  *string  `json:"serialNumber,omitempty"`
	ModelNumber   *string  `json:"modelNumber,omitempty"`
	Manufacturer  *string  `json:"manufacturer,omitempty"`
	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// Statistics is the group statistics summary.
type Statistics struct {
	TotalItems        int     `json:"totalItems"`
	TotalLocations    int     `json:"totalLocations"`
	TotalLabels       int     `json:"totalLabels"`
	TotalUsers        int     `json:"totalUsers"`
	TotalItemPrice    float64 `json:"totalItemPrice"`
	TotalWithWarranty int     `json:"totalWithWarranty"`
}

// loginRequest is the payload for the password login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the password login response.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
