package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oangelo/homebox-mcp/pkg/homebox"
)

// Handler executes a tool invocation against the backing service.
// Arguments have already been validated against the tool's input schema.
type Handler func(ctx context.Context, args Arguments) (any, error)

// Definition binds a tool's input schema to its handler.
type Definition struct {
	Tool    mcp.Tool
	Handler Handler
}

// buildCatalog constructs the static tool table. It is built once at startup
// and resolved by name lookup.
func buildCatalog(client *homebox.Client) map[string]Definition {
	catalog := make(map[string]Definition)
	add := func(tool mcp.Tool, handler Handler) {
		catalog[tool.Name] = Definition{Tool: tool, Handler: handler}
	}

	// Locations

	add(mcp.Tool{
		Name:        "homebox_list_locations",
		Description: "List all inventory locations, including hierarchy information for nested locations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, func(ctx context.Context, _ Arguments) (any, error) {
		locations, err := client.ListLocations(ctx)
		if err != nil {
			return nil, err
		}
		return shapeLocations(locations), nil
	})

	add(mcp.Tool{
		Name:        "homebox_get_location",
		Description: "Get details of a specific location",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the location",
				},
			},
			Required: []string{"location_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		locationID, _ := args.String("location_id")
		return client.GetLocation(ctx, locationID)
	})

	add(mcp.Tool{
		Name:        "homebox_create_location",
		Description: "Create a new location where items can be stored, such as a room, cabinet or drawer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the location",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional description of the location",
				},
				"parent_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the parent location, for nested locations",
				},
			},
			Required: []string{"name"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		name, _ := args.String("name")
		description, _ := args.String("description")
		parentID, _ := args.String("parent_id")
		return client.CreateLocation(ctx, homebox.LocationCreate{
			Name:        name,
			Description: description,
			ParentID:    parentID,
		})
	})

	add(mcp.Tool{
		Name:        "homebox_update_location",
		Description: "Update an existing location; only provided fields are changed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the location to update",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New name",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"parent_id": map[string]interface{}{
					"type":        "string",
					"description": "New parent location UUID",
				},
			},
			Required: []string{"location_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		locationID, _ := args.String("location_id")
		return client.UpdateLocation(ctx, locationID, homebox.LocationUpdate{
			Name:        args.StringPtr("name"),
			Description: args.StringPtr("description"),
			ParentID:    args.StringPtr("parent_id"),
		})
	})

	add(mcp.Tool{
		Name:        "homebox_delete_location",
		Description: "Delete a location. The location must not contain items or sub-locations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the location to delete",
				},
			},
			Required: []string{"location_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		locationID, _ := args.String("location_id")
		if err := client.DeleteLocation(ctx, locationID); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Location %s deleted.", locationID), nil
	})

	// Items

	add(mcp.Tool{
		Name:        "homebox_list_items",
		Description: "List inventory items with optional filters by location, label or search term",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "Filter by location UUID",
				},
				"label_id": map[string]interface{}{
					"type":        "string",
					"description": "Filter by label UUID",
				},
				"search": map[string]interface{}{
					"type":        "string",
					"description": "Search term matched against item names and descriptions",
				},
			},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		locationID, _ := args.String("location_id")
		labelID, _ := args.String("label_id")
		search, _ := args.String("search")
		page, err := client.ListItems(ctx, homebox.ItemFilter{
			LocationID: locationID,
			LabelID:    labelID,
			Search:     search,
		})
		if err != nil {
			return nil, err
		}
		return shapeItems(page.Items), nil
	})

	add(mcp.Tool{
		Name:        "homebox_get_item",
		Description: "Get full details of a specific item, including serial number, manufacturer and price",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the item",
				},
			},
			Required: []string{"item_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		itemID, _ := args.String("item_id")
		return client.GetItem(ctx, itemID)
	})

	add(mcp.Tool{
		Name:        "homebox_search",
		Description: "Flexible textual search over item names and descriptions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search term",
				},
			},
			Required: []string{"query"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		query, _ := args.String("query")
		page, err := client.SearchItems(ctx, query)
		if err != nil {
			return nil, err
		}
		return shapeSearchResults(page.Items), nil
	})

	add(mcp.Tool{
		Name:        "homebox_create_item",
		Description: "Create a new inventory item",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the item",
				},
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the location where the item is stored",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional description",
				},
				"quantity": map[string]interface{}{
					"type":        "integer",
					"description": "Quantity (default 1)",
				},
				"labels": map[string]interface{}{
					"type":        "array",
					"description": "Label UUIDs to attach to the item",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"name", "location_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		name, _ := args.String("name")
		locationID, _ := args.String("location_id")
		description, _ := args.String("description")
		quantity, _ := args.Int("quantity")
		return client.CreateItem(ctx, homebox.ItemCreate{
			Name:        name,
			LocationID:  locationID,
			Description: description,
			Quantity:    quantity,
			LabelIDs:    args.StringSlice("labels"),
		})
	})

	add(mcp.Tool{
		Name:        "homebox_update_item",
		Description: "Update fields of an existing item; only provided fields are changed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the item to update",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New name",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"quantity": map[string]interface{}{
					"type":        "integer",
					"description": "New quantity",
				},
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "New location UUID (moves the item)",
				},
				"labels": map[string]interface{}{
					"type":        "array",
					"description": "New list of label UUIDs",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"insured": map[string]interface{}{
					"type":        "boolean",
					"description": "Insurance status",
				},
				"archived": map[string]interface{}{
					"type":        "boolean",
					"description": "Archive status",
				},
				"asset_id": map[string]interface{}{
					"type":        "string",
					"description": "Asset identifier",
				},
				"serial_number": map[string]interface{}{
					"type":        "string",
					"description": "Serial number",
				},
				"model_number": map[string]interface{}{
					"type":        "string",
					"description": "Model number",
				},
				"manufacturer": map[string]interface{}{
					"type":        "string",
					"description": "Manufacturer",
				},
				"purchase_price": map[string]interface{}{
					"type":        "number",
					"description": "Purchase price",
				},
				"notes": map[string]interface{}{
					"type":        "string",
					"description": "Notes",
				},
			},
			Required: []string{"item_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		itemID, _ := args.String("item_id")
		update := homebox.ItemUpdate{
			Name:          args.StringPtr("name"),
			Description:   args.StringPtr("description"),
			Quantity:      args.IntPtr("quantity"),
			LocationID:    args.StringPtr("location_id"),
			Insured:       args.BoolPtr("insured"),
			Archived:      args.BoolPtr("archived"),
			AssetID:       args.StringPtr("asset_id"),
			SerialNumber:  args.StringPtr("serial_number"),
			ModelNumber:   args.StringPtr("model_number"),
			Manufacturer:  args.StringPtr("manufacturer"),
			PurchasePrice: args.FloatPtr("purchase_price"),
			Notes:         args.StringPtr("notes"),
		}
		if _, ok := args["labels"]; ok {
			update.LabelIDs = args.StringSlice("labels")
		}
		return client.UpdateItem(ctx, itemID, update)
	})

	add(mcp.Tool{
		Name:        "homebox_move_item",
		Description: "Move an item to another location",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the item to move",
				},
				"location_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the destination location",
				},
			},
			Required: []string{"item_id", "location_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		itemID, _ := args.String("item_id")
		locationID, _ := args.String("location_id")
		return client.MoveItem(ctx, itemID, locationID)
	})

	add(mcp.Tool{
		Name:        "homebox_delete_item",
		Description: "Delete an item from the inventory. This action is permanent",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the item to delete",
				},
			},
			Required: []string{"item_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		itemID, _ := args.String("item_id")
		if err := client.DeleteItem(ctx, itemID); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Item %s deleted.", itemID), nil
	})

	// Labels

	add(mcp.Tool{
		Name:        "homebox_list_labels",
		Description: "List all labels used to categorize items",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, func(ctx context.Context, _ Arguments) (any, error) {
		labels, err := client.ListLabels(ctx)
		if err != nil {
			return nil, err
		}
		return shapeLabels(labels), nil
	})

	add(mcp.Tool{
		Name:        "homebox_create_label",
		Description: "Create a new label for categorizing items, e.g. 'Electronics' or 'Tools'",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the label",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional description",
				},
				"color": map[string]interface{}{
					"type":        "string",
					"description": "Hex color code, e.g. #FF5733",
				},
			},
			Required: []string{"name"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		name, _ := args.String("name")
		description, _ := args.String("description")
		color, _ := args.String("color")
		return client.CreateLabel(ctx, homebox.LabelCreate{
			Name:        name,
			Description: description,
			Color:       color,
		})
	})

	add(mcp.Tool{
		Name:        "homebox_update_label",
		Description: "Update an existing label; only provided fields are changed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"label_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the label to update",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New name",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"color": map[string]interface{}{
					"type":        "string",
					"description": "New hex color code",
				},
			},
			Required: []string{"label_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		labelID, _ := args.String("label_id")
		return client.UpdateLabel(ctx, labelID, homebox.LabelUpdate{
			Name:        args.StringPtr("name"),
			Description: args.StringPtr("description"),
			Color:       args.StringPtr("color"),
		})
	})

	add(mcp.Tool{
		Name:        "homebox_delete_label",
		Description: "Delete a label. Associated items are kept and only lose the label",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"label_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the label to delete",
				},
			},
			Required: []string{"label_id"},
		},
	}, func(ctx context.Context, args Arguments) (any, error) {
		labelID, _ := args.String("label_id")
		if err := client.DeleteLabel(ctx, labelID); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Label %s deleted.", labelID), nil
	})

	// Statistics

	add(mcp.Tool{
		Name:        "homebox_get_statistics",
		Description: "Get inventory statistics: item, location and label counts plus total value",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, func(ctx context.Context, _ Arguments) (any, error) {
		return client.Statistics(ctx)
	})

	return catalog
}
