package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oangelo/homebox-mcp/pkg/config"
	gwerrors "github.com/oangelo/homebox-mcp/pkg/errors"
	"github.com/oangelo/homebox-mcp/pkg/homebox"
)

// newTestDispatcher wires a dispatcher against a fake Homebox instance and
// returns a counter of backing service calls received.
func newTestDispatcher(t *testing.T, handler http.HandlerFunc) (*Dispatcher, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		HomeboxURL: ts.URL,
		AuthMethod: config.AuthMethodToken,
		Token:      "test-token",
		Host:       "127.0.0.1",
		Port:       8099,
	}
	client := homebox.NewClient(cfg, homebox.NewCredentials(cfg))
	return NewDispatcher(client), &calls
}

func TestDispatcher_CatalogComplete(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(http.ResponseWriter, *http.Request) {})

	expected := []string{
		"homebox_create_item",
		"homebox_create_label",
		"homebox_create_location",
		"homebox_delete_item",
		"homebox_delete_label",
		"homebox_delete_location",
		"homebox_get_item",
		"homebox_get_location",
		"homebox_get_statistics",
		"homebox_list_items",
		"homebox_list_labels",
		"homebox_list_locations",
		"homebox_move_item",
		"homebox_search",
		"homebox_update_item",
		"homebox_update_label",
		"homebox_update_location",
	}

	definitions := dispatcher.Tools()
	names := make([]string, 0, len(definitions))
	for _, tool := range definitions {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
	}
	assert.Equal(t, expected, names, "catalog must be complete and sorted")
}

func TestDispatcher_UnknownTool(t *testing.T) {
	t.Parallel()

	dispatcher, calls := newTestDispatcher(t, func(http.ResponseWriter, *http.Request) {})

	_, err := dispatcher.Invoke(context.Background(), "homebox_teleport_item", nil)
	require.Error(t, err)
	assert.True(t, gwerrors.IsUnknownTool(err))
	assert.Contains(t, err.Error(), "homebox_teleport_item")
	assert.Equal(t, int64(0), calls.Load(), "unknown tools must not reach the backing service")
}

func TestDispatcher_MissingRequiredArgument(t *testing.T) {
	t.Parallel()

	dispatcher, calls := newTestDispatcher(t, func(http.ResponseWriter, *http.Request) {})

	_, err := dispatcher.Invoke(context.Background(), "homebox_create_item", map[string]any{
		"name": "Furadeira Bosch",
	})
	require.Error(t, err)
	assert.True(t, gwerrors.IsInvalidArguments(err))

	var argErr *gwerrors.InvalidArgumentsError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "location_id", argErr.Field)
	assert.Equal(t, int64(0), calls.Load(), "invalid invocations must not reach the backing service")
}

func TestDispatcher_WrongArgumentType(t *testing.T) {
	t.Parallel()

	dispatcher, calls := newTestDispatcher(t, func(http.ResponseWriter, *http.Request) {})

	_, err := dispatcher.Invoke(context.Background(), "homebox_create_item", map[string]any{
		"name":        "Furadeira Bosch",
		"location_id": "loc-42",
		"quantity":    "three",
	})
	require.Error(t, err)
	assert.True(t, gwerrors.IsInvalidArguments(err))

	var argErr *gwerrors.InvalidArgumentsError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "quantity", argErr.Field)
	assert.Equal(t, int64(0), calls.Load())
}

func TestDispatcher_UnknownArgumentsIgnored(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	_, err := dispatcher.Invoke(context.Background(), "homebox_list_locations", map[string]any{
		"verbose": true,
	})
	assert.NoError(t, err)
}

func TestDispatcher_ListLocationsShaping(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/locations", r.URL.Path)
		fmt.Fprint(w, `[
			{"id":"loc-1","name":"Garage","description":"","itemCount":3},
			{"id":"loc-2","name":"Toolbox","parent":{"id":"loc-1","name":"Garage"},"itemCount":7}
		]`)
	})

	result, err := dispatcher.Invoke(context.Background(), "homebox_list_locations", nil)
	require.NoError(t, err)

	locations, ok := result.([]LocationResult)
	require.True(t, ok, "unexpected result type %T", result)
	require.Len(t, locations, 2)

	assert.Nil(t, locations[0].ParentID)
	assert.Equal(t, 3, locations[0].ItemCount)

	require.NotNil(t, locations[1].ParentID)
	assert.Equal(t, "loc-1", *locations[1].ParentID)
}

func TestDispatcher_CreateItem(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/items", r.URL.Path)

		var create map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&create))
		assert.Equal(t, "Furadeira Bosch", create["name"])
		assert.Equal(t, "loc-42", create["locationId"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"item-9","name":"Furadeira Bosch","quantity":1,"location":{"id":"loc-42","name":"Garage"}}`)
	})

	result, err := dispatcher.Invoke(context.Background(), "homebox_create_item", map[string]any{
		"name":        "Furadeira Bosch",
		"location_id": "loc-42",
	})
	require.NoError(t, err)

	item, ok := result.(*homebox.Item)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, "item-9", item.ID)
	assert.Equal(t, "loc-42", item.Location.ID)
}

func TestDispatcher_Search(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/items", r.URL.Path)
		require.Equal(t, "ferramenta", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"items":[
			{"id":"item-1","name":"Furadeira","quantity":1,"location":{"id":"loc-1","name":"Garage"},
			 "serialNumber":"SN-1","purchasePrice":499.9}
		],"total":1}`)
	})

	result, err := dispatcher.Invoke(context.Background(), "homebox_search", map[string]any{
		"query": "ferramenta",
	})
	require.NoError(t, err)

	// Search results are reduced: no serial numbers or prices.
	results, ok := result.([]SearchResult)
	require.True(t, ok, "unexpected result type %T", result)
	require.Len(t, results, 1)
	assert.Equal(t, "Furadeira", results[0].Name)
	assert.Equal(t, "Garage", results[0].Location.Name)
}

func TestDispatcher_SearchRenewsExpiredCredential(t *testing.T) {
	t.Parallel()

	// Credential expires mid-session: the first search is rejected with 401,
	// the gateway renews and retries, and the caller sees only the results.
	var logins, searches atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/users/login" {
			fmt.Fprintf(w, `{"token":"tok-%d"}`, logins.Add(1))
			return
		}

		require.Equal(t, "ferramenta", r.URL.Query().Get("q"))
		if searches.Add(1) == 1 {
			http.Error(w, "token expired", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":"item-1","name":"Furadeira","quantity":1,"location":{"id":"loc-1","name":"Garage"}}],"total":1}`)
	}))
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		HomeboxURL: ts.URL,
		AuthMethod: config.AuthMethodPassword,
		Email:      "user@example.com",
		Password:   "hunter2",
		Host:       "127.0.0.1",
		Port:       8099,
	}
	dispatcher := NewDispatcher(homebox.NewClient(cfg, homebox.NewCredentials(cfg)))

	result, err := dispatcher.Invoke(context.Background(), "homebox_search", map[string]any{
		"query": "ferramenta",
	})
	require.NoError(t, err, "renewal must be invisible to the caller")

	results, ok := result.([]SearchResult)
	require.True(t, ok, "unexpected result type %T", result)
	require.Len(t, results, 1)
	assert.Equal(t, "Furadeira", results[0].Name)
	assert.Equal(t, int64(2), logins.Load())
	assert.Equal(t, int64(2), searches.Load())
}

func TestDispatcher_DeleteReturnsConfirmation(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := dispatcher.Invoke(context.Background(), "homebox_delete_item", map[string]any{
		"item_id": "item-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Item item-1 deleted.", result)
}

func TestDispatcher_BackingErrorTaggedWithToolName(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	})

	_, err := dispatcher.Invoke(context.Background(), "homebox_get_statistics", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "homebox_get_statistics")
	assert.True(t, gwerrors.IsBackingService(err), "wrapping must preserve the error type")
}

func TestValidateArguments(t *testing.T) {
	t.Parallel()

	dispatcher, _ := newTestDispatcher(t, func(http.ResponseWriter, *http.Request) {})
	schema := dispatcher.catalog["homebox_update_item"].Tool.InputSchema

	tests := []struct {
		name    string
		args    Arguments
		wantErr bool
	}{
		{
			name:    "required present",
			args:    Arguments{"item_id": "item-1"},
			wantErr: false,
		},
		{
			name:    "required missing",
			args:    Arguments{"name": "Drill"},
			wantErr: true,
		},
		{
			name:    "integer accepts json number",
			args:    Arguments{"item_id": "item-1", "quantity": float64(3)},
			wantErr: false,
		},
		{
			name:    "boolean rejects string",
			args:    Arguments{"item_id": "item-1", "insured": "yes"},
			wantErr: true,
		},
		{
			name:    "array accepts any slice",
			args:    Arguments{"item_id": "item-1", "labels": []any{"lab-1"}},
			wantErr: false,
		},
		{
			name:    "array rejects scalar",
			args:    Arguments{"item_id": "item-1", "labels": "lab-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateArguments("homebox_update_item", schema, tt.args)
			if tt.wantErr {
				assert.True(t, gwerrors.IsInvalidArguments(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
