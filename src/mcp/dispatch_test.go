package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"bitrise-mcp/src/bitrise"
	"bitrise-mcp/src/registry"
)

// capture records the requests a dispatcher sends during a test.
type capture struct {
	method string
	path   string
	query  string
	body   string
	count  int
}

func newTestDispatcher(t *testing.T, groups []string) (*Dispatcher, *capture) {
	t.Helper()
	cap := &capture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.count++
		cap.method = r.Method
		cap.path = r.URL.Path
		cap.query = r.URL.RawQuery
		data, _ := io.ReadAll(r.Body)
		cap.body = string(data)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	active, err := registry.Resolve(registry.Catalog(), groups)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	client := bitrise.NewClient("test-token", bitrise.WithBaseURL(server.URL))
	return NewDispatcher(client, active), cap
}

func decodeBody(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("request body %q is not valid JSON: %v", raw, err)
	}
	return m
}

func TestInvokePassthrough(t *testing.T) {
	d, cap := newTestDispatcher(t, nil)

	out, err := d.Invoke(context.Background(), "list_apps", map[string]any{
		"sort_by": "created_at",
		"limit":   float64(10),
	})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("Invoke returned %q, expected the verbatim response", out)
	}
	if cap.count != 1 {
		t.Errorf("dispatcher sent %d requests, expected exactly 1", cap.count)
	}
	if cap.method != http.MethodGet || cap.path != "/apps" {
		t.Errorf("request = %s %s, expected GET /apps", cap.method, cap.path)
	}
	if cap.query != "limit=10&sort_by=created_at" {
		t.Errorf("query = %q", cap.query)
	}
	if cap.body != "" {
		t.Errorf("GET request carried a body: %q", cap.body)
	}
}

func TestInvokeMissingRequiredArgument(t *testing.T) {
	d, cap := newTestDispatcher(t, nil)

	_, err := d.Invoke(context.Background(), "trigger_bitrise_build", map[string]any{
		"branch": "main",
	})

	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("Invoke returned %T, expected *ArgumentError", err)
	}
	if argErr.Param != "app_slug" {
		t.Errorf("ArgumentError.Param = %q, expected app_slug", argErr.Param)
	}
	if cap.count != 0 {
		t.Errorf("validation failure sent %d requests, expected 0", cap.count)
	}
}

// A tool filtered out by group selection is indistinguishable from one
// that never existed.
func TestInvokeUnknownTool(t *testing.T) {
	d, cap := newTestDispatcher(t, []string{"apps"})

	_, errFiltered := d.Invoke(context.Background(), "get_build", map[string]any{})
	_, errBogus := d.Invoke(context.Background(), "bogus_tool", map[string]any{})

	var unknown *UnknownToolError
	if !errors.As(errFiltered, &unknown) {
		t.Fatalf("filtered tool returned %T, expected *UnknownToolError", errFiltered)
	}
	if !errors.As(errBogus, &unknown) {
		t.Fatalf("nonexistent tool returned %T, expected *UnknownToolError", errBogus)
	}
	if cap.count != 0 {
		t.Errorf("unknown tool invocation sent %d requests, expected 0", cap.count)
	}
}

func TestInvokeBodyMappings(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		method   string
		path     string
		expected map[string]any
	}{
		{
			name: "bitrise yml rides under its own key",
			tool: "update_bitrise_yml",
			args: map[string]any{
				"app_slug":            "app1",
				"bitrise_yml_as_json": `{"format_version":"11"}`,
			},
			method: http.MethodPost,
			path:   "/apps/app1/bitrise.yml",
			expected: map[string]any{
				"app_config_datastore_yaml": `{"format_version":"11"}`,
			},
		},
		{
			name: "abort reason renamed",
			tool: "abort_build",
			args: map[string]any{
				"app_slug":   "app1",
				"build_slug": "b1",
				"reason":     "wrong branch",
			},
			method: http.MethodPost,
			path:   "/apps/app1/builds/b1/abort",
			expected: map[string]any{
				"abort_reason": "wrong branch",
			},
		},
		{
			name: "abort without reason still sends an object",
			tool: "abort_build",
			args: map[string]any{
				"app_slug":   "app1",
				"build_slug": "b1",
			},
			method:   http.MethodPost,
			path:     "/apps/app1/builds/b1/abort",
			expected: map[string]any{},
		},
		{
			name: "trigger nests build params and adds hook info",
			tool: "trigger_bitrise_build",
			args: map[string]any{
				"app_slug":    "app1",
				"workflow_id": "deploy",
			},
			method: http.MethodPost,
			path:   "/apps/app1/builds",
			expected: map[string]any{
				"hook_info": map[string]any{"type": "bitrise"},
				"build_params": map[string]any{
					"branch":      "main",
					"workflow_id": "deploy",
				},
			},
		},
		{
			name: "group slugs become groups",
			tool: "replace_group_roles",
			args: map[string]any{
				"app_slug":    "app1",
				"role_name":   "manager",
				"group_slugs": []any{"g1", "g2"},
			},
			method: http.MethodPut,
			path:   "/apps/app1/roles/manager",
			expected: map[string]any{
				"groups": []any{"g1", "g2"},
			},
		},
		{
			name: "workspace group name renamed",
			tool: "create_workspace_group",
			args: map[string]any{
				"workspace_slug": "ws1",
				"group_name":     "mobile-team",
			},
			method: http.MethodPost,
			path:   "/organizations/ws1/groups",
			expected: map[string]any{
				"name": "mobile-team",
			},
		},
		{
			name: "member user slug becomes user id",
			tool: "add_member_to_group",
			args: map[string]any{
				"group_slug": "g1",
				"user_slug":  "u1",
			},
			method: http.MethodPost,
			path:   "/groups/g1/add_member",
			expected: map[string]any{
				"user_id": "u1",
			},
		},
		{
			name:     "pipeline rebuild sends an empty object",
			tool:     "rebuild_pipeline",
			args:     map[string]any{"app_slug": "app1", "pipeline_id": "p1"},
			method:   http.MethodPost,
			path:     "/apps/app1/pipelines/p1/rebuild",
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, cap := newTestDispatcher(t, nil)
			if _, err := d.Invoke(context.Background(), tt.tool, tt.args); err != nil {
				t.Fatalf("Invoke returned error: %v", err)
			}
			if cap.method != tt.method || cap.path != tt.path {
				t.Errorf("request = %s %s, expected %s %s", cap.method, cap.path, tt.method, tt.path)
			}
			if got := decodeBody(t, cap.body); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("body = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestInvokeBuildListingPaths(t *testing.T) {
	d, cap := newTestDispatcher(t, nil)

	if _, err := d.Invoke(context.Background(), "list_builds", map[string]any{"app_slug": "app1"}); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if cap.path != "/apps/app1/builds" {
		t.Errorf("with app_slug: path = %q, expected /apps/app1/builds", cap.path)
	}

	if _, err := d.Invoke(context.Background(), "list_builds", map[string]any{}); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if cap.path != "/builds" {
		t.Errorf("without app_slug: path = %q, expected /builds", cap.path)
	}
}

func TestInvokeArgumentValidation(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		args  map[string]any
		param string
	}{
		{
			name:  "enum rejects unknown value",
			tool:  "list_builds",
			args:  map[string]any{"sort_by": "oldest_first"},
			param: "sort_by",
		},
		{
			name:  "integer rejects fraction",
			tool:  "list_apps",
			args:  map[string]any{"limit": 10.5},
			param: "limit",
		},
		{
			name:  "string rejects number",
			tool:  "get_app",
			args:  map[string]any{"app_slug": float64(42)},
			param: "app_slug",
		},
		{
			name:  "boolean rejects string",
			tool:  "register_app",
			args:  map[string]any{"repo_url": "r", "is_public": "yes", "organization_slug": "o"},
			param: "is_public",
		},
		{
			name:  "string list rejects mixed elements",
			tool:  "create_outgoing_webhook",
			args:  map[string]any{"app_slug": "a", "url": "u", "events": []any{"build/started", 7}},
			param: "events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, cap := newTestDispatcher(t, nil)
			_, err := d.Invoke(context.Background(), tt.tool, tt.args)

			var argErr *ArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("Invoke returned %T (%v), expected *ArgumentError", err, err)
			}
			if argErr.Param != tt.param {
				t.Errorf("ArgumentError.Param = %q, expected %q", argErr.Param, tt.param)
			}
			if cap.count != 0 {
				t.Errorf("invalid arguments sent %d requests, expected 0", cap.count)
			}
		})
	}
}

// Local parameters configure post-processing; they never reach the API.
func TestInvokeLocalParamsNotForwarded(t *testing.T) {
	d, cap := newTestDispatcher(t, nil)

	_, err := d.Invoke(context.Background(), "get_build_log", map[string]any{
		"app_slug":         "app1",
		"build_slug":       "b1",
		"failed_step_only": true,
	})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if cap.path != "/apps/app1/builds/b1/log" {
		t.Errorf("path = %q", cap.path)
	}
	if cap.query != "" {
		t.Errorf("local parameter leaked into query: %q", cap.query)
	}
	if cap.body != "" {
		t.Errorf("local parameter leaked into body: %q", cap.body)
	}
}

func TestInvokeHookTransformsResponse(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	d.RegisterHook("me", func(ctx context.Context, vals map[string]any, body string) (string, error) {
		return "hooked:" + body, nil
	})

	out, err := d.Invoke(context.Background(), "me", map[string]any{})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if out != `hooked:{"ok":true}` {
		t.Errorf("Invoke returned %q, expected hook-transformed response", out)
	}
}

func TestInvokeRemoteErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}))
	defer server.Close()

	client := bitrise.NewClient("t", bitrise.WithBaseURL(server.URL))
	d := NewDispatcher(client, registry.Catalog())

	_, err := d.Invoke(context.Background(), "get_app", map[string]any{"app_slug": "missing"})

	var remote *bitrise.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Invoke returned %T, expected *bitrise.RemoteError", err)
	}
	if remote.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, expected 404", remote.StatusCode)
	}
}

func TestActivePreservesOrder(t *testing.T) {
	active, err := registry.Resolve(registry.Catalog(), []string{"pipelines"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	d := NewDispatcher(bitrise.NewClient("t"), active)

	got := d.Active()
	if len(got) != len(active) {
		t.Fatalf("Active returned %d descriptors, expected %d", len(got), len(active))
	}
	for i := range got {
		if got[i].Name != active[i].Name {
			t.Errorf("Active[%d] = %q, expected %q", i, got[i].Name, active[i].Name)
		}
	}
}
