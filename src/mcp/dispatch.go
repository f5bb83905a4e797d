package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bitrise-mcp/src/bitrise"
	"bitrise-mcp/src/registry"
)

// UnknownToolError reports a tool name outside the active set. A tool that
// exists in the registry but was filtered out by group selection produces
// the same error as one that never existed.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ArgumentError reports a caller-supplied argument that fails validation
// against the tool's declared schema. It never reaches the network.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
}

// Hook post-processes a successful response for a specific tool. vals are
// the validated arguments (defaults applied), body the verbatim remote
// response.
type Hook func(ctx context.Context, vals map[string]any, body string) (string, error)

// Dispatcher executes tool invocations against the Bitrise API. It holds
// only immutable state after construction and is safe for concurrent use.
type Dispatcher struct {
	client *bitrise.Client
	tools  map[string]registry.ToolDescriptor
	order  []string
	hooks  map[string]Hook
}

// NewDispatcher creates a dispatcher over the given active descriptor set.
func NewDispatcher(client *bitrise.Client, active []registry.ToolDescriptor) *Dispatcher {
	d := &Dispatcher{
		client: client,
		tools:  make(map[string]registry.ToolDescriptor, len(active)),
		order:  make([]string, 0, len(active)),
		hooks:  make(map[string]Hook),
	}
	for _, desc := range active {
		d.tools[desc.Name] = desc
		d.order = append(d.order, desc.Name)
	}
	return d
}

// RegisterHook attaches a post-processing hook to a tool. Intended to be
// called during server construction, before any invocation.
func (d *Dispatcher) RegisterHook(name string, h Hook) {
	d.hooks[name] = h
}

// Active returns the active descriptors in registration order.
func (d *Dispatcher) Active() []registry.ToolDescriptor {
	out := make([]registry.ToolDescriptor, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.tools[name])
	}
	return out
}

// Invoke executes one tool call: active-set lookup, argument validation,
// request construction, exactly one HTTP request, optional post-processing.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	desc, ok := d.tools[name]
	if !ok {
		return "", &UnknownToolError{Name: name}
	}

	vals, err := validateArgs(desc, args)
	if err != nil {
		return "", err
	}

	req, err := buildRequest(desc, vals)
	if err != nil {
		return "", err
	}

	body, err := d.client.Do(ctx, req)
	if err != nil {
		return "", err
	}

	if hook, ok := d.hooks[name]; ok {
		return hook(ctx, vals, body)
	}
	return body, nil
}

// validateArgs checks the supplied arguments against the descriptor's
// parameter schema and returns the validated values with defaults applied.
func validateArgs(desc registry.ToolDescriptor, args map[string]any) (map[string]any, error) {
	vals := make(map[string]any, len(desc.Params))
	for _, p := range desc.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Required {
				return nil, &ArgumentError{Param: p.Name, Reason: "required parameter is missing"}
			}
			if p.Default != nil {
				vals[p.Name] = p.Default
			}
			continue
		}
		v, err := coerceValue(p, raw)
		if err != nil {
			return nil, err
		}
		vals[p.Name] = v
	}
	return vals, nil
}

// coerceValue converts a JSON-decoded argument to the parameter's declared
// type. Numbers arrive as float64 over the MCP transport.
func coerceValue(p registry.Param, raw any) (any, error) {
	switch p.Type {
	case registry.TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected a string, got %T", raw)}
		}
		return s, nil

	case registry.TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected a string, got %T", raw)}
		}
		for _, allowed := range p.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, &ArgumentError{Param: p.Name,
			Reason: fmt.Sprintf("value %q is not one of: %s", s, strings.Join(p.Enum, ", "))}

	case registry.TypeInteger:
		switch n := raw.(type) {
		case float64:
			if n != float64(int64(n)) {
				return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected an integer, got %v", n)}
			}
			return int(n), nil
		case int:
			return n, nil
		}
		return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected an integer, got %T", raw)}

	case registry.TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected a boolean, got %T", raw)}
		}
		return b, nil

	case registry.TypeStringList:
		switch list := raw.(type) {
		case []string:
			return list, nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, &ArgumentError{Param: p.Name,
						Reason: fmt.Sprintf("expected a list of strings, found %T element", item)}
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected a list of strings, got %T", raw)}

	case registry.TypeObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("expected an object, got %T", raw)}
		}
		return m, nil
	}
	return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("unsupported parameter type %q", p.Type)}
}

// buildRequest assembles the outbound request from the descriptor's
// endpoint template and the validated values. Path parameters substitute
// into the template; remaining parameters go to the query string or the
// JSON body per their declared placement.
func buildRequest(desc registry.ToolDescriptor, vals map[string]any) (bitrise.Request, error) {
	path := desc.Endpoint.Path
	useAlt := false
	for _, p := range desc.Params {
		if p.Local || p.In != registry.InPath {
			continue
		}
		v, ok := vals[p.Name]
		if !ok {
			if desc.Endpoint.AltPath == "" {
				return bitrise.Request{}, &ArgumentError{Param: p.Name, Reason: "required parameter is missing"}
			}
			useAlt = true
			continue
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", fmt.Sprint(v))
	}
	if useAlt {
		path = desc.Endpoint.AltPath
	}

	var query url.Values
	for _, p := range desc.Params {
		if p.Local || p.In != registry.InQuery {
			continue
		}
		v, ok := vals[p.Name]
		if !ok {
			continue
		}
		if query == nil {
			query = url.Values{}
		}
		query.Set(p.Name, queryString(v))
	}

	var body map[string]any
	if desc.StaticBody != nil {
		body = copyBody(desc.StaticBody)
	}
	for _, p := range desc.Params {
		if p.Local || p.In != registry.InBody {
			continue
		}
		v, ok := vals[p.Name]
		if !ok {
			continue
		}
		if body == nil {
			body = make(map[string]any)
		}
		key := p.BodyKey
		if key == "" {
			key = p.Name
		}
		setNested(body, key, v)
	}

	req := bitrise.Request{
		Method: desc.Endpoint.Method,
		Path:   path,
		Query:  query,
	}
	if body != nil {
		req.Body = body
	}
	return req, nil
}

func queryString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// setNested assigns a value into the body map, creating intermediate maps
// for dotted keys ("build_params.branch").
func setNested(body map[string]any, key string, v any) {
	parts := strings.Split(key, ".")
	m := body
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
}

// copyBody deep-copies the static body so invocations never share mutable
// state with the registry.
func copyBody(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = copyBody(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}
