// Package registry holds the declarative table of Bitrise tools and the
// API-group resolver that decides which tools a server run exposes.
package registry

// ParamType enumerates the parameter types a tool may declare.
type ParamType string

const (
	TypeString     ParamType = "string"
	TypeInteger    ParamType = "integer"
	TypeBoolean    ParamType = "boolean"
	TypeEnum       ParamType = "enum"
	TypeStringList ParamType = "string_list"
	TypeObject     ParamType = "object"
)

// Placement declares where a parameter's value ends up in the outbound
// request. Placement is fixed at registry-definition time, never inferred
// at call time.
type Placement string

const (
	InPath  Placement = "path"
	InQuery Placement = "query"
	InBody  Placement = "body"
)

// Param describes one tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
	In          Placement

	// Enum lists the allowed values for TypeEnum parameters.
	Enum []string

	// BodyKey overrides the JSON key for InBody parameters. Dots nest:
	// "build_params.branch" produces {"build_params": {"branch": ...}}.
	// Empty means the parameter name is used as-is.
	BodyKey string

	// Default is applied when an optional parameter is absent. Nil means
	// the parameter is simply omitted from the request.
	Default any

	// Local marks a parameter consumed by a post-processing hook rather
	// than forwarded to the Bitrise API.
	Local bool
}

// Endpoint maps a tool onto an HTTP method and path template. Path
// placeholders use {name} syntax and must correspond to declared InPath
// parameters.
type Endpoint struct {
	Method string
	Path   string

	// AltPath is used instead of Path when an optional path parameter is
	// absent (list_builds falls back to the account-wide /builds listing).
	AltPath string
}

// ToolDescriptor is the static metadata record for one tool. Descriptors
// are defined once in Catalog and never mutated.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []Param

	// Groups is the set of API groups the tool belongs to. Non-empty. The
	// catalog assigns exactly one group per tool today; the model permits
	// more.
	Groups []APIGroup

	// ReadOnly marks tools that only retrieve or list data. This is a
	// hand-assigned classification, not derivable from the HTTP method.
	ReadOnly bool

	Endpoint Endpoint

	// StaticBody holds constant request-body fields merged into every
	// call. A non-nil StaticBody forces a JSON object body even when all
	// body parameters are absent.
	StaticBody map[string]any
}

// InGroup reports whether the descriptor belongs to the given group.
func (d ToolDescriptor) InGroup(g APIGroup) bool {
	for _, dg := range d.Groups {
		if dg == g {
			return true
		}
	}
	return false
}

// Param returns the named parameter declaration, if present.
func (d ToolDescriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
