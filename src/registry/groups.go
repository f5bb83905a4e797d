package registry

import "fmt"

// APIGroup is a named category used to selectively enable subsets of tools.
type APIGroup string

const (
	GroupApps           APIGroup = "apps"
	GroupBuilds         APIGroup = "builds"
	GroupWorkspaces     APIGroup = "workspaces"
	GroupWebhooks       APIGroup = "webhooks"
	GroupBuildArtifacts APIGroup = "build-artifacts"
	GroupGroupRoles     APIGroup = "group-roles"
	GroupCacheItems     APIGroup = "cache-items"
	GroupPipelines      APIGroup = "pipelines"
	GroupAccount        APIGroup = "account"
)

// Groups is the closed enumeration of real API groups.
var Groups = []APIGroup{
	GroupApps,
	GroupBuilds,
	GroupWorkspaces,
	GroupWebhooks,
	GroupBuildArtifacts,
	GroupGroupRoles,
	GroupCacheItems,
	GroupPipelines,
	GroupAccount,
}

// SelectorReadOnly is the synthetic cross-cutting selector. It is valid in
// a group selection but is not a group a descriptor can be tagged with:
// membership derives from the descriptor's ReadOnly flag.
const SelectorReadOnly = "read-only"

// UnknownGroupError reports an unrecognized group name in the operator's
// selection. It is fatal at startup: the process must not start partially
// configured.
type UnknownGroupError struct {
	Name string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown API group %q (valid groups: %s and %s)", e.Name, groupNames(), SelectorReadOnly)
}

func groupNames() string {
	s := ""
	for i, g := range Groups {
		if i > 0 {
			s += ", "
		}
		s += string(g)
	}
	return s
}

// Resolve computes the active tool set from the full descriptor list and
// the operator's selection. An empty selection enables every tool. A
// descriptor is included when any of its groups is selected, or when
// read-only is selected and the descriptor is classified read-only. The
// result preserves descriptor order; duplicate selections collapse.
// Resolve is a pure function: identical inputs yield identical results.
func Resolve(descriptors []ToolDescriptor, enabled []string) ([]ToolDescriptor, error) {
	if len(enabled) == 0 {
		out := make([]ToolDescriptor, len(descriptors))
		copy(out, descriptors)
		return out, nil
	}

	selected := make(map[APIGroup]bool)
	readOnly := false
	for _, name := range enabled {
		if name == SelectorReadOnly {
			readOnly = true
			continue
		}
		g := APIGroup(name)
		if !validGroup(g) {
			return nil, &UnknownGroupError{Name: name}
		}
		selected[g] = true
	}

	var out []ToolDescriptor
	for _, d := range descriptors {
		include := readOnly && d.ReadOnly
		if !include {
			for _, g := range d.Groups {
				if selected[g] {
					include = true
					break
				}
			}
		}
		if include {
			out = append(out, d)
		}
	}
	return out, nil
}

func validGroup(g APIGroup) bool {
	for _, known := range Groups {
		if g == known {
			return true
		}
	}
	return false
}
