package router

import "github.com/Dasparmv/FORTELV2/internal/types"

// DefaultTable builds the standard route table from a path→page map.
// Paths without a page in the map are omitted, so a partial deployment
// (tests, headless mode) can register only the pages it serves.
func DefaultTable(pages map[string]Page) []Route {
	defs := []Route{
		{Path: loginPath},
		{Path: defaultPath, Auth: true},
		{Path: "/campaigns", Auth: true},
		{Path: "/architecture", Auth: true},
		{Path: "/resources", Auth: true, Roles: []types.Role{types.RoleAdmin, types.RoleSupervisor}},
		{Path: "/quality", Auth: true, Roles: []types.Role{types.RoleAdmin, types.RoleSupervisor}},
		{Path: "/incidents", Auth: true, Roles: []types.Role{types.RoleAdmin, types.RoleSupervisor}},
		{Path: "/integrations", Auth: true, Roles: []types.Role{types.RoleAdmin, types.RoleSupervisor, types.RoleAnalista}},
		{Path: "/reports", Auth: true, Roles: []types.Role{types.RoleAdmin, types.RoleSupervisor, types.RoleAnalista}},
		{Path: "/data-hub", Auth: true, Roles: []types.Role{types.RoleAdmin, types.RoleAnalista}},
		{Path: "/security", Auth: true, Roles: []types.Role{types.RoleAdmin}},
	}

	out := make([]Route, 0, len(defs))
	for _, d := range defs {
		page, ok := pages[d.Path]
		if !ok {
			continue
		}
		d.Page = page
		out = append(out, d)
	}
	return out
}
