package hierarchy

import (
	"context"
	"time"

	"perfeval/internal/platform/cache"
)

const roleInfoKeyPrefix = "roleinfo:"

// Resolver answers role and reporting-line questions. RoleInfo lookups are
// cached per employee for the configured TTL; within that window role changes
// from the HR sync are not observed, which callers must tolerate.
type Resolver struct {
	store    StoreAPI
	cache    cache.Cache
	ttl      time.Duration
	maxDepth int
}

func NewResolver(store StoreAPI, c cache.Cache, ttl time.Duration, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = 32
	}
	return &Resolver{store: store, cache: c, ttl: ttl, maxDepth: maxDepth}
}

// GetRoleInfo returns nil for missing or inactive employees.
func (r *Resolver) GetRoleInfo(ctx context.Context, employeeID string) (*RoleInfo, error) {
	if cached, ok := r.cache.Get(roleInfoKeyPrefix + employeeID); ok {
		if info, ok := cached.(*RoleInfo); ok {
			return info, nil
		}
	}

	employee, found, err := r.store.EmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !found || !employee.Active {
		return nil, nil
	}

	subordinates, err := r.store.DirectSubordinates(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	info := &RoleInfo{
		EmployeeID:     employee.ID,
		Role:           employee.Role,
		IsManager:      len(subordinates) > 0,
		Subordinates:   subordinates,
		DepartmentID:   employee.DepartmentID,
		BusinessUnitID: employee.BusinessUnitID,
	}
	r.cache.Set(roleInfoKeyPrefix+employeeID, info, r.ttl)
	return info, nil
}

func (r *Resolver) IsDirectManager(ctx context.Context, managerID, employeeID string) (bool, error) {
	return r.store.IsDirectManager(ctx, managerID, employeeID)
}

// IsIndirectManager walks active edges breadth-first from managerID. The
// visited set and depth cap guarantee termination even on cyclic edge data.
// It is reflexively false unless the data carries a self-loop edge.
func (r *Resolver) IsIndirectManager(ctx context.Context, managerID, employeeID string) (bool, error) {
	visited := map[string]bool{}
	frontier := []string{managerID}

	for depth := 0; depth < r.maxDepth && len(frontier) > 0; depth++ {
		reachable, err := r.store.SubordinatesOfAll(ctx, frontier)
		if err != nil {
			return false, err
		}

		frontier = frontier[:0]
		for _, id := range reachable {
			if id == employeeID {
				return true, nil
			}
			if visited[id] {
				continue
			}
			visited[id] = true
			frontier = append(frontier, id)
		}
	}
	return false, nil
}

// IsElevated reports whether the employee carries the hr/admin override
// layer; both roles bypass hierarchy-derived authority everywhere.
func (r *Resolver) IsElevated(ctx context.Context, employeeID string) (bool, error) {
	info, err := r.GetRoleInfo(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return info != nil && info.Role.Elevated(), nil
}

func (r *Resolver) IsManagerRole(ctx context.Context, employeeID string) (bool, error) {
	info, err := r.GetRoleInfo(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return info != nil && info.Role == RoleManager, nil
}
