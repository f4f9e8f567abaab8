package hierarchy

import (
	"context"
	"testing"
	"time"

	"perfeval/internal/platform/cache"
)

type fakeStore struct {
	employees map[string]Employee
	// edges maps manager id to direct report ids.
	edges map[string][]string
}

func (f *fakeStore) EmployeeByID(_ context.Context, employeeID string) (Employee, bool, error) {
	employee, ok := f.employees[employeeID]
	return employee, ok, nil
}

func (f *fakeStore) IsDirectManager(_ context.Context, managerID, employeeID string) (bool, error) {
	for _, id := range f.edges[managerID] {
		if id == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DirectSubordinates(ctx context.Context, managerID string) ([]string, error) {
	return f.SubordinatesOfAll(ctx, []string{managerID})
}

func (f *fakeStore) SubordinatesOfAll(_ context.Context, managerIDs []string) ([]string, error) {
	var out []string
	for _, managerID := range managerIDs {
		out = append(out, f.edges[managerID]...)
	}
	return out, nil
}

func newResolver(store StoreAPI) *Resolver {
	return NewResolver(store, cache.Disabled{}, 5*time.Minute, 32)
}

func TestGetRoleInfoMissingEmployee(t *testing.T) {
	resolver := newResolver(&fakeStore{employees: map[string]Employee{}, edges: map[string][]string{}})

	info, err := resolver.GetRoleInfo(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil RoleInfo, got %+v", info)
	}
}

func TestGetRoleInfoInactiveEmployee(t *testing.T) {
	store := &fakeStore{
		employees: map[string]Employee{"e1": {ID: "e1", Role: RoleEmployee, Active: false}},
		edges:     map[string][]string{},
	}
	resolver := newResolver(store)

	info, err := resolver.GetRoleInfo(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Fatal("expected nil RoleInfo for inactive employee")
	}
}

func TestGetRoleInfoNonManagerHasNoSubordinates(t *testing.T) {
	store := &fakeStore{
		employees: map[string]Employee{"e1": {ID: "e1", Role: RoleEmployee, Active: true}},
		edges:     map[string][]string{},
	}
	resolver := newResolver(store)

	info, err := resolver.GetRoleInfo(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.IsManager {
		t.Fatal("employee with no active edges must not be a manager")
	}
	if len(info.Subordinates) != 0 {
		t.Fatalf("expected empty subordinate set, got %v", info.Subordinates)
	}
}

func TestGetRoleInfoManagerLoadsSubordinates(t *testing.T) {
	store := &fakeStore{
		employees: map[string]Employee{"m1": {ID: "m1", Role: RoleManager, Active: true}},
		edges:     map[string][]string{"m1": {"e1", "e2"}},
	}
	resolver := newResolver(store)

	info, err := resolver.GetRoleInfo(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.IsManager {
		t.Fatal("expected manager status")
	}
	if len(info.Subordinates) != 2 {
		t.Fatalf("expected 2 subordinates, got %v", info.Subordinates)
	}
}

func TestGetRoleInfoServesStaleCacheWithinTTL(t *testing.T) {
	store := &fakeStore{
		employees: map[string]Employee{"e1": {ID: "e1", Role: RoleEmployee, Active: true}},
		edges:     map[string][]string{},
	}
	resolver := NewResolver(store, cache.NewMemory(), 5*time.Minute, 32)

	first, err := resolver.GetRoleInfo(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Role != RoleEmployee {
		t.Fatalf("expected employee role, got %s", first.Role)
	}

	// Role change during the TTL window is not observed.
	store.employees["e1"] = Employee{ID: "e1", Role: RoleHR, Active: true}
	second, err := resolver.GetRoleInfo(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Role != RoleEmployee {
		t.Fatalf("expected stale cached role, got %s", second.Role)
	}
}

func TestIsIndirectManagerTransitiveChain(t *testing.T) {
	store := &fakeStore{
		employees: map[string]Employee{},
		edges: map[string][]string{
			"m1": {"m2"},
			"m2": {"m3"},
			"m3": {"e1"},
		},
	}
	resolver := newResolver(store)

	ok, err := resolver.IsIndirectManager(context.Background(), "m1", "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected m1 to be an indirect manager of e1")
	}

	ok, err = resolver.IsIndirectManager(context.Background(), "m3", "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("reporting lines are directed; m3 does not manage m1")
	}
}

func TestIsIndirectManagerReflexivelyFalse(t *testing.T) {
	store := &fakeStore{edges: map[string][]string{"m1": {"e1"}}}
	resolver := newResolver(store)

	ok, err := resolver.IsIndirectManager(context.Background(), "m1", "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected reflexive lookup to be false without a self-loop edge")
	}
}

func TestIsIndirectManagerSelfLoopEdge(t *testing.T) {
	store := &fakeStore{edges: map[string][]string{"m1": {"m1"}}}
	resolver := newResolver(store)

	ok, err := resolver.IsIndirectManager(context.Background(), "m1", "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected self-loop edge to make the reflexive lookup true")
	}
}

func TestIsIndirectManagerTerminatesOnCycle(t *testing.T) {
	store := &fakeStore{
		edges: map[string][]string{
			"a": {"b"},
			"b": {"c"},
			"c": {"a"},
		},
	}
	resolver := newResolver(store)

	ok, err := resolver.IsIndirectManager(context.Background(), "a", "zz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("zz is not reachable")
	}
}

func TestRoleHelpers(t *testing.T) {
	store := &fakeStore{
		employees: map[string]Employee{
			"h1": {ID: "h1", Role: RoleHR, Active: true},
			"a1": {ID: "a1", Role: RoleAdmin, Active: true},
			"m1": {ID: "m1", Role: RoleManager, Active: true},
		},
		edges: map[string][]string{},
	}
	resolver := newResolver(store)

	if ok, _ := resolver.IsElevated(context.Background(), "h1"); !ok {
		t.Fatal("expected h1 to be elevated")
	}
	if ok, _ := resolver.IsElevated(context.Background(), "a1"); !ok {
		t.Fatal("expected a1 to be elevated")
	}
	if ok, _ := resolver.IsElevated(context.Background(), "m1"); ok {
		t.Fatal("m1 is not elevated")
	}
	if ok, _ := resolver.IsManagerRole(context.Background(), "m1"); !ok {
		t.Fatal("expected m1 to hold the manager role")
	}
}
