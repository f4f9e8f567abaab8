package hierarchy

import "context"

type StoreAPI interface {
	EmployeeByID(ctx context.Context, employeeID string) (Employee, bool, error)
	IsDirectManager(ctx context.Context, managerID, employeeID string) (bool, error)
	DirectSubordinates(ctx context.Context, managerID string) ([]string, error)
	SubordinatesOfAll(ctx context.Context, managerIDs []string) ([]string, error)
}
