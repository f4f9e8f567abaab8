package matrix

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	matrices        map[string]Matrix
	criteria        map[string][]Criterion
	applicabilities map[string]Applicability // keyed matrixID+"/"+employeeID
	deactivated     []string
	replacements    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matrices:        map[string]Matrix{},
		criteria:        map[string][]Criterion{},
		applicabilities: map[string]Applicability{},
	}
}

func (f *fakeStore) MatrixByID(_ context.Context, matrixID string) (Matrix, bool, error) {
	m, ok := f.matrices[matrixID]
	return m, ok, nil
}

func (f *fakeStore) ListMatrices(_ context.Context) ([]Matrix, error) { return nil, nil }

func (f *fakeStore) ListMatricesForEmployee(_ context.Context, _ string, _ time.Time) ([]Matrix, error) {
	return nil, nil
}

func (f *fakeStore) CreateMatrix(_ context.Context, title string, validFrom, validTo time.Time, status Status, createdBy string) (string, error) {
	id := "m" + title
	f.matrices[id] = Matrix{ID: id, Title: title, ValidFrom: validFrom, ValidTo: validTo, Status: status, CreatedBy: createdBy}
	return id, nil
}

func (f *fakeStore) UpdateMatrix(_ context.Context, matrixID, title string, validFrom, validTo time.Time, status Status) error {
	if _, ok := f.matrices[matrixID]; !ok {
		return ErrMatrixNotFound
	}
	f.matrices[matrixID] = Matrix{ID: matrixID, Title: title, ValidFrom: validFrom, ValidTo: validTo, Status: status}
	return nil
}

func (f *fakeStore) CriteriaByMatrix(_ context.Context, matrixID string) ([]Criterion, error) {
	return f.criteria[matrixID], nil
}

func (f *fakeStore) ReplaceCriteria(_ context.Context, matrixID string, inputs []CriterionInput) ([]Criterion, error) {
	out := make([]Criterion, 0, len(inputs))
	for i, input := range inputs {
		out = append(out, Criterion{
			ID:                      matrixID + "-c" + string(rune('1'+i)),
			MatrixID:                matrixID,
			Name:                    input.Name,
			Weight:                  input.Weight,
			IsCompetencyGapCritical: input.IsCompetencyGapCritical,
		})
	}
	f.criteria[matrixID] = out
	return out, nil
}

func (f *fakeStore) ActiveApplicability(_ context.Context, matrixID, employeeID string) (Applicability, bool, error) {
	a, ok := f.applicabilities[matrixID+"/"+employeeID]
	return a, ok, nil
}

func (f *fakeStore) ReplaceActiveApplicability(_ context.Context, matrixID, employeeID string, validFrom, validTo time.Time) (string, error) {
	key := matrixID + "/" + employeeID
	f.replacements++
	id := "a" + string(rune('0'+f.replacements))
	f.applicabilities[key] = Applicability{
		ID:         id,
		MatrixID:   matrixID,
		EmployeeID: employeeID,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		Status:     ApplicabilityStatusActive,
	}
	return id, nil
}

func (f *fakeStore) DeactivateApplicability(_ context.Context, matrixID, employeeID string) error {
	key := matrixID + "/" + employeeID
	f.deactivated = append(f.deactivated, key)
	delete(f.applicabilities, key)
	return nil
}

func newTestService(store StoreAPI, now time.Time) *Service {
	service := NewService(store)
	service.now = func() time.Time { return now }
	return service
}

func TestCreateMatrixRejectsInvertedWindow(t *testing.T) {
	service := newTestService(newFakeStore(), date("2026-08-28"))

	_, err := service.CreateMatrix(context.Background(), "FY26", date("2026-12-31"), date("2026-01-01"), StatusDraft, "hr1")
	if !errors.Is(err, ErrWindowOrder) {
		t.Fatalf("expected ErrWindowOrder, got %v", err)
	}
}

func TestReplaceCriteriaValidatesBeforeWrite(t *testing.T) {
	store := newFakeStore()
	store.matrices["m1"] = Matrix{ID: "m1"}
	service := newTestService(store, date("2026-08-28"))

	_, err := service.ReplaceCriteria(context.Background(), "m1", []CriterionInput{
		{Name: "Delivery", Weight: 55, MaxScorePossible: 100},
	})
	if !errors.Is(err, ErrWeightSum) {
		t.Fatalf("expected ErrWeightSum, got %v", err)
	}
	if len(store.criteria["m1"]) != 0 {
		t.Fatal("invalid criteria must not be persisted")
	}
}

func TestReplaceCriteriaUnknownMatrix(t *testing.T) {
	service := newTestService(newFakeStore(), date("2026-08-28"))

	_, err := service.ReplaceCriteria(context.Background(), "missing", []CriterionInput{
		{Name: "Delivery", Weight: 100, MaxScorePossible: 100},
	})
	if !errors.Is(err, ErrMatrixNotFound) {
		t.Fatalf("expected ErrMatrixNotFound, got %v", err)
	}
}

func TestHasCurrentApplicability(t *testing.T) {
	store := newFakeStore()
	store.applicabilities["m1/e1"] = Applicability{
		MatrixID:   "m1",
		EmployeeID: "e1",
		ValidFrom:  date("2026-01-01"),
		ValidTo:    date("2026-12-31"),
		Status:     ApplicabilityStatusActive,
	}
	service := newTestService(store, date("2026-08-28"))

	ok, err := service.HasCurrentApplicability(context.Background(), "m1", "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected current applicability")
	}

	service.now = func() time.Time { return date("2027-02-01") }
	ok, err = service.HasCurrentApplicability(context.Background(), "m1", "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("window has passed; matrix must not apply")
	}
}

func TestAssignReplacesActiveRowInOneCall(t *testing.T) {
	store := newFakeStore()
	store.matrices["m1"] = Matrix{ID: "m1"}
	service := newTestService(store, date("2026-08-28"))

	if _, err := service.Assign(context.Background(), "m1", "e1", date("2026-01-01"), date("2026-06-30")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secondID, err := service.Assign(context.Background(), "m1", "e1", date("2026-07-01"), date("2026-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The swap is a single atomic store operation; the service never issues
	// a separate deactivate that could strand the pair without an active row.
	if store.replacements != 2 {
		t.Fatalf("expected 2 atomic replacements, got %d", store.replacements)
	}
	if len(store.deactivated) != 0 {
		t.Fatalf("expected no standalone deactivations, got %v", store.deactivated)
	}
	active, ok := store.applicabilities["m1/e1"]
	if !ok || active.ID != secondID || active.Status != ApplicabilityStatusActive {
		t.Fatalf("expected the second row to be the single active one, got %+v", active)
	}
}

func TestAssignUnknownMatrix(t *testing.T) {
	service := newTestService(newFakeStore(), date("2026-08-28"))

	_, err := service.Assign(context.Background(), "missing", "e1", date("2026-01-01"), date("2026-12-31"))
	if !errors.Is(err, ErrMatrixNotFound) {
		t.Fatalf("expected ErrMatrixNotFound, got %v", err)
	}
}
