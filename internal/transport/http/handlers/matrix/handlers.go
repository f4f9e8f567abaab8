package matrixhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/access"
	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/hierarchy"
	"perfeval/internal/domain/matrix"
	"perfeval/internal/platform/metrics"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Matrices *matrix.Service
	Resolver *hierarchy.Resolver
	Access   *access.Engine
	Audit    *audit.Service
	Metrics  *metrics.Collector
}

func NewHandler(matrices *matrix.Service, resolver *hierarchy.Resolver, engine *access.Engine, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Matrices: matrices, Resolver: resolver, Access: engine, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/matrices", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{matrixID}", h.handleGet)
		r.Put("/{matrixID}", h.handleUpdate)
		r.Put("/{matrixID}/criteria", h.handleReplaceCriteria)
		r.Post("/{matrixID}/assignments", h.handleAssign)
		r.Delete("/{matrixID}/assignments/{employeeID}", h.handleUnassign)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	info, err := h.Resolver.GetRoleInfo(r.Context(), principal.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
		return
	}
	if info == nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "unknown or inactive employee", middleware.GetRequestID(r.Context()))
		return
	}

	var matrices []matrix.Matrix
	if info.Role.Elevated() {
		matrices, err = h.Matrices.ListMatrices(r.Context())
	} else {
		matrices, err = h.Matrices.ListMatricesForEmployee(r.Context(), principal.EmployeeID)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matrix_list_error", "could not list matrices", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, matrices, middleware.GetRequestID(r.Context()))
}

type createMatrixRequest struct {
	Title     string `json:"title"`
	ValidFrom string `json:"validFrom"`
	ValidTo   string `json:"validTo"`
	Status    string `json:"status"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	info, err := h.Resolver.GetRoleInfo(r.Context(), principal.EmployeeID)
	if err != nil || info == nil || (!info.Role.Elevated() && info.Role != hierarchy.RoleManager) {
		api.Fail(w, http.StatusForbidden, "forbidden", "only managers and hr create matrices", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("title", payload.Title, "title is required")
	validFrom, _ := validator.Date("validFrom", payload.ValidFrom)
	validTo, _ := validator.Date("validTo", payload.ValidTo)
	validator.DateOrder("validFrom", validFrom, "validTo", validTo)
	status := matrix.StatusDraft
	if payload.Status != "" {
		parsed, valid := matrix.ParseStatus(payload.Status)
		if !valid {
			validator.Add("status", "must be draft, active or inactive")
		}
		status = parsed
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Matrices.CreateMatrix(r.Context(), payload.Title, validFrom, validTo, status, principal.EmployeeID)
	if err != nil {
		slog.Warn("matrix create failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "matrix_create_error", "could not create matrix", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, principal.EmployeeID, audit.ActionMatrixChanged, id, map[string]any{"op": "create"})
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	matrixID := chi.URLParam(r, "matrixID")

	allowed, err := h.Access.CanAccessMatrix(r.Context(), principal.EmployeeID, matrixID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordDecision("access_matrix", allowed)
	if !allowed {
		api.Fail(w, http.StatusNotFound, "not_found", "matrix not found", middleware.GetRequestID(r.Context()))
		return
	}

	record, found, err := h.Matrices.MatrixByID(r.Context(), matrixID)
	if err != nil || !found {
		api.Fail(w, http.StatusNotFound, "not_found", "matrix not found", middleware.GetRequestID(r.Context()))
		return
	}
	criteria, err := h.Matrices.CriteriaByMatrix(r.Context(), matrixID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matrix_read_error", "could not load criteria", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{"matrix": record, "criteria": criteria}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, matrixID, ok := h.requireManage(w, r)
	if !ok {
		return
	}

	var payload createMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("title", payload.Title, "title is required")
	validFrom, _ := validator.Date("validFrom", payload.ValidFrom)
	validTo, _ := validator.Date("validTo", payload.ValidTo)
	validator.DateOrder("validFrom", validFrom, "validTo", validTo)
	status, valid := matrix.ParseStatus(payload.Status)
	if !valid {
		validator.Add("status", "must be draft, active or inactive")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Matrices.UpdateMatrix(r.Context(), matrixID, payload.Title, validFrom, validTo, status); err != nil {
		if errors.Is(err, matrix.ErrMatrixNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "matrix not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "matrix_update_error", "could not update matrix", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, principal.EmployeeID, audit.ActionMatrixChanged, matrixID, map[string]any{"op": "update"})
	api.Success(w, map[string]string{"id": matrixID}, middleware.GetRequestID(r.Context()))
}

type replaceCriteriaRequest struct {
	Criteria []matrix.CriterionInput `json:"criteria"`
}

func (h *Handler) handleReplaceCriteria(w http.ResponseWriter, r *http.Request) {
	principal, matrixID, ok := h.requireManage(w, r)
	if !ok {
		return
	}

	var payload replaceCriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	criteria, err := h.Matrices.ReplaceCriteria(r.Context(), matrixID, payload.Criteria)
	if err != nil {
		if errors.Is(err, matrix.ErrMatrixNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "matrix not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_criteria", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, principal.EmployeeID, audit.ActionMatrixChanged, matrixID, map[string]any{"op": "replace_criteria", "count": len(criteria)})
	api.Success(w, criteria, middleware.GetRequestID(r.Context()))
}

type assignRequest struct {
	EmployeeID string `json:"employeeId"`
	ValidFrom  string `json:"validFrom"`
	ValidTo    string `json:"validTo"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	principal, matrixID, ok := h.requireManage(w, r)
	if !ok {
		return
	}

	var payload assignRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "employeeId is required")
	validFrom, _ := validator.Date("validFrom", payload.ValidFrom)
	validTo, _ := validator.Date("validTo", payload.ValidTo)
	validator.DateOrder("validFrom", validFrom, "validTo", validTo)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Matrices.Assign(r.Context(), matrixID, payload.EmployeeID, validFrom, validTo)
	if err != nil {
		if errors.Is(err, matrix.ErrMatrixNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "matrix not found", middleware.GetRequestID(r.Context()))
			return
		}
		slog.Warn("matrix assign failed", "err", err, "matrixId", matrixID)
		api.Fail(w, http.StatusInternalServerError, "assign_error", "could not assign matrix", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, principal.EmployeeID, audit.ActionMatrixChanged, matrixID, map[string]any{"op": "assign", "employeeId": payload.EmployeeID})
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	principal, matrixID, ok := h.requireManage(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.Matrices.Unassign(r.Context(), matrixID, employeeID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "unassign_error", "could not unassign matrix", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, principal.EmployeeID, audit.ActionMatrixChanged, matrixID, map[string]any{"op": "unassign", "employeeId": employeeID})
	api.Success(w, map[string]string{"id": matrixID}, middleware.GetRequestID(r.Context()))
}

// requireManage authenticates the principal and runs the manage-matrix
// decision, writing the error response itself when the request cannot
// proceed.
func (h *Handler) requireManage(w http.ResponseWriter, r *http.Request) (middleware.Principal, string, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, "", false
	}
	matrixID := chi.URLParam(r, "matrixID")

	allowed, err := h.Access.CanManageMatrix(r.Context(), principal.EmployeeID, matrixID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, "", false
	}
	h.Metrics.RecordDecision("manage_matrix", allowed)
	if !allowed {
		h.recordAudit(r, principal.EmployeeID, audit.ActionAccessDenied, matrixID, map[string]any{"op": "manage_matrix"})
		api.Fail(w, http.StatusNotFound, "not_found", "matrix not found", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, "", false
	}
	return principal, matrixID, true
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, detail map[string]any) {
	if err := h.Audit.Record(r.Context(), actorID, action, "matrix", entityID, middleware.GetRequestID(r.Context()), detail); err != nil {
		slog.Warn("audit record failed", "err", err, "action", action)
	}
}
