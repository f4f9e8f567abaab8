package evaluationhandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/access"
	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/domain/hierarchy"
	"perfeval/internal/platform/metrics"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Evaluations *evaluation.Service
	Resolver    *hierarchy.Resolver
	Access      *access.Engine
	Audit       *audit.Service
	Metrics     *metrics.Collector
	Idem        *middleware.IdempotencyStore
}

func NewHandler(evaluations *evaluation.Service, resolver *hierarchy.Resolver, engine *access.Engine, auditSvc *audit.Service, collector *metrics.Collector, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Evaluations: evaluations, Resolver: resolver, Access: engine, Audit: auditSvc, Metrics: collector, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employees/{employeeID}/role-info", h.handleRoleInfo)
	r.Route("/evaluations", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{evaluationID}", h.handleGet)
		r.Put("/{evaluationID}/status", h.handleUpdateStatus)
		r.Get("/{evaluationID}/scores", h.handleGetScores)
		r.Put("/{evaluationID}/scores", h.handleSubmitScores)
	})
	r.Post("/self-evaluations", h.handleCreateSelf)
}

func (h *Handler) handleRoleInfo(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	if principal.EmployeeID != employeeID {
		elevated, err := h.Resolver.IsElevated(r.Context(), principal.EmployeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
			return
		}
		if !elevated {
			manages, err := h.Resolver.IsIndirectManager(r.Context(), principal.EmployeeID, employeeID)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
				return
			}
			if !manages {
				api.Fail(w, http.StatusForbidden, "forbidden", "not permitted to view this employee", middleware.GetRequestID(r.Context()))
				return
			}
		}
	}

	info, err := h.Resolver.GetRoleInfo(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
		return
	}
	if info == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, info, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = principal.EmployeeID
	}

	elevated, err := h.Resolver.IsElevated(r.Context(), principal.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
		return
	}
	if principal.EmployeeID != employeeID && !elevated {
		manages, err := h.Resolver.IsIndirectManager(r.Context(), principal.EmployeeID, employeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
			return
		}
		if !manages {
			api.Fail(w, http.StatusForbidden, "forbidden", "not permitted to list these evaluations", middleware.GetRequestID(r.Context()))
			return
		}
	}

	records, err := h.Evaluations.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_error", "could not list evaluations", middleware.GetRequestID(r.Context()))
		return
	}

	// Self-evaluations stay between the employee and hr; a manager in the
	// chain only sees the manager-authored records.
	if principal.EmployeeID != employeeID && !elevated {
		filtered := records[:0]
		for _, record := range records {
			if record.Kind == evaluation.KindEmployee {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

type createEvaluationRequest struct {
	MatrixID    string `json:"matrixId"`
	EmployeeID  string `json:"employeeId"`
	EvaluatorID string `json:"evaluatorId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("matrixId", payload.MatrixID, "matrixId is required")
	validator.Required("employeeId", payload.EmployeeID, "employeeId is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	allowed, err := h.Access.CanCreateEvaluation(r.Context(), principal.EmployeeID, payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordDecision("create_evaluation", allowed)
	if !allowed {
		h.recordAudit(r, principal.EmployeeID, audit.ActionAccessDenied, payload.EmployeeID, map[string]any{"op": "create_evaluation"})
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted to evaluate this employee", middleware.GetRequestID(r.Context()))
		return
	}

	// hr/admin may create on behalf of the direct manager; everyone else is
	// the evaluator themselves.
	evaluatorID := principal.EmployeeID
	if payload.EvaluatorID != "" && payload.EvaluatorID != principal.EmployeeID {
		elevated, err := h.Resolver.IsElevated(r.Context(), principal.EmployeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
			return
		}
		if !elevated {
			api.Fail(w, http.StatusForbidden, "forbidden", "evaluatorId may only be set by hr or admin", middleware.GetRequestID(r.Context()))
			return
		}
		evaluatorID = payload.EvaluatorID
	}

	id, err := h.Evaluations.Create(r.Context(), evaluation.KindEmployee, payload.MatrixID, payload.EmployeeID, evaluatorID)
	if err != nil {
		slog.Warn("evaluation create failed", "err", err, "employeeId", payload.EmployeeID)
		api.Fail(w, http.StatusInternalServerError, "evaluation_create_error", "could not create evaluation", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type createSelfEvaluationRequest struct {
	MatrixID string `json:"matrixId"`
}

func (h *Handler) handleCreateSelf(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createSelfEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("matrixId", payload.MatrixID, "matrixId is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	allowed, err := h.Access.CanCreateSelfEvaluation(r.Context(), principal.EmployeeID, payload.MatrixID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordDecision("create_self_evaluation", allowed)
	if !allowed {
		h.recordAudit(r, principal.EmployeeID, audit.ActionAccessDenied, payload.MatrixID, map[string]any{"op": "create_self_evaluation"})
		api.Fail(w, http.StatusForbidden, "forbidden", "matrix does not currently apply to you", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Evaluations.Create(r.Context(), evaluation.KindSelf, payload.MatrixID, principal.EmployeeID, "")
	if err != nil {
		slog.Warn("self evaluation create failed", "err", err, "employeeId", principal.EmployeeID)
		api.Fail(w, http.StatusInternalServerError, "evaluation_create_error", "could not create self evaluation", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	_, record, ok := h.requireReadable(w, r)
	if !ok {
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}
	next, valid := evaluation.ParseStatus(payload.Status)
	if !valid {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "status", Reason: "unknown status"}})
		return
	}

	record, found, err := h.Evaluations.EvaluationByID(r.Context(), evaluationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_read_error", "could not load evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}

	allowed, err := h.Access.CanModifyEvaluation(r.Context(), principal.EmployeeID, evaluationID, record.Kind, &next)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordDecision("modify_evaluation", allowed)
	if !allowed {
		h.recordAudit(r, principal.EmployeeID, audit.ActionAccessDenied, evaluationID, map[string]any{"op": "update_status", "status": string(next)})
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}

	role, err := h.actorRole(r, record, principal.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_error", "role lookup failed", middleware.GetRequestID(r.Context()))
		return
	}
	if !evaluation.IsTransitionAllowed(record.Status, next, role, record.Kind) {
		api.Fail(w, http.StatusConflict, "invalid_transition",
			"transition from "+string(record.Status)+" to "+string(next)+" is not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Evaluations.UpdateStatus(r.Context(), evaluationID, next); err != nil {
		if errors.Is(err, evaluation.ErrEvaluationNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "evaluation_update_error", "could not update status", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, principal.EmployeeID, audit.ActionStatusChanged, evaluationID, map[string]any{
		"from": string(record.Status),
		"to":   string(next),
	})
	api.Success(w, map[string]string{"id": evaluationID, "status": string(next)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetScores(w http.ResponseWriter, r *http.Request) {
	_, record, ok := h.requireReadable(w, r)
	if !ok {
		return
	}

	scores, err := h.Evaluations.ScoresByEvaluation(r.Context(), record.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "score_read_error", "could not load scores", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"scores": scores, "totalWeightedScore": record.TotalWeightedScore}, middleware.GetRequestID(r.Context()))
}

type submitScoresRequest struct {
	Scores []evaluation.ScoreInput `json:"scores"`
}

func (h *Handler) handleSubmitScores(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "could not read body", middleware.GetRequestID(r.Context()))
		return
	}
	var payload submitScoresRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", middleware.GetRequestID(r.Context()))
		return
	}

	// Replay a stored response when the same actor retries with the same key
	// and body; the atomic score replace makes first execution safe either way.
	idemKey := r.Header.Get("Idempotency-Key")
	idemEndpoint := "evaluation.submit_scores:" + evaluationID
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, replay, err := h.Idem.Check(r.Context(), principal.EmployeeID, idemEndpoint, idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", middleware.GetRequestID(r.Context()))
			return
		}
		if replay {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	record, found, err := h.Evaluations.EvaluationByID(r.Context(), evaluationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_read_error", "could not load evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}

	allowed, err := h.Access.CanModifyEvaluation(r.Context(), principal.EmployeeID, evaluationID, record.Kind, nil)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordDecision("modify_evaluation", allowed)
	if !allowed {
		h.recordAudit(r, principal.EmployeeID, audit.ActionAccessDenied, evaluationID, map[string]any{"op": "submit_scores"})
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Evaluations.SubmitScores(r.Context(), evaluationID, record.MatrixID, payload.Scores, principal.EmployeeID)
	if err != nil {
		var invalid *evaluation.ValidationError
		switch {
		case errors.As(err, &invalid):
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: invalid.Field, Reason: invalid.Reason}})
		case errors.Is(err, evaluation.ErrNoScoreInputs):
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "scores", Reason: "at least one score is required"}})
		case errors.Is(err, evaluation.ErrEvaluationNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		default:
			slog.Warn("score submission failed", "err", err, "evaluationId", evaluationID)
			api.Fail(w, http.StatusInternalServerError, "score_submit_error", "could not store scores", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.Metrics.RecordScoreSubmission()
	h.recordAudit(r, principal.EmployeeID, audit.ActionScoresSubmitted, evaluationID, map[string]any{
		"overall":      result.OverallScore,
		"criticalZero": result.CriticalZero,
	})

	if idemKey != "" {
		response, err := json.Marshal(result)
		if err == nil {
			err = h.Idem.Save(r.Context(), principal.EmployeeID, idemEndpoint, idemKey, requestHash, response)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "err", err, "evaluationId", evaluationID)
		}
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

// requireReadable authenticates the principal, loads the evaluation and runs
// the read decision. Denied reads surface as not-found so callers cannot
// probe for evaluation ids.
func (h *Handler) requireReadable(w http.ResponseWriter, r *http.Request) (middleware.Principal, evaluation.Evaluation, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, evaluation.Evaluation{}, false
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	record, found, err := h.Evaluations.EvaluationByID(r.Context(), evaluationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_read_error", "could not load evaluation", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, evaluation.Evaluation{}, false
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, evaluation.Evaluation{}, false
	}

	allowed, err := h.Access.CanAccessEvaluation(r.Context(), principal.EmployeeID, evaluationID, record.Kind)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, evaluation.Evaluation{}, false
	}
	h.Metrics.RecordDecision("access_evaluation", allowed)
	if !allowed {
		h.recordAudit(r, principal.EmployeeID, audit.ActionAccessDenied, evaluationID, map[string]any{"op": "read_evaluation"})
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return middleware.Principal{}, evaluation.Evaluation{}, false
	}
	return principal, record, true
}

// actorRole maps the caller onto the transition table. The relationship to
// the evaluation wins over the directory role so that a manager acknowledging
// their own review acts as the employee, not as a manager.
func (h *Handler) actorRole(r *http.Request, record evaluation.Evaluation, actorID string) (hierarchy.Role, error) {
	info, err := h.Resolver.GetRoleInfo(r.Context(), actorID)
	if err != nil {
		return "", err
	}
	if info != nil && info.Role.Elevated() {
		return info.Role, nil
	}
	if actorID == record.EmployeeID {
		return hierarchy.RoleEmployee, nil
	}
	if actorID == record.EvaluatorID {
		return hierarchy.RoleManager, nil
	}
	if info == nil {
		return hierarchy.RoleEmployee, nil
	}
	return info.Role, nil
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, detail map[string]any) {
	if err := h.Audit.Record(r.Context(), actorID, action, "evaluation", entityID, middleware.GetRequestID(r.Context()), detail); err != nil {
		slog.Warn("audit record failed", "err", err, "action", action)
	}
}
