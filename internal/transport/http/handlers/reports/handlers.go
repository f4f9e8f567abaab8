package reportshandler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"perfeval/internal/domain/access"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/domain/matrix"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
)

type Handler struct {
	Evaluations *evaluation.Service
	Matrices    *matrix.Service
	Access      *access.Engine
	ExportDir   string
}

func NewHandler(evaluations *evaluation.Service, matrices *matrix.Service, engine *access.Engine, exportDir string) *Handler {
	return &Handler{Evaluations: evaluations, Matrices: matrices, Access: engine, ExportDir: exportDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/evaluations/{evaluationID}/export", h.handleExport)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	record, found, err := h.Evaluations.EvaluationByID(r.Context(), evaluationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_read_error", "could not load evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}

	allowed, err := h.Access.CanAccessEvaluation(r.Context(), principal.EmployeeID, evaluationID, record.Kind)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "access_error", "access check failed", middleware.GetRequestID(r.Context()))
		return
	}
	if !allowed {
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}

	matrixRecord, _, err := h.Matrices.MatrixByID(r.Context(), record.MatrixID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matrix_read_error", "could not load matrix", middleware.GetRequestID(r.Context()))
		return
	}
	scores, err := h.Evaluations.ScoresByEvaluation(r.Context(), evaluationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "score_read_error", "could not load scores", middleware.GetRequestID(r.Context()))
		return
	}
	criteria, err := h.Matrices.CriteriaByMatrix(r.Context(), record.MatrixID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matrix_read_error", "could not load criteria", middleware.GetRequestID(r.Context()))
		return
	}

	filePath, err := h.generatePDF(record, matrixRecord, criteria, scores)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_error", "could not generate report", middleware.GetRequestID(r.Context()))
		return
	}

	http.ServeFile(w, r, filePath)
}

func (h *Handler) generatePDF(record evaluation.Evaluation, matrixRecord matrix.Matrix, criteria []matrix.Criterion, scores []evaluation.CriterionScore) (string, error) {
	if err := os.MkdirAll(h.ExportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(h.ExportDir, record.ID+".pdf")

	names := make(map[string]string, len(criteria))
	for _, criterion := range criteria {
		names[criterion.ID] = criterion.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Evaluation Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Matrix: %s", matrixRecord.Title))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", record.EmployeeID))
	pdf.Ln(7)
	if record.EvaluatorID != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Evaluator: %s", record.EvaluatorID))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Kind: %s    Status: %s", record.Kind, record.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Window: %s to %s",
		matrixRecord.ValidFrom.Format("2006-01-02"), matrixRecord.ValidTo.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Scores")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, score := range scores {
		name := names[score.CriterionID]
		if name == "" {
			name = score.CriterionID
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s: achieved %.2f%%, weight %.2f, weighted %.2f",
			name, score.AchievementPercentage, score.WeightAtEvaluation, score.FinalWeightedScore))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	if record.TotalWeightedScore != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Total weighted score: %.2f", *record.TotalWeightedScore))
	} else {
		pdf.Cell(0, 8, "Total weighted score: not yet computed")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
