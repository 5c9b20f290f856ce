package http

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/payrisk/merchant-risk/internal/application"
	"github.com/payrisk/merchant-risk/internal/domain"
	"github.com/payrisk/merchant-risk/internal/infrastructure/token"
	"go.uber.org/zap"
)

var (
	applicationsTotal     = expvar.NewInt("applications_total")
	applicationsScored    = expvar.NewInt("applications_scored")
	applicationsFailed    = expvar.NewInt("applications_failed")
	applicationsAnalyzing = expvar.NewInt("applications_analyzing")
)

type Handlers struct {
	submitUseCase   *application.SubmitApplicationUseCase
	getUseCase      *application.GetAssessmentUseCase
	dispatchUseCase *application.DispatchReportUseCase
	reportStorage   domain.ReportStorage
	tokenSigner     *token.Signer
	scoreWaitSec    int
	apiURL          string
	logger          *zap.SugaredLogger
	validator       *validator.Validate
}

func NewHandlers(
	submitUseCase *application.SubmitApplicationUseCase,
	getUseCase *application.GetAssessmentUseCase,
	dispatchUseCase *application.DispatchReportUseCase,
	reportStorage domain.ReportStorage,
	tokenSigner *token.Signer,
	scoreWaitSec int,
	apiURL string,
	logger *zap.SugaredLogger,
) *Handlers {
	return &Handlers{
		submitUseCase:   submitUseCase,
		getUseCase:      getUseCase,
		dispatchUseCase: dispatchUseCase,
		reportStorage:   reportStorage,
		tokenSigner:     tokenSigner,
		scoreWaitSec:    scoreWaitSec,
		apiURL:          apiURL,
		logger:          logger,
		validator:       validator.New(),
	}
}

// SubmitApplication handles POST /v1/applications
//
//	@Summary		Submit merchant application
//	@Description	Submits a merchant onboarding application and starts risk analysis
//	@Tags			risk
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SubmitApplicationRequest	true	"Application"
//	@Success		200		{object}	AssessmentResponse
//	@Success		202		{object}	SubmitAcceptedResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/applications [post]
func (h *Handlers) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	applicationsTotal.Add(1)

	var req SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("validation failed: %v", err))
		return
	}

	app, err := h.submitUseCase.Execute(r.Context(), req.ToCompany(), req.ToPerson(), req.ToDocuments())
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.respondError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		h.logger.Errorw("failed to submit application", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to submit application")
		return
	}

	applicationsAnalyzing.Add(1)
	h.logger.Infow("application accepted", "application_id", app.ID)

	// bounded wait: return the scored assessment if analysis finishes in
	// time, otherwise hand back a poll URL
	deadline := time.After(time.Duration(h.scoreWaitSec) * time.Second)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			applicationsAnalyzing.Add(-1)
			return

		case <-deadline:
			applicationsAnalyzing.Add(-1)
			h.respondJSON(w, http.StatusAccepted, SubmitAcceptedResponse{
				ApplicationID: app.ID,
				Status:        "analyzing",
				Message:       "Application is being analyzed. Use the poll_url to check status.",
				PollURL:       fmt.Sprintf("%s/v1/applications/%s", h.apiURL, app.ID),
			})
			return

		case <-ticker.C:
			view, err := h.getUseCase.Execute(r.Context(), app.ID)
			if err != nil {
				h.logger.Warnw("failed to poll application", "application_id", app.ID, "error", err)
				continue
			}

			switch view.Application.Status {
			case domain.StatusScored, domain.StatusReportDispatched:
				applicationsAnalyzing.Add(-1)
				applicationsScored.Add(1)
				h.respondAssessment(w, http.StatusOK, view)
				return
			case domain.StatusFailed:
				applicationsAnalyzing.Add(-1)
				applicationsFailed.Add(1)
				h.respondError(w, http.StatusBadGateway, fmt.Sprintf("risk analysis failed: %s", view.Application.ErrorMessage))
				return
			}
		}
	}
}

// GetApplication handles GET /v1/applications/{application_id}
//
//	@Summary		Get application status
//	@Description	Retrieves the lifecycle state and, once scored, the risk assessment
//	@Tags			risk
//	@Produce		json
//	@Param			application_id	path		string	true	"Application ID"
//	@Success		200				{object}	AssessmentResponse
//	@Success		202				{object}	SubmitAcceptedResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Router			/applications/{application_id} [get]
func (h *Handlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "application_id")
	if applicationID == "" {
		h.respondError(w, http.StatusBadRequest, "application_id is required")
		return
	}

	view, err := h.getUseCase.Execute(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			h.respondError(w, http.StatusNotFound, "application not found")
			return
		}
		h.logger.Errorw("failed to get application", "application_id", applicationID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get application")
		return
	}

	switch view.Application.Status {
	case domain.StatusSubmitted, domain.StatusAnalyzing:
		h.respondJSON(w, http.StatusAccepted, SubmitAcceptedResponse{
			ApplicationID: applicationID,
			Status:        string(view.Application.Status),
			Message:       "Application is being analyzed.",
			PollURL:       fmt.Sprintf("%s/v1/applications/%s", h.apiURL, applicationID),
		})
	case domain.StatusFailed:
		h.respondError(w, http.StatusBadGateway, fmt.Sprintf("risk analysis failed: %s", view.Application.ErrorMessage))
	default:
		h.respondAssessment(w, http.StatusOK, view)
	}
}

// DispatchReport handles POST /v1/applications/{application_id}/report
//
//	@Summary		Dispatch assessment report
//	@Description	Delivers the risk report to the given recipients
//	@Tags			risk
//	@Accept			json
//	@Produce		json
//	@Param			application_id	path		string					true	"Application ID"
//	@Param			request			body		DispatchReportRequest	true	"Recipients"
//	@Success		200				{object}	DispatchReportResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Router			/applications/{application_id}/report [post]
func (h *Handlers) DispatchReport(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "application_id")
	if applicationID == "" {
		h.respondError(w, http.StatusBadRequest, "application_id is required")
		return
	}

	var req DispatchReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("validation failed: %v", err))
		return
	}

	results, err := h.dispatchUseCase.Execute(r.Context(), applicationID, req.ToRecipients())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			h.respondError(w, http.StatusNotFound, "application not found")
		case errors.Is(err, domain.ErrAssessmentNotReady):
			h.respondError(w, http.StatusConflict, "assessment is not ready for dispatch")
		default:
			h.logger.Errorw("failed to dispatch report", "application_id", applicationID, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to dispatch report")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, DispatchReportResponse{
		ApplicationID: applicationID,
		Results:       ToDispatchResultDTOs(results),
	})
}

// GetReport handles GET /v1/report/{token}
//
//	@Summary		Download report
//	@Description	Downloads or redirects to the PDF report
//	@Tags			risk
//	@Produce		application/pdf
//	@Param			token	path		string	true	"Report token"
//	@Success		200		{file}		binary
//	@Success		302		{string}	string	"Redirect to presigned URL"
//	@Failure		404		{object}	ErrorResponse
//	@Failure		410		{object}	ErrorResponse
//	@Router			/report/{token} [get]
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	tokenStr := chi.URLParam(r, "token")
	if tokenStr == "" {
		h.respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	reportKey, err := h.tokenSigner.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			h.respondError(w, http.StatusGone, "report link expired")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid token")
		return
	}

	// presigned URL when the storage backend supports it
	presignedURL, err := h.reportStorage.PresignGet(r.Context(), reportKey, 5*time.Minute)
	if err == nil && presignedURL != "" {
		http.Redirect(w, r, presignedURL, http.StatusFound)
		return
	}

	data, err := h.reportStorage.Get(r.Context(), reportKey)
	if err != nil {
		switch {
		case contains(err, "not found"):
			h.respondError(w, http.StatusNotFound, "report not found")
		case contains(err, "expired"):
			h.respondError(w, http.StatusGone, "report expired")
		default:
			h.logger.Errorw("failed to get report", "report_key", reportKey, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to get report")
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", reportKey))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handlers) respondAssessment(w http.ResponseWriter, status int, view *application.AssessmentView) {
	resp := AssessmentResponse{
		ApplicationID: view.Application.ID,
		Status:        string(view.Application.Status),
	}

	if view.Assessment != nil {
		resp.CompositeScore = view.Assessment.CompositeScore
		resp.RiskCategory = string(view.Assessment.Category)
		resp.Summary = view.Assessment.Summary
		resp.Findings = ToFindingDTOs(view.Assessment.Findings)
		resp.Recommendations = view.Assessment.Recommendations

		if view.Assessment.ReportKey != "" {
			signed := h.tokenSigner.Sign(view.Assessment.ReportKey, 24*time.Hour)
			resp.PDFURL = fmt.Sprintf("%s/v1/report/%s", h.apiURL, signed)
		}
	}

	h.respondJSON(w, status, resp)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

func contains(err error, substr string) bool {
	return err != nil && strings.Contains(err.Error(), substr)
}
