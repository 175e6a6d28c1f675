package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procflow/approval_flow_app/internal/apperrors"
	"github.com/procflow/approval_flow_app/internal/core/domain"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
	"github.com/procflow/approval_flow_app/internal/dto"
	"github.com/procflow/approval_flow_app/internal/middleware"
)

// approvalHandler handles HTTP requests for approval flows and signing.
type approvalHandler struct {
	signing  portssvc.SigningSvcFacade
	docState portssvc.DocumentStateSvcFacade
}

// newApprovalHandler creates a new approvalHandler.
func newApprovalHandler(signing portssvc.SigningSvcFacade, docState portssvc.DocumentStateSvcFacade) *approvalHandler {
	return &approvalHandler{
		signing:  signing,
		docState: docState,
	}
}

// respondError maps a service error to its HTTP status and a {detail} body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	detail := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, detail = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrValidation):
		status, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status, detail = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrNotEligible),
		errors.Is(err, apperrors.ErrSubstitutionNotConfirmed):
		status, detail = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrAlreadySigned),
		errors.Is(err, apperrors.ErrStepLocked),
		errors.Is(err, apperrors.ErrInvalidTarget),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict):
		status, detail = http.StatusConflict, err.Error()
	}

	if status == http.StatusInternalServerError {
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.ErrorResponse{Detail: detail})
}

// callerIdentity fetches the authenticated identity, or writes a 401 and
// reports false.
func callerIdentity(c *gin.Context, logger *slog.Logger) (domain.Identity, bool) {
	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Identity not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Detail: "Unauthorized"})
		return domain.Identity{}, false
	}
	return identity, true
}

// getDocument godoc
// @Summary Get a document's lifecycle state
// @Description Retrieves the parent document with its denormalized approval state
// @Tags approval
// @Produce json
// @Param docType path string true "Document kind (docfunda, ordonantare, paap)"
// @Param docId path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId} [get]
func (h *approvalHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")

	doc, err := h.docState.GetDocument(c.Request.Context(), docType, docID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// listApprovalFlows godoc
// @Summary List the approval flows of a document
// @Description Retrieves every approval flow of the document in step order
// @Tags approval
// @Produce json
// @Param docType path string true "Document kind"
// @Param docId path string true "Document ID"
// @Success 200 {array} dto.FlowResponse
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId}/approval-flows [get]
func (h *approvalHandler) listApprovalFlows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")

	flows, err := h.signing.ListFlows(c.Request.Context(), docType, docID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFlowResponses(flows))
}

// createApprovalFlows godoc
// @Summary Create the approval flows of a document
// @Description Fans out one flow per configured step. Calling again for a document that already has flows returns the existing ones unchanged.
// @Tags approval
// @Produce json
// @Param docType path string true "Document kind"
// @Param docId path string true "Document ID"
// @Success 200 {object} dto.CreateFlowsResponse "Flows already existed"
// @Success 201 {object} dto.CreateFlowsResponse "Flows created"
// @Failure 404 {object} dto.ErrorResponse "Document or flow template not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId}/create-approval-flows [post]
func (h *approvalHandler) createApprovalFlows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")

	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	flows, created, err := h.signing.CreateFlows(c.Request.Context(), docType, docID, identity)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	status := http.StatusOK
	message := "Approval flows already exist"
	if created {
		status = http.StatusCreated
		message = "Approval flows created"
		logger.Info("Approval flows created",
			slog.String("doc_type", docType),
			slog.String("doc_id", docID),
			slog.Int("flow_count", len(flows)))
	}
	c.JSON(status, dto.CreateFlowsResponse{Message: message, Flows: dto.ToFlowResponses(flows)})
}

// signStep godoc
// @Summary Sign one approval step of a document
// @Description Appends the caller's signature to the step's flow and recomputes completion
// @Tags approval
// @Accept json
// @Produce json
// @Param docType path string true "Document kind"
// @Param docId path string true "Document ID"
// @Param stepType path string true "Step type (a, b or c)"
// @Param body body dto.SignFlowRequest true "Signature details"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller not eligible, or substitution not confirmed"
// @Failure 404 {object} dto.ErrorResponse "Document or flow not found"
// @Failure 409 {object} dto.ErrorResponse "Already signed, step locked, or flow completed/cancelled"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId}/sign/{stepType} [post]
func (h *approvalHandler) signStep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")

	stepParam := dto.StepTypeParam{}
	if err := c.ShouldBindUri(&stepParam); err != nil {
		logger.Warn("Invalid step type", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid step type"})
		return
	}
	stepType := stepParam.StepType

	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	signReq := dto.SignFlowRequest{}
	if err := c.ShouldBindJSON(&signReq); err != nil {
		logger.Error("Failed to bind JSON for sign request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request format"})
		return
	}

	flow, err := h.signing.Sign(c.Request.Context(), docType, docID, stepType, identity, signReq)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Step signed",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID),
		slog.String("step_type", stepType),
		slog.Bool("step_completed", flow.IsCompleted))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Documentul a fost semnat"})
}

// removeSignature godoc
// @Summary Remove a user's signature from a step
// @Description Administrators only. Removes the signature and recomputes completion; a completed step may reopen.
// @Tags approval
// @Produce json
// @Param docType path string true "Document kind"
// @Param docId path string true "Document ID"
// @Param stepType path string true "Step type"
// @Param userId path string true "User whose signature to remove"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse "Caller is not an administrator"
// @Failure 404 {object} dto.ErrorResponse "Flow or signature not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId}/signature/{stepType}/{userId} [delete]
func (h *approvalHandler) removeSignature(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")
	userID := c.Param("userId")

	stepParam := dto.StepTypeParam{}
	if err := c.ShouldBindUri(&stepParam); err != nil {
		logger.Warn("Invalid step type", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid step type"})
		return
	}
	stepType := stepParam.StepType

	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	flow, err := h.signing.RemoveSignature(c.Request.Context(), docType, docID, stepType, userID, identity)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Signature removed",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID),
		slog.String("step_type", stepType),
		slog.String("target_user_id", userID),
		slog.Bool("step_completed", flow.IsCompleted))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Semnătura a fost eliminată"})
}

// cancelDocument godoc
// @Summary Cancel a document's approval process
// @Description Cancels every in-progress flow and stamps the document's cancellation fields. Repeating the call changes nothing.
// @Tags approval
// @Accept json
// @Produce json
// @Param docType path string true "Document kind"
// @Param docId path string true "Document ID"
// @Param body body dto.CancelDocumentRequest true "Cancellation reason"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Missing reason"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId}/cancel [post]
func (h *approvalHandler) cancelDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")

	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	cancelReq := dto.CancelDocumentRequest{}
	if err := c.ShouldBindJSON(&cancelReq); err != nil {
		logger.Error("Failed to bind JSON for cancel request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "A cancellation reason is required"})
		return
	}

	if err := h.signing.CancelDocument(c.Request.Context(), docType, docID, cancelReq.Reason, identity); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Document cancelled",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Documentul a fost anulat"})
}

// revertDocument godoc
// @Summary Revert a document to an earlier approval step
// @Description Resets every flow strictly after the target step, preserving their signatures for audit
// @Tags approval
// @Accept json
// @Produce json
// @Param docType path string true "Document kind"
// @Param docId path string true "Document ID"
// @Param section path string true "Target step type"
// @Param body body dto.RevertDocumentRequest true "Revert reason"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Missing reason"
// @Failure 404 {object} dto.ErrorResponse "Document or target flow not found"
// @Failure 409 {object} dto.ErrorResponse "Target is ahead of current progress"
// @Failure 500 {object} dto.ErrorResponse
// @Router /approval/{docType}/{docId}/revert/{section} [post]
func (h *approvalHandler) revertDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docType := c.Param("docType")
	docID := c.Param("docId")

	sectionParam := dto.RevertSectionParam{}
	if err := c.ShouldBindUri(&sectionParam); err != nil {
		logger.Warn("Invalid target step", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid target step"})
		return
	}
	section := sectionParam.Section

	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	revertReq := dto.RevertDocumentRequest{}
	if err := c.ShouldBindJSON(&revertReq); err != nil {
		logger.Error("Failed to bind JSON for revert request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "A revert reason is required"})
		return
	}

	if err := h.signing.RevertToStep(c.Request.Context(), docType, docID, section, revertReq.Reason, identity); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Document reverted",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID),
		slog.String("target_step", section))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Documentul a revenit la pasul " + section})
}

// RegisterApprovalRoutes registers the approval flow routes. Mutation routes
// additionally pass through the rate limiter.
func RegisterApprovalRoutes(group *gin.RouterGroup, services *portssvc.ServiceContainer, rateLimit gin.HandlerFunc) {
	handler := newApprovalHandler(services.Signing, services.DocumentState)

	approval := group.Group("/approval/:docType/:docId")
	{
		approval.GET("", handler.getDocument)
		approval.GET("/approval-flows", handler.listApprovalFlows)

		approval.POST("/create-approval-flows", rateLimit, handler.createApprovalFlows)
		approval.POST("/sign/:stepType", rateLimit, handler.signStep)
		approval.DELETE("/signature/:stepType/:userId", rateLimit, handler.removeSignature)
		approval.POST("/cancel", rateLimit, handler.cancelDocument)
		approval.POST("/revert/:section", rateLimit, handler.revertDocument)
	}
}
