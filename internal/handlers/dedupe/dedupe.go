// internal/handlers/dedupe/dedupe_handler.go
package dedupe

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/middleware"
	"atriumcrm-service/internal/pkg/response"
	"atriumcrm-service/internal/service/dedupe"
)

type DedupeHandler struct {
	detector *dedupe.Detector
	merger   *dedupe.Merger
}

func NewDedupeHandler(detector *dedupe.Detector, merger *dedupe.Merger) *DedupeHandler {
	return &DedupeHandler{
		detector: detector,
		merger:   merger,
	}
}

// GetConflicts lists potential duplicates of the given client
func (h *DedupeHandler) GetConflicts(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	conflicts, err := h.detector.DetectConflicts(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err, "failed to detect conflicts")
		return
	}

	response.Success(c, http.StatusOK, "conflicts retrieved", &client.ConflictsResponse{
		Conflicts: conflicts,
	})
}

// MergeClient absorbs the duplicate named in the body into the client on the
// path. On success the duplicate no longer exists.
func (h *DedupeHandler) MergeClient(c *gin.Context) {
	mainID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	actingUserID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req client.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.merger.MergeClients(c.Request.Context(), mainID, req.SecondaryClientID, actingUserID); err != nil {
		response.FromError(c, err, "failed to merge clients")
		return
	}

	response.Success(c, http.StatusOK, "clients merged", gin.H{
		"main_client_id":      mainID,
		"secondary_client_id": req.SecondaryClientID,
	})
}
