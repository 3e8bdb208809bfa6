// internal/handlers/client/client_handler.go
package client

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
	"atriumcrm-service/internal/middleware"
	"atriumcrm-service/internal/pkg/response"
	service "atriumcrm-service/internal/service/client"
)

type ClientHandler struct {
	clientService *service.ClientService
}

func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// CreateClient creates a new client record
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req client.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.clientService.CreateClient(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create client")
		return
	}

	response.Success(c, http.StatusCreated, "client created successfully", result)
}

// GetClient retrieves a client with its contact numbers
func (h *ClientHandler) GetClient(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	result, err := h.clientService.GetClient(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err, "client not found")
		return
	}

	response.Success(c, http.StatusOK, "client retrieved", result)
}

// ListClients retrieves clients with search and pagination
func (h *ClientHandler) ListClients(c *gin.Context) {
	var filters client.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err, "failed to list clients")
		return
	}

	response.Success(c, http.StatusOK, "clients retrieved", result)
}

// UpdateClient applies a partial update to a client
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	var req client.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.clientService.UpdateClient(c.Request.Context(), clientID, &req)
	if err != nil {
		response.FromError(c, err, "failed to update client")
		return
	}

	response.Success(c, http.StatusOK, "client updated", result)
}

// DeleteClient removes a client and its contact numbers
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), clientID); err != nil {
		response.FromError(c, err, "failed to delete client")
		return
	}

	response.Success(c, http.StatusOK, "client deleted", nil)
}

// AddPhone attaches a contact number to a client
func (h *ClientHandler) AddPhone(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	var req client.AddPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.clientService.AddPhone(c.Request.Context(), clientID, &req)
	if err != nil {
		response.FromError(c, err, "failed to add phone")
		return
	}

	response.Success(c, http.StatusCreated, "phone added", result)
}

// RemovePhone detaches a contact number from a client
func (h *ClientHandler) RemovePhone(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	phoneID, err := pathID(c, "phoneId")
	if err != nil {
		response.ValidationError(c, "invalid phone ID", err)
		return
	}

	if err := h.clientService.RemovePhone(c.Request.Context(), clientID, phoneID); err != nil {
		response.FromError(c, err, "failed to remove phone")
		return
	}

	response.Success(c, http.StatusOK, "phone removed", nil)
}

// ListNotes retrieves the notes on a client, newest first
func (h *ClientHandler) ListNotes(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	result, err := h.clientService.ListNotes(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err, "failed to list notes")
		return
	}

	response.Success(c, http.StatusOK, "notes retrieved", result)
}

// AddNote records a note authored by the authenticated user
func (h *ClientHandler) AddNote(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	authorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req related.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.clientService.AddNote(c.Request.Context(), clientID, authorID, &req)
	if err != nil {
		response.FromError(c, err, "failed to add note")
		return
	}

	response.Success(c, http.StatusCreated, "note added", result)
}

// ListCases retrieves the support cases attached to a client
func (h *ClientHandler) ListCases(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	result, err := h.clientService.ListCases(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err, "failed to list cases")
		return
	}

	response.Success(c, http.StatusOK, "cases retrieved", result)
}

// CreateCase opens a support case for a client
func (h *ClientHandler) CreateCase(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	var req related.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.clientService.CreateCase(c.Request.Context(), clientID, &req)
	if err != nil {
		response.FromError(c, err, "failed to create case")
		return
	}

	response.Success(c, http.StatusCreated, "case created", result)
}

// ListDocuments retrieves document metadata attached to a client
func (h *ClientHandler) ListDocuments(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	result, err := h.clientService.ListDocuments(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err, "failed to list documents")
		return
	}

	response.Success(c, http.StatusOK, "documents retrieved", result)
}

// ListLeads retrieves lead references pointing at a client
func (h *ClientHandler) ListLeads(c *gin.Context) {
	clientID, err := pathID(c, "id")
	if err != nil {
		response.ValidationError(c, "invalid client ID", err)
		return
	}

	result, err := h.clientService.ListLeads(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err, "failed to list leads")
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved", result)
}

func pathID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
