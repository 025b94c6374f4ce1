package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragbase/internal/app"
	"ragbase/internal/transport/http/response"
)

const maxUploadSize = 25 << 20 // 25 MB

type DocumentHandler struct {
	ingestionService *app.IngestionService
}

func NewDocumentHandler(ingestionService *app.IngestionService) *DocumentHandler {
	return &DocumentHandler{ingestionService: ingestionService}
}

// Upload accepts a multipart file, registers the document and enqueues its
// ingestion. The response carries the task id for status polling.
func (h *DocumentHandler) Upload(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	assistantID, err := parseUintParam(c, "id")
	if err != nil || assistantID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid assistant id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read uploaded file failed")
		return
	}
	if len(data) > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	result, err := h.ingestionService.Upload(c.Request.Context(), app.UploadInput{
		TenantID:    tenantID,
		AssistantID: assistantID,
		Filename:    fileHeader.Filename,
		Data:        data,
	})
	if err != nil {
		h.writeError(c, err, "upload document failed")
		return
	}

	response.OK(c, gin.H{
		"document": result.Document,
		"task_id":  result.TaskID,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	assistantID, err := parseUintParam(c, "id")
	if err != nil || assistantID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid assistant id")
		return
	}
	docs, err := h.ingestionService.ListDocuments(tenantID, assistantID)
	if err != nil {
		h.writeError(c, err, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	documentID, err := parseUintParam(c, "docID")
	if err != nil || documentID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.ingestionService.DeleteDocument(c.Request.Context(), tenantID, documentID); err != nil {
		h.writeError(c, err, "delete document failed")
		return
	}
	response.OK(c, gin.H{"deleted": documentID})
}

func (h *DocumentHandler) TaskStatus(c *gin.Context) {
	if _, ok := getTenantIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	task, err := h.ingestionService.TaskStatus(c.Request.Context(), c.Param("taskID"))
	if err != nil {
		h.writeError(c, err, "fetch task status failed")
		return
	}
	if task == nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "task not found")
		return
	}
	response.OK(c, task)
}

func (h *DocumentHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrAssistantNotFound), errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
