package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa/internal/app"
	"docqa/internal/extract"
	"docqa/internal/transport/http/middleware"
	"docqa/internal/transport/http/response"
)

type RAGHandler struct {
	ragService     *app.RAGService
	maxUploadBytes int64
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	RAGType  string `json:"rag_type"`
}

func NewRAGHandler(ragService *app.RAGService, maxUploadBytes int64) *RAGHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &RAGHandler{ragService: ragService, maxUploadBytes: maxUploadBytes}
}

// Upload accepts a multipart form carrying either a "file" part or a "url"
// field, exactly one of the two.
func (h *RAGHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	input := app.UploadInput{
		UserID: userID,
		URL:    strings.TrimSpace(c.PostForm("url")),
	}

	if file, err := c.FormFile("file"); err == nil && file != nil {
		if file.Size > h.maxUploadBytes {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
			return
		}
		f, err := file.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
			return
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
			return
		}
		input.FileContent = content
		input.Filename = file.Filename
	}

	result, err := h.ragService.Upload(c.Request.Context(), input)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *RAGHandler) writeUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrContentTooShort):
		response.Error(c, http.StatusBadRequest, response.CodeContentTooShort, err.Error())
	case errors.Is(err, extract.ErrUnsupportedFormat):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, "cannot process file; supported: txt, md, pdf")
	case errors.Is(err, extract.ErrFetchFailed):
		response.Error(c, http.StatusBadRequest, response.CodeFetchError, "cannot fetch webpage")
	case errors.Is(err, app.ErrUpstream):
		log.Printf("upload upstream failure: %v", err)
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure, "upstream service failure")
	default:
		log.Printf("upload failed: %v", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
	}
}

func (h *RAGHandler) Ask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.ragService.Ask(c.Request.Context(), app.AskInput{
		UserID:   userID,
		Question: req.Question,
		RAGType:  req.RAGType,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoActiveCorpus):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no document uploaded; upload a document or url first")
		case errors.Is(err, app.ErrUpstream):
			log.Printf("ask upstream failure: %v", err)
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure, "upstream service failure")
		default:
			log.Printf("ask failed: %v", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *RAGHandler) Status(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	status, err := h.ragService.Status(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "status failed")
		return
	}
	response.OK(c, status)
}

func (h *RAGHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	rows, err := h.ragService.History(c.Request.Context(), userID)
	if err != nil {
		log.Printf("history failed: %v", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "history failed")
		return
	}
	response.OK(c, gin.H{"history": rows})
}

func (h *RAGHandler) Clear(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.ragService.Clear(userID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear failed")
		return
	}
	response.OK(c, gin.H{"message": "cleared; ready for a new document or url"})
}
