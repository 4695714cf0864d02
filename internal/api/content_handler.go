package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/models"
)

// ContentHandler handles sections, documents, images and notes.
type ContentHandler struct {
	contentService core.ContentService
	logger         *zap.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(cs core.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{contentService: cs, logger: logger}
}

// mapContentErrorToStatus maps content errors to HTTP responses.
func (h *ContentHandler) mapContentErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrPropertyNotFound.Error()})
	case errors.Is(err, core.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrSectionNotFound.Error()})
	case errors.Is(err, core.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrDocumentNotFound.Error()})
	case errors.Is(err, core.ErrImageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrImageNotFound.Error()})
	case errors.Is(err, core.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrNoteNotFound.Error()})
	case errors.Is(err, core.ErrSectionMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrSectionMismatch.Error()})
	default:
		h.logger.Error("content endpoint failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// requiredPropertyQuery reads the ?property= query parameter, writing a 400
// if it is missing.
func requiredPropertyQuery(c *gin.Context) (string, bool) {
	propertyID := c.Query("property")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "property query parameter is required"})
		return "", false
	}
	return propertyID, true
}

// --- Sections ---

// CreateSection handles POST /sections.
func (h *ContentHandler) CreateSection(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	var req models.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	section, err := h.contentService.CreateSection(c.Request.Context(), user.ID, req)
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// ListSections handles GET /sections?property=.
func (h *ContentHandler) ListSections(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID, ok := requiredPropertyQuery(c)
	if !ok {
		return
	}

	sections, err := h.contentService.ListSections(c.Request.Context(), user.ID, propertyID)
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// DeleteSection handles DELETE /sections/:sectionId.
func (h *ContentHandler) DeleteSection(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteSection(c.Request.Context(), user.ID, c.Param("sectionId")); err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Section deleted"})
}

// --- Documents ---

// CreateDocument handles POST /documents (multipart: property_id,
// section_id, file).
func (h *ContentHandler) CreateDocument(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	propertyID := c.PostForm("property_id")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "property_id form field is required"})
		return
	}
	sectionID := c.PostForm("section_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file form field is required", Details: err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uploaded file could not be read", Details: err.Error()})
		return
	}
	defer file.Close()

	doc, err := h.contentService.CreateDocument(c.Request.Context(), user.ID, propertyID, sectionID, fileHeader.Filename, file)
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ListDocuments handles GET /documents?property=&section=.
func (h *ContentHandler) ListDocuments(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID, ok := requiredPropertyQuery(c)
	if !ok {
		return
	}

	documents, err := h.contentService.ListDocuments(c.Request.Context(), user.ID, propertyID, c.Query("section"))
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, documents)
}

// DeleteDocument handles DELETE /documents/:documentId.
func (h *ContentHandler) DeleteDocument(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteDocument(c.Request.Context(), user.ID, c.Param("documentId")); err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Document deleted"})
}

// --- Images ---

// CreateImage handles POST /images (multipart: property_id, section_id, file).
func (h *ContentHandler) CreateImage(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	propertyID := c.PostForm("property_id")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "property_id form field is required"})
		return
	}
	sectionID := c.PostForm("section_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file form field is required", Details: err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uploaded file could not be read", Details: err.Error()})
		return
	}
	defer file.Close()

	img, err := h.contentService.CreateImage(c.Request.Context(), user.ID, propertyID, sectionID, fileHeader.Filename, file)
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

// ListImages handles GET /images?property=&section=.
func (h *ContentHandler) ListImages(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID, ok := requiredPropertyQuery(c)
	if !ok {
		return
	}

	images, err := h.contentService.ListImages(c.Request.Context(), user.ID, propertyID, c.Query("section"))
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// DeleteImage handles DELETE /images/:imageId.
func (h *ContentHandler) DeleteImage(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteImage(c.Request.Context(), user.ID, c.Param("imageId")); err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Image deleted"})
}

// --- Notes ---

// CreateNote handles POST /notes.
func (h *ContentHandler) CreateNote(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	note, err := h.contentService.CreateNote(c.Request.Context(), user.ID, req)
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /notes?property=.
func (h *ContentHandler) ListNotes(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID, ok := requiredPropertyQuery(c)
	if !ok {
		return
	}

	notes, err := h.contentService.ListNotes(c.Request.Context(), user.ID, propertyID)
	if err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// DeleteNote handles DELETE /notes/:noteId.
func (h *ContentHandler) DeleteNote(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteNote(c.Request.Context(), user.ID, c.Param("noteId")); err != nil {
		h.mapContentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Note deleted"})
}
