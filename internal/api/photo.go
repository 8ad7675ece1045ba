package api

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealdiary/backend/internal/service"
)

// maxPhotoSize bounds one uploaded meal photo.
const maxPhotoSize = 10 << 20

// PhotoHandler accepts meal photo uploads and stores them in S3. The
// returned key is attached to a meal log via photo_paths.
type PhotoHandler struct {
	photoService service.IPhotoService
}

func NewPhotoHandler(photoService service.IPhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

func (h *PhotoHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/photos", h.UploadPhoto)
}

func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key, err := h.photoService.UploadMealPhoto(c.Request.Context(), userID, data, contentType)
	if err != nil {
		log.Printf("[Photo] upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
		return
	}

	url, err := h.photoService.PhotoURL(c.Request.Context(), key)
	if err != nil {
		log.Printf("[Photo] presign failed: %v", err)
		url = ""
	}

	c.JSON(http.StatusCreated, gin.H{"photo_path": key, "photo_url": url})
}
