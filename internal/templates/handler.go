// Package templates manages the share-post image templates kept in S3.
package templates

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orionfest/backend/pkg/response"
	"github.com/orionfest/backend/pkg/storage"
)

// DefaultShareTemplate is the template used for automatic post-registration shares.
const DefaultShareTemplate = "ticket"

// Handler handles admin share-template endpoints.
type Handler struct {
	store  *storage.S3
	logger *zap.Logger
}

// NewHandler creates a share-template handler.
func NewHandler(store *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Upload handles POST /api/share-templates (admin): stores a named template
// image used for share posts.
func (h *Handler) Upload(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		name = DefaultShareTemplate
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.BadRequest(c, "missing image file")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxTemplateFileSize {
		response.BadRequest(c, "image exceeds 5MB limit")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if _, ok := storage.AllowedTemplateTypes[contentType]; !ok {
		response.BadRequest(c, "unsupported image type (jpeg, png or webp)")
		return
	}

	key, err := h.store.UploadTemplate(c.Request.Context(), name, contentType, file)
	if err != nil {
		h.logger.Error("template upload failed", zap.Error(err))
		response.Internal(c, "failed to upload template")
		return
	}

	url, err := h.store.TemplateURL(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("template presign failed", zap.Error(err))
	}
	response.Created(c, gin.H{"name": name, "key": key, "url": url})
}

// Images resolves the default share template to a fetchable URL for
// automatic share posts.
type Images struct {
	store *storage.S3
}

// NewImages creates an image source over the template store.
func NewImages(store *storage.S3) *Images {
	return &Images{store: store}
}

// ShareImageURL returns a pre-signed URL for the default share template.
func (i *Images) ShareImageURL(ctx context.Context) (string, error) {
	key, err := i.store.FindTemplateKey(ctx, DefaultShareTemplate)
	if err != nil {
		return "", err
	}
	return i.store.TemplateURL(ctx, key)
}
