package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// All endpoints answer with the {success, data|error} envelope.

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// posterURLPath is where the static file route serves stored posters from.
const posterURLPath = "/assets/images/poster/stories"

// posterLink builds the public URL for a stored poster filename, nil when
// the story has no poster.
func posterLink(c *gin.Context, filename *string) *string {
	if filename == nil || *filename == "" {
		return nil
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s%s/%s", scheme, c.Request.Host, posterURLPath, *filename)
	return &link
}

// savePoster stores an uploaded image under dir with a uuid-based filename
// and returns the stored name. Only the filename is persisted with the
// story; the bytes live on disk.
func savePoster(c *gin.Context, fh *multipart.FileHeader, dir string) (string, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("save poster: %w", err)
	}
	return name, nil
}

// readUploadedText reads an uploaded chapter file body as UTF-8 text.
func readUploadedText(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return string(b), nil
}

// chapterTitleFromName derives a chapter title from an uploaded filename
// by stripping the extension.
func chapterTitleFromName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
