package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ImageHandler proxies uploaded images through the app origin so thread
// and comment templates never embed third-party hosts directly.
type ImageHandler struct{}

func NewImageHandler() *ImageHandler {
	return &ImageHandler{}
}

// Proxy streams an uploaded image from the image host (GET /img/:id).
func (h *ImageHandler) Proxy(c *gin.Context) {
	imageID := c.Param("id")
	if imageID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	ext := filepath.Ext(imageID)
	id := strings.TrimSuffix(imageID, ext)
	if ext == "" {
		ext = ".jpg"
	}

	upstream := fmt.Sprintf("https://i.imgur.com/%s%s", id, ext)

	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequest("GET", upstream, nil)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Status(resp.StatusCode)
		return
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Header("Cache-Control", "public, max-age=604800")

	c.Status(http.StatusOK)
	io.Copy(c.Writer, resp.Body)
}
