package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
)

const (
	MaxImageBytes  = 10 * 1024 * 1024 // content images
	MaxAvatarBytes = 5 * 1024 * 1024  // avatars
)

// allowedImageMIME is the fixed allow-list for uploaded images.
var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Uploader pushes an image to external storage and returns the URL the
// templates should embed. The domain services only consume this interface;
// tests substitute a stub.
type Uploader interface {
	Upload(data []byte, mime, folder string) (string, error)
}

// ValidateImage applies the MIME allow-list and size cap before any network
// call is made. maxBytes differs between content images and avatars.
func ValidateImage(mime string, size int64, maxBytes int64) error {
	if !allowedImageMIME[mime] {
		return ErrBadImageType
	}
	if size > maxBytes {
		return ErrImageTooLarge
	}
	return nil
}

// ReadImageUpload validates and slurps a multipart image file. A nil header
// means "no image attached" and yields nil data with no error.
func ReadImageUpload(header *multipart.FileHeader, maxBytes int64) ([]byte, string, error) {
	if header == nil {
		return nil, "", nil
	}

	mime := header.Header.Get("Content-Type")
	if err := ValidateImage(mime, header.Size, maxBytes); err != nil {
		return nil, "", err
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", ErrUploadFailed
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", ErrUploadFailed
	}
	return data, mime, nil
}

// imgurResponse mirrors the fields of the Imgur API we care about.
type imgurResponse struct {
	Data struct {
		ID   string `json:"id"`
		Link string `json:"link"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImgurUploader ships images to the Imgur API. Any transport or API failure
// is logged and normalized to ErrUploadFailed so callers never see raw
// infrastructure errors.
type ImgurUploader struct {
	ClientID string
	Endpoint string
	client   *http.Client
}

func NewImgurUploader(clientID string) *ImgurUploader {
	return &ImgurUploader{
		ClientID: clientID,
		Endpoint: "https://api.imgur.com/3/image",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *ImgurUploader) Upload(data []byte, mime, folder string) (string, error) {
	if u.ClientID == "" {
		log.Println("IMGUR_CLIENT_ID not configured, rejecting upload")
		return "", ErrUploadFailed
	}

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64.StdEncoding.EncodeToString(data)); err != nil {
		return "", ErrUploadFailed
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return "", ErrUploadFailed
	}
	// Folder is advisory; Imgur has no folders, so it only prefixes the name.
	if err := writer.WriteField("name", folder+"-"+uuid.NewString()); err != nil {
		return "", ErrUploadFailed
	}
	writer.Close()

	req, err := http.NewRequest("POST", u.Endpoint, &requestBody)
	if err != nil {
		return "", ErrUploadFailed
	}
	req.Header.Set("Authorization", "Client-ID "+u.ClientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		log.Printf("Image upload request failed: %v", err)
		return "", ErrUploadFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrUploadFailed
	}

	var parsed imgurResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Printf("Image upload: bad response: %v", err)
		return "", ErrUploadFailed
	}
	if !parsed.Success || parsed.Data.ID == "" || parsed.Data.Link == "" {
		log.Printf("Image upload rejected by host: status %d", parsed.Status)
		return "", ErrUploadFailed
	}

	// Store the app-origin proxy path, not the host link, so pages never
	// embed the image host directly.
	return "/img/" + parsed.Data.ID + path.Ext(parsed.Data.Link), nil
}
