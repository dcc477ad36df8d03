// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/util"
)

// maxUploadSize limits gallery uploads to 20 MB.
const maxUploadSize = 20 << 20

// mediaView is the JSON shape of one gallery upload.
type mediaView struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Width     int64     `json:"width"`
	Height    int64     `json:"height"`
	URL       string    `json:"url"`
	ThumbURL  string    `json:"thumb_url"`
	WebURL    string    `json:"web_url"`
	CreatedAt time.Time `json:"created_at"`
}

func toMediaView(m store.Media) mediaView {
	return mediaView{
		ID:        m.ID,
		UUID:      m.Uuid,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Width:     m.Width,
		Height:    m.Height,
		URL:       "/uploads/originals/" + m.Uuid + "/" + m.Filename,
		ThumbURL:  "/uploads/thumb/" + m.Uuid + "/" + m.ThumbFilename,
		WebURL:    "/uploads/web/" + m.Uuid + "/" + m.Filename,
		CreatedAt: m.CreatedAt,
	}
}

// ListMedia handles GET /api/v1/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := h.queries.ListMedia(r.Context())
	if err != nil {
		WriteInternalError(w, "failed to list media")
		return
	}

	views := make([]mediaView, 0, len(media))
	for _, m := range media {
		views = append(views, toMediaView(m))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

// UploadMedia handles POST /api/v1/media. It accepts one multipart
// image under the "file" field, normalizes it and creates the gallery
// renditions.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "file is too large or the form is malformed", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "missing file field", nil)
		return
	}
	defer file.Close()

	// Sniff the real content type instead of trusting the client.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		WriteInternalError(w, "failed to read upload")
		return
	}
	head = head[:n]

	mimeType := h.processor.DetectMimeType(head)
	if !h.processor.IsImage(mimeType) {
		WriteValidationError(w, map[string]string{"file": "only JPEG, PNG, GIF and WebP images are accepted"})
		return
	}

	id := uuid.NewString()
	filename := sanitizeUploadName(header.Filename, mimeType)
	reader := io.MultiReader(bytes.NewReader(head), file)

	result, err := h.processor.ProcessImage(reader, id, filename)
	if err != nil {
		_ = h.events.LogSystemEvent(ctx, service.EventLevelWarning,
			"image processing failed: "+err.Error(),
			middleware.GetUserIDPtr(r), util.ClientIP(r),
			map[string]any{"filename": header.Filename})
		WriteValidationError(w, map[string]string{"file": "image could not be processed"})
		return
	}

	variants, err := h.processor.CreateAllVariants(result.FilePath, id, filename)
	if err != nil {
		_ = h.processor.DeleteMediaFiles(id)
		WriteInternalError(w, "failed to store upload")
		return
	}

	thumbFilename := filename
	for _, v := range variants {
		if v.Type == "thumb" {
			thumbFilename = filepath.Base(v.FilePath)
		}
	}

	media, err := h.queries.CreateMedia(ctx, store.CreateMediaParams{
		Uuid:          id,
		Filename:      filename,
		OriginalName:  header.Filename,
		MimeType:      result.MimeType,
		Size:          result.Size,
		Width:         int64(result.Width),
		Height:        int64(result.Height),
		ThumbFilename: thumbFilename,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		_ = h.processor.DeleteMediaFiles(id)
		WriteInternalError(w, "failed to store upload")
		return
	}

	WriteCreated(w, toMediaView(media))
}

// sanitizeUploadName keeps only the base name of the upload and makes
// sure the extension matches the detected type.
func sanitizeUploadName(name, mimeType string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == "" {
		base = "kuva"
	}

	ext := filepath.Ext(base)
	want := extensionForMime(mimeType)
	if ext == "" || !validExtForMime(ext, mimeType) {
		base = base[:len(base)-len(ext)] + want
	}
	return base
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func validExtForMime(ext, mimeType string) bool {
	switch mimeType {
	case "image/jpeg":
		return ext == ".jpg" || ext == ".jpeg"
	default:
		return ext == extensionForMime(mimeType)
	}
}
