package sitebridge

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth    = 800
	jpegQuality      = 80
	maxSideloadBytes = 10 << 20 // 10MB
	uploadsSubdir    = "uploads"
	sideloadTimeout  = 15 * time.Second
)

// sideloadClient downloads remote featured images. The timeout keeps a slow
// image host from stalling a whole sync request.
var sideloadClient = &http.Client{Timeout: sideloadTimeout}

// sideloadFeaturedImage downloads the payload's featured image, resizes and
// re-encodes it, stores it under the uploads directory and attaches it to
// the post. The whole operation is best-effort: failures are logged but
// never surfaced in the command response.
func (a *App) sideloadFeaturedImage(postID int64, pd *PostPayload) {
	if pd.FeaturedImageURL == "" {
		return
	}
	att, data, err := a.fetchImage(pd.FeaturedImageURL)
	if err != nil {
		a.Log.Warn().Err(err).Int64("post_id", postID).Str("url", pd.FeaturedImageURL).Msg("sideload featured image")
		return
	}

	att.PostID = postID
	att.Title = sanitizeText(pd.FeaturedImageCaption)
	att.Caption = sanitizeText(pd.FeaturedImageCaption)
	a.ensureUniqueFilename(&att)

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.Log.Warn().Err(err).Msg("create uploads dir")
		return
	}
	if err := os.WriteFile(filepath.Join(dir, att.Filename), data, 0o644); err != nil {
		a.Log.Warn().Err(err).Str("filename", att.Filename).Msg("write image")
		return
	}

	attID, err := a.Store.SaveAttachment(att)
	if err != nil {
		a.Log.Warn().Err(err).Int64("post_id", postID).Msg("save attachment")
		return
	}
	if err := a.Store.SetPostMeta(postID, "_thumbnail_id", strconv.FormatInt(attID, 10)); err != nil {
		a.Log.Warn().Err(err).Int64("post_id", postID).Msg("set thumbnail meta")
	}
	if err := a.Store.SetPostMeta(postID, "_wp_attachment_image_alt", sanitizeText(pd.FeaturedImageAltText)); err != nil {
		a.Log.Warn().Err(err).Int64("post_id", postID).Msg("set image alt meta")
	}
}

func (a *App) fetchImage(rawURL string) (Attachment, []byte, error) {
	resp, err := sideloadClient.Get(rawURL)
	if err != nil {
		return Attachment{}, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Attachment{}, nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	body := io.LimitReader(resp.Body, maxSideloadBytes)
	return processImage(body, filenameFromURL(rawURL))
}

// processImage decodes an image from src, optionally resizes it to
// maxImageWidth, and encodes it as JPEG. Returns metadata and the encoded
// bytes.
func processImage(src io.Reader, originalName string) (Attachment, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Attachment{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Resize if wider than max
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Attachment{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Attachment{
		Filename:   slugifyFilename(originalName) + ".jpg",
		Width:      w,
		Height:     h,
		Size:       buf.Len(),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if slug := Slugify(base); slug != "" {
		return slug
	}
	return "featured-image"
}

// filenameFromURL extracts the final path element of an image URL.
func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "featured-image"
	}
	return path.Base(u.Path)
}

// ensureUniqueFilename appends a counter if filename already exists in the
// uploads directory or the attachments table.
func (a *App) ensureUniqueFilename(att *Attachment) {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	existing, _ := a.Store.AttachmentFilenames()
	taken := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		taken[n] = struct{}{}
	}

	base := strings.TrimSuffix(att.Filename, ".jpg")
	candidate := att.Filename
	counter := 1
	for {
		_, onDisk := os.Stat(filepath.Join(dir, candidate))
		_, inDB := taken[candidate]
		if onDisk != nil && !inDB {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	att.Filename = candidate
}
