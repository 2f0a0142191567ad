package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/logostamp/internal/archive"
	"github.com/youruser/logostamp/internal/batch"
	"github.com/youruser/logostamp/internal/config"
	imagepkg "github.com/youruser/logostamp/internal/image"
	"github.com/youruser/logostamp/internal/util"
)

//go:embed web/index.html
var indexHTML []byte

var (
	errNoLogoSource = errors.New("one of logo, logo_url or logo_qr_text is required")
	errQRText       = errors.New("invalid logo_qr_text")
)

// Handler serves the stamping API.
type Handler struct {
	pipeline    *batch.Pipeline
	sessions    *batch.Store
	fetcher     *util.Fetcher
	maxUpload   int64
	qrSize      int
	requireLogo bool
}

func NewHandler(cfg *config.Config, sessions *batch.Store) *Handler {
	return &Handler{
		pipeline:    batch.NewPipeline(batch.Options{RequireLogo: cfg.Stamp.RequireLogo}),
		sessions:    sessions,
		fetcher:     util.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes),
		maxUpload:   cfg.Server.MaxUploadBytes,
		qrSize:      cfg.Stamp.QRSize,
		requireLogo: cfg.Stamp.RequireLogo,
	}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// qr returns a PNG of a QR for "text", as it would be used for logo_qr_text
func (h *Handler) qr(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	size := h.qrSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		// text too long for any QR version
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// stamp takes the whole selection in one multipart request and answers with
// the archive, or 204 when there is nothing to stamp.
func (h *Handler) stamp(c *gin.Context) {
	form, ok := h.multipartForm(c)
	if !ok {
		return
	}
	images, err := readUploads(form.File["images"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(images) == 0 {
		h.respondError(c, batch.ErrNoImages)
		return
	}
	logo, ok := h.selectionLogo(c, firstFile(form, "logo"), formValue(form, "logo_url"), formValue(form, "logo_qr_text"))
	if !ok {
		return
	}
	h.run(c, batch.Selection{Images: images, Logo: logo})
}

type stampURLsRequest struct {
	ImageURLs  []string `json:"image_urls" binding:"max=200,dive,url"`
	LogoURL    string   `json:"logo_url" binding:"omitempty,url"`
	LogoQRText string   `json:"logo_qr_text"`
}

// stampURLs is stamp for images and logo hosted elsewhere.
func (h *Handler) stampURLs(c *gin.Context) {
	var req stampURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.ImageURLs) == 0 {
		h.respondError(c, batch.ErrNoImages)
		return
	}
	// the logo goes first so a missing one costs no image downloads
	logo, ok := h.selectionLogo(c, nil, req.LogoURL, req.LogoQRText)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	images := make([]batch.Input, 0, len(req.ImageURLs))
	for _, u := range req.ImageURLs {
		name, body, err := imagepkg.DownloadImage(ctx, h.fetcher, u)
		if err != nil {
			log.Println("image download error:", err)
			h.respondError(c, err)
			return
		}
		images = append(images, batch.Input{Name: name, Data: body})
	}
	h.run(c, batch.Selection{Images: images, Logo: logo})
}

// selectionLogo resolves the logo for a one-shot stamp request. A missing
// logo is fine unless the pipeline requires one, in which case the request
// ends as a no-op and ok is false.
func (h *Handler) selectionLogo(c *gin.Context, file *multipart.FileHeader, logoURL, qrText string) (logo *batch.Logo, ok bool) {
	logo, err := h.resolveLogo(c.Request.Context(), file, logoURL, qrText)
	switch {
	case errors.Is(err, errNoLogoSource):
		if h.requireLogo {
			h.respondError(c, batch.ErrNoLogo)
			return nil, false
		}
		return nil, true
	case err != nil:
		h.respondError(c, err)
		return nil, false
	}
	return logo, true
}

func (h *Handler) createSession(c *gin.Context) {
	s, err := h.sessions.Create()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": s.ID})
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	sel := s.Snapshot()
	names := make([]string, 0, len(sel.Images))
	for _, in := range sel.Images {
		names = append(names, in.Name)
	}
	resp := gin.H{"id": s.ID, "images": names, "logo": nil}
	if sel.Logo != nil {
		resp["logo"] = sel.Logo.Name
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// putImages replaces the session's whole image batch.
func (h *Handler) putImages(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	form, ok := h.multipartForm(c)
	if !ok {
		return
	}
	images, err := readUploads(form.File["images"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.SetImages(images)
	c.JSON(http.StatusOK, gin.H{"id": s.ID, "images": len(images)})
}

func (h *Handler) putLogo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	form, ok := h.multipartForm(c)
	if !ok {
		return
	}
	logo, err := h.resolveLogo(c.Request.Context(), firstFile(form, "logo"), formValue(form, "logo_url"), formValue(form, "logo_qr_text"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	s.SetDecodedLogo(logo)
	b := logo.Image.Bounds()
	c.JSON(http.StatusOK, gin.H{"id": s.ID, "logo": logo.Name, "width": b.Dx(), "height": b.Dy()})
}

func (h *Handler) deleteLogo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.ClearLogo()
	c.Status(http.StatusNoContent)
}

// download runs the pipeline over a snapshot of the session.
func (h *Handler) download(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.run(c, s.Snapshot())
}

func (h *Handler) run(c *gin.Context, sel batch.Selection) {
	a, err := h.pipeline.Run(c.Request.Context(), sel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	log.Printf("stamped %d images into %s (%d bytes)", len(a.Entries), a.Name, len(a.Data))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
	c.Data(http.StatusOK, "application/zip", a.Data)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var de *imagepkg.DecodeError
	switch {
	case batch.NothingToDo(err):
		c.Status(http.StatusNoContent)
	case errors.Is(err, errNoLogoSource), errors.Is(err, errQRText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &de), errors.Is(err, archive.ErrDuplicateEntry):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		log.Println("request cancelled:", err)
		c.Abort()
	case util.IsFetchError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Println("stamp error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) session(c *gin.Context) (*batch.Session, bool) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func (h *Handler) multipartForm(c *gin.Context) (*multipart.Form, bool) {
	if c.Request.ContentLength > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", h.maxUpload)})
		return nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return form, true
}

// resolveLogo picks the logo source: an uploaded file, then a URL, then QR
// text. It returns errNoLogoSource when none is given.
func (h *Handler) resolveLogo(ctx context.Context, file *multipart.FileHeader, logoURL, qrText string) (*batch.Logo, error) {
	switch {
	case file != nil:
		in, err := readUpload(file)
		if err != nil {
			return nil, err
		}
		return batch.NewLogo(in)
	case logoURL != "":
		img, err := imagepkg.DownloadLogo(ctx, h.fetcher, logoURL)
		if err != nil {
			log.Println("logo download error:", err)
			return nil, err
		}
		return &batch.Logo{Name: imagepkg.NameFromURL(logoURL), Image: img}, nil
	case qrText != "":
		img, err := imagepkg.GenerateQRImage(qrText, h.qrSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errQRText, err)
		}
		return &batch.Logo{Name: "qr.png", Image: img}, nil
	}
	return nil, errNoLogoSource
}

func readUploads(files []*multipart.FileHeader) ([]batch.Input, error) {
	out := make([]batch.Input, 0, len(files))
	for _, fh := range files {
		in, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func readUpload(fh *multipart.FileHeader) (batch.Input, error) {
	f, err := fh.Open()
	if err != nil {
		return batch.Input{}, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return batch.Input{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return batch.Input{Name: fh.Filename, Data: data}, nil
}

func firstFile(form *multipart.Form, key string) *multipart.FileHeader {
	if files := form.File[key]; len(files) > 0 {
		return files[0]
	}
	return nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
