package httpserver

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Token string  `json:"token"`
}

// fileResponse is the client view of a file. Stored name and owner are
// deliberately absent.
type fileResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func newAuthResponse(r *services.AuthResult) authResponse {
	resp := authResponse{ID: r.User.ID, Email: r.User.Email, Token: r.Token}
	if r.User.Name != "" {
		name := r.User.Name
		resp.Name = &name
	}
	return resp
}

func newFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeBytes,
		UploadedAt:   f.UploadedAt,
	}
}

func (s *HTTPServer) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	result, err := s.users.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(result))
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	result, err := s.users.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func (s *HTTPServer) uploadFile(c *gin.Context) {
	user := currentUser(c)

	if s.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)
	}

	fh, err := c.FormFile("file")
	if c.Request.MultipartForm != nil {
		defer func() { _ = c.Request.MultipartForm.RemoveAll() }()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": msgFileTooLarge})
		case errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgNoFileUploaded})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidMultipart})
		}
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer f.Close()

	record, err := s.files.Upload(c.Request.Context(), user.ID, services.IncomingFile{
		Body:         f,
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newFileResponse(record))
}

func (s *HTTPServer) listFiles(c *gin.Context) {
	user := currentUser(c)

	list, err := s.files.List(c.Request.Context(), user.ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	resp := make([]fileResponse, 0, len(list))
	for _, f := range list {
		resp = append(resp, newFileResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) downloadFile(c *gin.Context) {
	user := currentUser(c)

	d, err := s.files.Stream(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer d.Body.Close()

	contentType := d.File.MimeType
	if strings.TrimSpace(contentType) == "" {
		contentType = common.DefaultMimeType
	}

	c.DataFromReader(http.StatusOK, d.File.SizeBytes, contentType, d.Body, map[string]string{
		"Content-Disposition":    contentDisposition(d.File.OriginalName),
		"X-Content-Type-Options": "nosniff",
	})
}

func (s *HTTPServer) deleteFile(c *gin.Context) {
	user := currentUser(c)

	if _, err := s.files.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgFileDeleted})
}

// contentDisposition builds an attachment header; non-ASCII names use the
// RFC 2231 extended form.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
