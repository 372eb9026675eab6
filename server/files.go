package server

import (
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/urlsign"
)

// signedDriver is implemented by drivers that issue signed temporary URLs.
type signedDriver interface {
	RequiresSignature(path string) bool
	VerifySignature(path, token string) error
}

// session returns the cached scoped Storage for disk. Sessions are built
// lazily so a disk that fails to bind is retried on the next request.
func (s *Server) session(disk string) (*filesystem.Storage, error) {
	if !s.served(disk) {
		return nil, apperrors.NotFound(disk).WithDetail("disk", disk)
	}

	s.mu.RLock()
	sess, ok := s.sessions[disk]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[disk]; ok {
		return sess, nil
	}
	sess, err := s.storage.WithDisk(disk)
	if err != nil {
		return nil, err
	}
	s.sessions[disk] = sess
	return sess, nil
}

func (s *Server) served(disk string) bool {
	disks := s.config.Disks
	if len(disks) == 0 {
		return disk == s.defaultDisk
	}
	for _, d := range disks {
		if d == disk {
			return true
		}
	}
	return false
}

// serveFile answers GET and HEAD {prefix}/:disk/*path.
func (s *Server) serveFile(c *gin.Context) {
	disk := c.Param("disk")
	p := strings.TrimPrefix(c.Param("path"), "/")
	if p == "" {
		RespondWithError(c, apperrors.InvalidPath(p))
		return
	}

	sess, err := s.session(disk)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	if sd, ok := sess.Driver().(signedDriver); ok && sd.RequiresSignature(p) {
		if err := sd.VerifySignature(p, c.Query(urlsign.QueryParam)); err != nil {
			RespondWithError(c, err)
			return
		}
	}

	data, err := sess.Get(c.Request.Context(), p)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	ct := mime.TypeByExtension(path.Ext(p))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, ct, data)
}
