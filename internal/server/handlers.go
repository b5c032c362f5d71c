package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/alkime/sonify/internal/backend"
	"github.com/gin-gonic/gin"
)

// handleUpload stores the image and answers with canned analysis and audio.
func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing image file in form field 'file'"})
		return
	}

	name := filepath.Base(file.Filename)
	if !backend.HasAllowedExtension(name) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only image files (.png, .jpg, .jpeg) are supported"})
		return
	}

	if err := c.SaveUploadedFile(file, filepath.Join(s.config.UploadsDir, name)); err != nil {
		s.processingError(c, fmt.Errorf("failed to save upload: %w", err))
		return
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))

	analysis, err := s.fixtures.Analysis(stem)
	if err != nil {
		s.processingError(c, err)
		return
	}

	audioFile := "sonified_" + stem + ".wav"
	if err := s.fixtures.WriteAudio(stem, analysis, filepath.Join(s.config.OutputsDir, audioFile)); err != nil {
		s.processingError(c, err)
		return
	}

	s.logger.Info("upload sonified", "file", name, "audio", audioFile)

	c.JSON(http.StatusOK, gin.H{
		"audio_file": audioFile,
		"analysis":   json.RawMessage(analysis),
	})
}

func (s *Server) processingError(c *gin.Context, err error) {
	s.logger.Error("upload processing failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Processing error: " + err.Error()})
}
