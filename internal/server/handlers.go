package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/internal/safety"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"service":    ServiceName,
		"version":    ServiceVersion,
		"status":     "running",
		"disclaimer": safety.MedicalDisclaimer,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("query request", zap.String("query", req.Query))
	resp, err := s.engine.Query(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req models.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("diagnose request", zap.Strings("symptoms", req.Symptoms))
	resp, err := s.engine.Diagnose(r.Context(), req)
	if err != nil {
		s.logger.Error("diagnose failed", zap.Error(err))
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeSymptoms(w http.ResponseWriter, r *http.Request) {
	var req models.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("analyze-symptoms request", zap.Strings("symptoms", req.Symptoms))
	analysis, err := s.engine.AnalyzeSymptoms(req.Symptoms)
	if err != nil {
		s.logger.Error("symptom analysis failed", zap.Error(err))
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, analysis)
}

// handleIngest accepts either a multipart upload (field "file") or a JSON
// body with content and source_name.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.handleIngestUpload(w, r)
		return
	}

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ingest request", zap.String("source", req.SourceName))
	result, err := s.engine.IngestText(r.Context(), req.Content, req.SourceName)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleIngestUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	s.logger.Debug("ingest upload", zap.String("filename", header.Filename), zap.Int("bytes", len(data)))
	result, err := s.engine.IngestUpload(r.Context(), header.Filename, data)
	if err != nil {
		s.logger.Error("ingest upload failed", zap.Error(err))
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleClearIndex(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("clear index request")
	if err := s.engine.Clear(); err != nil {
		s.logger.Error("clear failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// respondEngineError maps the engine error taxonomy onto HTTP status codes:
// invalid input 400, upstream capability failure 502, anything else 500.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	var extErr *models.ExternalServiceError
	switch {
	case errors.As(err, &vErr):
		s.respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &extErr):
		s.respondError(w, http.StatusBadGateway, extErr.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
