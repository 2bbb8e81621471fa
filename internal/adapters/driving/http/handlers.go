package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error   string         `json:"error" example:"invalid request body"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// StoreDocumentsRequest carries raw texts for direct ingestion
// @Description Raw texts to embed into a collection
type StoreDocumentsRequest struct {
	Texts          []string         `json:"texts"`
	CollectionName string           `json:"collection_name,omitempty"`
	Metadata       []map[string]any `json:"metadata,omitempty"`
	EmbeddingModel string           `json:"embedding_model,omitempty"`
}

// StoreDocumentsResponse reports the IDs assigned to stored texts
// @Description IDs assigned to stored texts
type StoreDocumentsResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and cache connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A dependency is unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	_ = s.authService.Logout(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RAG endpoints

// handleRAGQuery godoc
// @Summary      Answer a query
// @Description  Retrieve relevant context from a collection and generate a grounded answer
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.RAGRequest  true  "Query"
// @Success      200      {object}  domain.RAGResponse
// @Failure      400      {object}  ErrorResponse  "Empty query or invalid request body"
// @Failure      404      {object}  ErrorResponse  "Unknown collection"
// @Failure      502      {object}  ErrorResponse  "Downstream AI service failed"
// @Failure      503      {object}  ErrorResponse  "Downstream AI service unreachable"
// @Router       /rag/query [post]
func (s *Server) handleRAGQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.RAGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.ragService.ProcessQuery(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleStoreDocuments godoc
// @Summary      Store raw texts
// @Description  Embed raw texts directly into a collection, bypassing the chunking pipeline (admin only)
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      StoreDocumentsRequest  true  "Texts to store"
// @Success      201      {object}  StoreDocumentsResponse
// @Failure      400      {object}  ErrorResponse  "No texts provided"
// @Failure      403      {object}  ErrorResponse  "Forbidden - admin only"
// @Failure      502      {object}  ErrorResponse  "Embedding service failed"
// @Router       /rag/documents [post]
func (s *Server) handleStoreDocuments(w http.ResponseWriter, r *http.Request) {
	var req StoreDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids, err := s.ragService.StoreDocuments(r.Context(), req.Texts, req.CollectionName, req.Metadata, req.EmbeddingModel)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, StoreDocumentsResponse{IDs: ids, Count: len(ids)})
}

// handleListCollections godoc
// @Summary      List collections
// @Description  List vector-store collections with document counts
// @Tags         RAG
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.CollectionInfo
// @Failure      502  {object}  ErrorResponse  "Embedding service failed"
// @Router       /collections [get]
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	infos, err := s.ragService.ListCollections(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, infos)
}

// Chunker endpoints

// handleChunkDocument godoc
// @Summary      Chunk a document
// @Description  Read a stored document, split it into chunks and embed them. Unchanged documents are skipped. (admin only)
// @Tags         Chunker
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.ChunkDocumentRequest  true  "Document to process"
// @Success      200      {object}  domain.ChunkDocumentResult
// @Failure      400      {object}  ErrorResponse  "Invalid request, strategy or parameters"
// @Failure      403      {object}  ErrorResponse  "Forbidden - admin only"
// @Failure      404      {object}  ErrorResponse  "Document not found"
// @Failure      415      {object}  ErrorResponse  "Unsupported content type"
// @Failure      502      {object}  ErrorResponse  "Embedding service failed"
// @Router       /chunker/document [post]
func (s *Server) handleChunkDocument(w http.ResponseWriter, r *http.Request) {
	var req driving.ChunkDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.chunkerService.ChunkDocument(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleChunkCollection godoc
// @Summary      Chunk a collection
// @Description  Process every document under a storage path. Per-document failures are skipped. (admin only)
// @Tags         Chunker
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.ChunkCollectionRequest  true  "Collection to process"
// @Success      200      {object}  domain.ChunkCollectionResult
// @Failure      400      {object}  ErrorResponse  "Invalid request, strategy or parameters"
// @Failure      403      {object}  ErrorResponse  "Forbidden - admin only"
// @Failure      404      {object}  ErrorResponse  "Collection path not found"
// @Router       /chunker/collection [post]
func (s *Server) handleChunkCollection(w http.ResponseWriter, r *http.Request) {
	var req driving.ChunkCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.chunkerService.ChunkCollection(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListProcessedDocuments godoc
// @Summary      List processed documents
// @Description  List tracked documents, newest first, optionally filtered by collection
// @Tags         Chunker
// @Produce      json
// @Security     BearerAuth
// @Param        collection  query     string  false  "Filter by collection name"
// @Param        limit       query     int     false  "Maximum results"
// @Success      200         {array}   domain.ProcessedDocument
// @Failure      500         {object}  ErrorResponse  "Internal server error"
// @Router       /chunker/documents [get]
func (s *Server) handleListProcessedDocuments(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	docs, err := s.chunkerService.ListProcessedDocuments(r.Context(), collection, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list processed documents")
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// writeDomainError maps domain errors onto HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	var nfe *domain.NotFoundError
	if errors.As(err, &nfe) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: nfe.Message, Details: nfe.Details})
		return
	}

	var se *domain.ServiceError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: se.Message, Details: se.Details})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedStrategy),
		errors.Is(err, domain.ErrInvalidChunkParams):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnsupportedContentType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
