package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/dispatch"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/store"
)

const agentUnavailableDetail = "Failed to initialize agent"

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /api", s.handleRoot)
	mux.HandleFunc("GET /api/{$}", s.handleRoot)
	mux.HandleFunc("POST /api/status", s.handleCreateStatus)
	mux.HandleFunc("GET /api/status", s.handleListStatus)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/agents/capabilities", s.handleCapabilities)
	mux.HandleFunc("POST /api/generate-wallpaper", s.handleGenerateWallpaper)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up the WebSocket RPC methods. Each mirrors an
// HTTP route.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("chat", s.rpcChat)
	s.Handle("search", s.rpcSearch)
	s.Handle("agents.capabilities", s.rpcCapabilities)
	s.Handle("wallpaper.generate", s.rpcGenerateWallpaper)
}

// HTTP handlers

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

type statusCheckCreate struct {
	ClientName string `json:"client_name"`
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeDetail(w, http.StatusServiceUnavailable, "status store not configured")
		return
	}
	var body statusCheckCreate
	if !decodeBody(w, r, &body, "client_name") {
		return
	}

	check, err := s.store.CreateStatusCheck(r.Context(), body.ClientName)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("create status check failed")
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeDetail(w, http.StatusServiceUnavailable, "status store not configured")
		return
	}
	checks, err := s.store.ListStatusChecks(r.Context(), store.DefaultListLimit)
	if err != nil {
		s.log.Error().Err(err).Msg("list status checks failed")
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, checks)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req := dispatch.ChatRequest{AgentType: dispatch.DefaultAgentType}
	if !decodeBody(w, r, &req, "message") {
		return
	}

	resp, err := s.dispatcher.Chat(r.Context(), req)
	if err != nil {
		s.log.Error().Err(err).Str("agentType", req.AgentType).Msg("chat failed")
		writeDetail(w, http.StatusInternalServerError, agentUnavailableDetail)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := dispatch.SearchRequest{MaxResults: dispatch.DefaultMaxResults}
	if !decodeBody(w, r, &req, "query") {
		return
	}
	writeJSON(w, http.StatusOK, s.dispatcher.Search(r.Context(), req))
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dispatcher.Capabilities(r.Context()))
}

func (s *Server) handleGenerateWallpaper(w http.ResponseWriter, r *http.Request) {
	var req dispatch.WallpaperRequest
	if !decodeBody(w, r, &req, "prompt") {
		return
	}
	writeJSON(w, http.StatusOK, s.dispatcher.GenerateWallpaper(r.Context(), req))
}

// RPC handlers

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(HealthResponse{
		Status:  "ok",
		Version: s.version,
		Clients: s.clients.Count(),
		Uptime:  time.Since(s.startedAt).Milliseconds(),
	})
}

func (s *Server) rpcChat(rc *RequestContext) {
	req := dispatch.ChatRequest{AgentType: dispatch.DefaultAgentType}
	if !rc.Params(&req, "message") {
		return
	}

	resp, err := s.dispatcher.Chat(rc.Ctx, req)
	if errors.Is(err, dispatch.ErrAgentUnavailable) {
		rc.RespondError(CodeAgentError, agentUnavailableDetail)
		return
	}
	if err != nil {
		rc.RespondError(CodeAgentError, err.Error())
		return
	}
	rc.Respond(resp)
}

func (s *Server) rpcSearch(rc *RequestContext) {
	req := dispatch.SearchRequest{MaxResults: dispatch.DefaultMaxResults}
	if !rc.Params(&req, "query") {
		return
	}
	rc.Respond(s.dispatcher.Search(rc.Ctx, req))
}

func (s *Server) rpcCapabilities(rc *RequestContext) {
	rc.Respond(s.dispatcher.Capabilities(rc.Ctx))
}

func (s *Server) rpcGenerateWallpaper(rc *RequestContext) {
	var req dispatch.WallpaperRequest
	if !rc.Params(&req, "prompt") {
		return
	}
	rc.Respond(s.dispatcher.GenerateWallpaper(rc.Ctx, req))
}
