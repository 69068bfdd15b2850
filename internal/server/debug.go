package server

import (
	"net/http"
	"strconv"
)

// DebugHandler предоставляет доступ к внутреннему состоянию агентов
type DebugHandler struct {
	Inspector Inspector
}

func NewDebugHandler(i Inspector) *DebugHandler {
	return &DebugHandler{Inspector: i}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/episode", h.handleEpisode)
	mux.HandleFunc("/debug/agents", h.handleAgents)
}

// /debug/episode - сводка активного эпизода без списка агентов
func (h *DebugHandler) handleEpisode(w http.ResponseWriter, r *http.Request) {
	view, ok := h.Inspector.Describe()
	if !ok {
		http.Error(w, "No active episode", http.StatusNotFound)
		return
	}
	view.Agents = nil
	writeJSON(w, view)
}

// /debug/agents?id=3 - состояние всех агентов или одного
func (h *DebugHandler) handleAgents(w http.ResponseWriter, r *http.Request) {
	view, ok := h.Inspector.Describe()
	if !ok {
		http.Error(w, "No active episode", http.StatusNotFound)
		return
	}

	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		writeJSON(w, view.Agents)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid agent id", http.StatusBadRequest)
		return
	}
	for _, a := range view.Agents {
		if a.ID == id {
			writeJSON(w, a)
			return
		}
	}
	http.Error(w, "Agent not found", http.StatusNotFound)
}
