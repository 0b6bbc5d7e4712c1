package eventlog

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

const (
	latestLimit  = 10
	articleLimit = 8
)

type EventLogHandlers struct {
	Service *EventLogService
}

func NewEventLogHandlers(service *EventLogService) *EventLogHandlers {
	return &EventLogHandlers{Service: service}
}

// Register mounts the JSON endpoints on r
func (h *EventLogHandlers) Register(r *mux.Router) {
	r.HandleFunc("/event-log", h.FindLatest).Methods("GET").Name("event-log.latest")
	r.HandleFunc("/event-log/{id}", h.FindAllByArticleID).Methods("GET").Name("event-log.article")
}

func (h *EventLogHandlers) FindLatest(w http.ResponseWriter, r *http.Request) {
	eventLogs, err := h.Service.GetAll(r.Context(), latestLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventLogs)
}

func (h *EventLogHandlers) FindAllByArticleID(w http.ResponseWriter, r *http.Request) {
	articleID := mux.Vars(r)["id"]
	if unescaped, err := url.PathUnescape(articleID); err == nil {
		articleID = unescaped
	}

	eventLogs, err := h.Service.GetAllByArticleID(r.Context(), articleID, articleLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventLogs)
}
