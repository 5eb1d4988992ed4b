package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/duskfall-games/salem/server/internal/auth"
	"github.com/duskfall-games/salem/server/internal/game"
	"github.com/duskfall-games/salem/server/internal/infra/storage"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
)

// RoomOverview decorates the lobby digest with the transcript length.
type RoomOverview struct {
	game.RoomStatus
	TranscriptLen int `json:"transcript_len"`
}

// StatusSnapshot is the admin view of the whole process.
type StatusSnapshot struct {
	Online  []string       `json:"online"`
	Rooms   []RoomOverview `json:"rooms"`
	Running []int          `json:"running"`
}

// Snapshot assembles the admin process view from the registry's own
// tables; it never reaches into room internals.
func (reg *Registry) Snapshot() StatusSnapshot {
	reg.mu.Lock()
	names := make([]string, 0, len(reg.online))
	for name := range reg.online {
		names = append(names, name)
	}
	type entry struct {
		st   game.RoomStatus
		room *game.Room
	}
	entries := make([]entry, 0, len(reg.rooms))
	for id, room := range reg.rooms {
		entries = append(entries, entry{reg.statuses[id], room})
	}
	reg.mu.Unlock()

	sort.Strings(names)
	sort.Slice(entries, func(i, j int) bool { return entries[i].st.ID < entries[j].st.ID })

	snap := StatusSnapshot{
		Online:  names,
		Rooms:   make([]RoomOverview, 0, len(entries)),
		Running: make([]int, 0),
	}
	for _, e := range entries {
		snap.Rooms = append(snap.Rooms, RoomOverview{
			RoomStatus:    e.st,
			TranscriptLen: len(e.room.Transcript()),
		})
		if e.st.Phase != string(game.PhaseIdle) {
			snap.Running = append(snap.Running, e.st.ID)
		}
	}
	return snap
}

// RoomTranscript returns the running transcript of one room. The second
// return is false when no such room is open.
func (reg *Registry) RoomTranscript(id int) ([]game.RecordedEvent, bool) {
	reg.mu.Lock()
	room := reg.rooms[id]
	reg.mu.Unlock()
	if room == nil {
		return nil, false
	}
	return room.Transcript(), true
}

// AdminAPI serves the operator endpoints: token issuance and read-only
// process inspection.
type AdminAPI struct {
	registry  *Registry
	users     *storage.UsersRepo
	tokens    *auth.Tokens
	adminUser string
	adminPass string
	log       *logger.Logger
}

func NewAdminAPI(reg *Registry, users *storage.UsersRepo, tokens *auth.Tokens, adminUser, adminPass string, log *logger.Logger) *AdminAPI {
	return &AdminAPI{
		registry:  reg,
		users:     users,
		tokens:    tokens,
		adminUser: adminUser,
		adminPass: adminPass,
		log:       log,
	}
}

// Routes mounts the login route and the guarded admin subtree.
func (api *AdminAPI) Routes(r chi.Router) {
	r.Post("/api/login", api.HandleLogin)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(api.guard)
		r.Get("/status", api.HandleStatus)
		r.Get("/rooms/{id}/transcript", api.HandleRoomTranscript)
		r.Get("/users/{name}", api.HandleUser)
	})
}

// HandleLogin checks the configured admin credential and issues a token.
// POST /api/login
func (api *AdminAPI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if api.adminUser == "" || !auth.Equal(req.Username, api.adminUser) || !auth.Equal(req.Password, api.adminPass) {
		api.log.Warnf("rejected admin login for %q", req.Username)
		api.jsonError(w, "Bad credentials", http.StatusUnauthorized)
		return
	}
	token, err := api.tokens.Issue(req.Username)
	if err != nil {
		api.log.Errorf("failed to issue admin token: %v", err)
		api.jsonError(w, "Token issuance failed", http.StatusInternalServerError)
		return
	}
	api.jsonOK(w, map[string]string{"token": token})
}

// guard admits requests carrying a valid bearer token.
func (api *AdminAPI) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			api.jsonError(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := api.tokens.Validate(raw); err != nil {
			api.jsonError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleStatus returns the live process snapshot.
// GET /api/admin/status
func (api *AdminAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	api.jsonOK(w, api.registry.Snapshot())
}

// HandleRoomTranscript returns the in-progress transcript of one room.
// GET /api/admin/rooms/{id}/transcript
func (api *AdminAPI) HandleRoomTranscript(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.jsonError(w, "Invalid room id", http.StatusBadRequest)
		return
	}
	rows, ok := api.registry.RoomTranscript(id)
	if !ok {
		api.jsonError(w, "No such room", http.StatusNotFound)
		return
	}
	if rows == nil {
		rows = []game.RecordedEvent{}
	}
	api.jsonOK(w, rows)
}

// HandleUser returns one account row with its saved setup slots.
// GET /api/admin/users/{name}
func (api *AdminAPI) HandleUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	user, err := api.users.GetUser(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		api.jsonError(w, "No such user", http.StatusNotFound)
		return
	}
	if err != nil {
		api.log.Errorf("failed to read user %s: %v", name, err)
		api.jsonError(w, "Lookup failed", http.StatusInternalServerError)
		return
	}
	api.jsonOK(w, user)
}

// jsonError sends an error response.
func (api *AdminAPI) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonOK sends a success response.
func (api *AdminAPI) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
