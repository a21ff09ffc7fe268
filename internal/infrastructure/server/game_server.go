package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/ecsworld/internal/domain/ecs"
	"github.com/yourusername/ecsworld/internal/infrastructure/logging"
)

// WorldServer exposes a ticking World over HTTP: health, cache/index
// introspection, and an ad-hoc query endpoint. It never mutates the
// world; every handler reads through the same World methods a host
// embedding this process would call directly.
type WorldServer struct {
	world  *ecs.World
	srv    *http.Server
	logger *logging.Logger
}

// NewWorldServer builds the handler around world, listening on addr.
func NewWorldServer(world *ecs.World, addr string) *WorldServer {
	ws := &WorldServer{world: world, logger: logging.Get()}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/stats", ws.handleStats)
	mux.HandleFunc("/query", ws.handleQuery)

	ws.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Start runs the server until the process is asked to stop; callers are
// expected to invoke Shutdown from a signal handler.
func (ws *WorldServer) Start() error {
	if ws.logger != nil {
		ws.logger.WithField("addr", ws.srv.Addr).LogEvent("server_start", nil)
	}
	err := ws.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, waiting up to timeout for
// in-flight requests to finish.
func (ws *WorldServer) Shutdown(ctx context.Context) error {
	return ws.srv.Shutdown(ctx)
}

type healthResponse struct {
	Status    string `json:"status"`
	TickCount int64  `json:"tick_count"`
	Entities  int    `json:"entities"`
}

func (ws *WorldServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		TickCount: ws.world.TickCount(),
		Entities:  ws.world.EntityCount(),
	})
}

type statsResponse struct {
	Cache           ecs.CacheStats            `json:"cache"`
	ComponentCounts map[ecs.ComponentTypeKey]int `json:"component_index_sizes"`
	Entities        int                       `json:"entities"`
}

func (ws *WorldServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Cache:           ws.world.GetCacheStats(),
		ComponentCounts: ws.world.ComponentIndexSizes(),
		Entities:        ws.world.EntityCount(),
	})
}

// queryRequest mirrors the QueryBuilder's fluent surface as a JSON body
// so an operator (or the editor debugger) can probe live query results
// without embedding a Go client.
type queryRequest struct {
	All     []string `json:"all"`
	Any     []string `json:"any"`
	Exclude []string `json:"exclude"`
	Enabled *bool    `json:"enabled"`
}

type queryResponse struct {
	EntityIDs []string `json:"entity_ids"`
	Count     int      `json:"count"`
}

func (ws *WorldServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	qb := ws.world.Query().WithAll(toKeys(req.All)...).WithAny(toKeys(req.Any)...).WithNone(toKeys(req.Exclude)...)
	if req.Enabled != nil {
		if *req.Enabled {
			qb = qb.EnabledOnly()
		} else {
			qb = qb.DisabledOnly()
		}
	}

	entities := qb.Execute()
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = string(e.ID())
	}

	writeJSON(w, http.StatusOK, queryResponse{EntityIDs: ids, Count: len(ids)})
}

func toKeys(names []string) []ecs.ComponentTypeKey {
	keys := make([]ecs.ComponentTypeKey, len(names))
	for i, n := range names {
		keys[i] = ecs.ComponentTypeKey(n)
	}
	return keys
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
