// Package handler provides HTTP request handlers for the cluster gateway.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	clustererrors "github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/errors"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/service"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	router *service.RouterService
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(router *service.RouterService, logger *zap.Logger) *Handlers {
	return &Handlers{
		router: router,
		logger: logger,
	}
}

type putKeyRequest struct {
	Value string `json:"value"`
}

type keyValueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Shard string `json:"shard,omitempty"`
}

type deleteKeyResponse struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
}

type addShardRequest struct {
	ShardID string `json:"shard_id"`
}

type virtualNodeResponse struct {
	VNodeID      string `json:"vnode_id"`
	ShardID      string `json:"shard_id"`
	ReplicaIndex int    `json:"replica_index"`
	Position     uint64 `json:"position"`
}

type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PutKey handles PUT /v1/keys/{key} requests.
func (h *Handlers) PutKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req putKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeValidationError(w, r, "request body must be JSON with a value field")
		return
	}

	if err := h.router.Put(key, req.Value); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetKey handles GET /v1/keys/{key} requests.
func (h *Handlers) GetKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	value, ok, err := h.router.Get(key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeJSONError(w, r, http.StatusNotFound, "key_not_found", "key not found: "+key)
		return
	}

	h.writeJSON(w, http.StatusOK, keyValueResponse{Key: key, Value: value})
}

// DeleteKey handles DELETE /v1/keys/{key} requests.
func (h *Handlers) DeleteKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	deleted, err := h.router.Delete(key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, deleteKeyResponse{Key: key, Deleted: deleted})
}

// AddShard handles POST /v1/shards requests.
func (h *Handlers) AddShard(w http.ResponseWriter, r *http.Request) {
	var req addShardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShardID == "" {
		h.writeValidationError(w, r, "request body must be JSON with a shard_id field")
		return
	}

	if err := h.router.AddShard(req.ShardID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveShard handles DELETE /v1/shards/{shard_id} requests.
func (h *Handlers) RemoveShard(w http.ResponseWriter, r *http.Request) {
	shardID := mux.Vars(r)["shard_id"]

	if err := h.router.RemoveShard(shardID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListShards handles GET /v1/shards requests.
func (h *Handlers) ListShards(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.router.Shards())
}

// RemoveVirtualNode handles DELETE /v1/ring/virtual-node requests.
func (h *Handlers) RemoveVirtualNode(w http.ResponseWriter, r *http.Request) {
	vnode, err := h.router.RemoveOneVirtualNode()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, virtualNodeResponse{
		VNodeID:      vnode.VNodeID,
		ShardID:      vnode.ShardID,
		ReplicaIndex: vnode.ReplicaIndex,
		Position:     vnode.Position,
	})
}

// Distribution handles GET /v1/distribution requests.
func (h *Handlers) Distribution(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.router.KeyDistribution())
}

// writeError maps a cluster error to an HTTP error response.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := clustererrors.ErrCodeInternal

	if ce, ok := clustererrors.AsClusterError(err); ok {
		status = ce.HTTPStatus()
		code = ce.Code
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Error(err))
	}

	h.writeJSONError(w, r, status, code.String(), err.Error())
}

func (h *Handlers) writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	h.writeJSONError(w, r, http.StatusBadRequest, "invalid_request", message)
}

func (h *Handlers) writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{
		Error:     errorBody{Code: code, Message: message},
		RequestID: r.Header.Get("X-Request-ID"),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
