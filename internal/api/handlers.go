package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"prio/internal/engine"
	"prio/internal/errors"
	"prio/internal/storage"
)

// prioritizeRequest is the /prioritize request body: an engine request
// plus an optional policy name supplying weights and a default budget.
type prioritizeRequest struct {
	engine.Request
	Policy string `json:"policy,omitempty"`
}

// compareRequest is the /compare-heuristics request body. A nil seed
// falls back to the server's configured comparator seed.
type compareRequest struct {
	engine.Request
	Seed *int64 `json:"seed,omitempty"`
}

// handlePrioritize handles POST /prioritize
func (s *Server) handlePrioritize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w)
		return
	}

	var req prioritizeRequest
	if err := decodeBody(r, &req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := s.applyPolicy(&req.Request, req.Policy); err != nil {
		WriteEngineError(w, err)
		return
	}

	resp, err := engine.Prioritize(req.Request)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	s.persistRun(r, req.Request, resp)

	WriteJSON(w, resp, http.StatusOK)
}

// handleCompareHeuristics handles POST /compare-heuristics
func (s *Server) handleCompareHeuristics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w)
		return
	}

	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	seed := s.opts.ComparatorSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	result, err := engine.CompareHeuristics(req.Request, seed)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	WriteJSON(w, result, http.StatusOK)
}

// handleListPolicies handles GET /policies
func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	policies, err := s.policies.ListActive()
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	WriteJSON(w, map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
	}, http.StatusOK)
}

// handleListRuns handles GET /runs/:repo_id?limit=N
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}
	if s.runs == nil {
		WriteEngineError(w, errors.New(errors.StoreUnavailable, "run persistence is disabled", nil))
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/runs/")
	repoID, err := strconv.ParseInt(strings.TrimSuffix(rest, "/"), 10, 64)
	if err != nil {
		BadRequest(w, "repo id must be an integer")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
	}

	runs, err := s.runs.ListRuns(repoID, limit)
	if err != nil {
		WriteEngineError(w, err)
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}

	WriteJSON(w, map[string]interface{}{
		"repo_id": repoID,
		"runs":    runs,
		"count":   len(runs),
	}, http.StatusOK)
}

// applyPolicy fills in weights from a named policy, or from the default
// policy when the request carries no weights of its own. Request weights
// always win over policy weights. The budget is never substituted: an
// explicit zero means zero.
func (s *Server) applyPolicy(req *engine.Request, name string) error {
	if name == "" {
		if req.Weights != nil {
			return nil
		}
		p, err := s.policies.GetDefault()
		if err != nil {
			return err
		}
		req.Weights = &p.Weights
		return nil
	}

	p, err := s.policies.GetByName(name)
	if err != nil {
		return err
	}
	if req.Weights == nil {
		req.Weights = &p.Weights
	}
	return nil
}

// persistRun records a completed run when a store is configured and the
// request names a repo. Failures are logged, never surfaced to the caller.
func (s *Server) persistRun(r *http.Request, req engine.Request, resp *engine.Response) {
	if s.runs == nil || req.RepoID == nil {
		return
	}

	weights := engine.DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}

	run := &storage.Run{
		RepoID:         *req.RepoID,
		Budget:         resp.Summary.Budget,
		Weights:        weights,
		ItemsTotal:     resp.Summary.ItemsTotal,
		ItemsSelected:  resp.Summary.ItemsSelected,
		EffortTotal:    totalEffort(req.Items),
		EffortSelected: resp.Summary.EffortSelected,
		Plan:           resp.Plan,
	}
	if err := s.runs.RecordRun(run); err != nil {
		s.logger.Warn("Failed to persist run", map[string]interface{}{
			"error":     err.Error(),
			"repoId":    *req.RepoID,
			"requestID": GetRequestID(r.Context()),
		})
		return
	}

	s.logger.Debug("Run persisted", map[string]interface{}{
		"runId":  run.ID,
		"repoId": *req.RepoID,
	})
}

func totalEffort(items []engine.Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Effort
	}
	return total
}

// decodeBody decodes a JSON request body, rejecting unknown fields
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
