package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"prio/internal/engine"
)

// planRequest is the on-disk request format shared by the plan and
// compare commands: an engine request plus an optional policy name.
type planRequest struct {
	engine.Request
	Policy string `json:"policy,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

// loadRequestFile reads a request from a JSON or YAML file. YAML documents
// are converted through JSON so both formats share the same field names.
func loadRequestFile(path string) (*planRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML request: %w", err)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML request: %w", err)
		}
	}

	var req planRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	return &req, nil
}
