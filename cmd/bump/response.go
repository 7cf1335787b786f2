package main

import (
	"time"

	"github.com/google/uuid"

	"bump/internal/repostate"
	"bump/internal/version"
)

// Response is the common wrapper for bump command responses.
type Response struct {
	BumpVersion   string      `json:"bumpVersion"`
	SchemaVersion int         `json:"schemaVersion"`
	Facts         interface{} `json:"facts"`
	Provenance    *Provenance `json:"provenance"`
}

// Provenance tracks where a response came from and how it was produced.
type Provenance struct {
	SessionID       string   `json:"sessionId"`
	RepoStateID     string   `json:"repoStateId,omitempty"`
	RepoStateDirty  bool     `json:"repoStateDirty"`
	Branch          string   `json:"branch,omitempty"`
	Warnings        []string `json:"warnings"`
	QueryDurationMs int64    `json:"queryDurationMs"`
}

// NewResponse creates a response with provenance. A nil repo state
// leaves the state fields empty; callers add a warning in that case.
func NewResponse(facts interface{}, state *repostate.RepoState, durationMs int64) *Response {
	prov := &Provenance{
		SessionID:       uuid.New().String(),
		Warnings:        []string{},
		QueryDurationMs: durationMs,
	}
	if state != nil {
		prov.RepoStateID = state.RepoStateID
		prov.RepoStateDirty = state.Dirty
		prov.Branch = state.Branch
	}
	return &Response{
		BumpVersion:   version.Version,
		SchemaVersion: 1,
		Facts:         facts,
		Provenance:    prov,
	}
}

// AddWarning adds a warning to the provenance
func (r *Response) AddWarning(warning string) {
	r.Provenance.Warnings = append(r.Provenance.Warnings, warning)
}

// measureDuration is a helper to measure execution time
func measureDuration(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
