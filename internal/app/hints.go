package app

import (
	"context"
	"encoding/json"
	"fmt"
)

const hintKeyPrefix = "results_"

// KeyValue is the persistent local store shared with the session layer; the
// submission flow writes result-ID hints here under results_<assessmentId>.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, prefix string) error
}

// HintCache reads and writes the per-assessment result-ID hints. The hints
// are a best-effort discovery path only; no invariant ties them to server
// state.
type HintCache struct {
	store KeyValue
}

func NewHintCache(store KeyValue) *HintCache {
	return &HintCache{store: store}
}

// ResultIDs returns the remembered result IDs for an assessment, in the
// order they were recorded. A missing or unreadable entry is an empty list.
func (h *HintCache) ResultIDs(ctx context.Context, assessmentID string) ([]string, error) {
	raw, ok, err := h.store.Get(ctx, hintKeyPrefix+assessmentID)
	if err != nil {
		return nil, fmt.Errorf("read result hints: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// Corrupt entry; treat as absent rather than poisoning the branch.
		return nil, nil
	}
	return ids, nil
}

// Record appends a result ID to an assessment's hint list, skipping IDs
// already present.
func (h *HintCache) Record(ctx context.Context, assessmentID, resultID string) error {
	ids, err := h.ResultIDs(ctx, assessmentID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == resultID {
			return nil
		}
	}
	data, err := json.Marshal(append(ids, resultID))
	if err != nil {
		return err
	}
	return h.store.Set(ctx, hintKeyPrefix+assessmentID, string(data))
}

// Clear drops every hint entry. The instructor view does this on teardown.
func (h *HintCache) Clear(ctx context.Context) error {
	return h.store.DeleteMatching(ctx, hintKeyPrefix)
}
