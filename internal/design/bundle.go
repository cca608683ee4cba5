package design

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
)

// BundleFormatVersion is the only bundle layout LoadBundle accepts.
const BundleFormatVersion = 1

// Bundle packages a design for saving or sharing outside the editor session.
type Bundle struct {
	Version    int                `json:"version"`
	Name       string             `json:"name"`
	CreatedAt  time.Time          `json:"createdAt"`
	Design     Design             `json:"design"`
	Milestones []MilestoneSummary `json:"milestones,omitempty"`
}

// MilestoneSummary describes a labelled history entry at bundle time.
type MilestoneSummary struct {
	SnapshotID string    `json:"snapshotId"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"createdAt"`
	CharmCount int       `json:"charmCount"`
}

// CreateBundle packages the design at the cursor along with the milestone list.
func (h *HistoryStack) CreateBundle(name string) (Bundle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Bundle{}, pkgerrors.New(pkgerrors.CodeValidation, "bundle name is required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.stack.Current()
	if !ok {
		return Bundle{}, errEmptyHistory()
	}
	bundle := Bundle{
		Version:   BundleFormatVersion,
		Name:      name,
		CreatedAt: h.now().UTC(),
		Design:    cur.Design,
	}
	for _, s := range h.stack.Entries() {
		if s.Milestone == "" {
			continue
		}
		bundle.Milestones = append(bundle.Milestones, MilestoneSummary{
			SnapshotID: s.ID,
			Label:      s.Milestone,
			CreatedAt:  s.CreatedAt,
			CharmCount: len(s.Design.Charms),
		})
	}
	return bundle, nil
}

// LoadBundle validates b and pushes its design as a fresh history entry.
func (h *HistoryStack) LoadBundle(b Bundle) (Snapshot, error) {
	if b.Version != BundleFormatVersion {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported bundle version").
			WithDetails(map[string]any{"version": b.Version, "supported": BundleFormatVersion})
	}
	if err := b.Design.Validate(); err != nil {
		return Snapshot{}, err
	}
	snap := NewSnapshot(b.Design, h.now())
	snap.Milestone = strings.TrimSpace(b.Name)
	if !h.Push(snap) {
		cur, _ := h.Current()
		return cur, nil
	}
	return snap.Clone(), nil
}
