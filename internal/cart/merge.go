package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
)

// MergeAdjustment records a guest line that could not be merged in full.
type MergeAdjustment struct {
	LineItemID string                    `json:"lineItemId"`
	Reason     enums.CartItemWarningType `json:"reason"`
	Requested  int                       `json:"requested"`
	Kept       int                       `json:"kept"`
	Dropped    int                       `json:"dropped"`
}

// MergeReport describes what a guest merge changed.
type MergeReport struct {
	MergeKey    string            `json:"mergeKey"`
	Applied     bool              `json:"applied"`
	Added       []string          `json:"added,omitempty"`
	Combined    []string          `json:"combined,omitempty"`
	Adjustments []MergeAdjustment `json:"adjustments,omitempty"`
}

// Conflict returns a MERGE_CONFLICT error describing capped or dropped lines,
// or nil when everything merged in full.
func (r MergeReport) Conflict() error {
	if len(r.Adjustments) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeMergeConflict, fmt.Sprintf("%d guest line items were capped or dropped", len(r.Adjustments))).
		WithDetails(r.Adjustments)
}

// MergeGuestCart folds a guest cart into the committed cart. Catalog lines
// sum quantities capped at the per-item maximum; other lines are appended
// up to the line-item limit. Merging the same guest snapshot twice is a no-op.
func (e *Engine) MergeGuestCart(ctx context.Context, guest State) (State, MergeReport, error) {
	report := MergeReport{MergeKey: guest.MergeKey()}
	state, err := e.run(ctx, "merge_guest_cart", func(working *State) (outcome, error) {
		if working.hasMerged(report.MergeKey) || len(guest.Items) == 0 {
			return outcome{noop: true}, nil
		}

		ts := e.now().UTC()
		for _, g := range guest.Items {
			idx, exists := working.Find(g.ID)
			switch {
			case exists && (g.IsCustomDesign || working.Items[idx].IsCustomDesign):
				continue
			case exists:
				line := &working.Items[idx]
				want := line.Quantity + g.Quantity
				kept := min(want, e.cfg.MaxQuantityPerItem)
				if kept < want {
					report.Adjustments = append(report.Adjustments, MergeAdjustment{
						LineItemID: g.ID,
						Reason:     enums.CartItemWarningTypeClampedToMax,
						Requested:  want,
						Kept:       kept,
						Dropped:    want - kept,
					})
				}
				if kept != line.Quantity {
					line.Quantity = kept
					line.UpdatedAt = ts
				}
				report.Combined = append(report.Combined, g.ID)
			case len(working.Items) >= e.cfg.MaxLineItems:
				report.Adjustments = append(report.Adjustments, MergeAdjustment{
					LineItemID: g.ID,
					Reason:     enums.CartItemWarningTypeLineLimit,
					Requested:  g.Quantity,
					Dropped:    g.Quantity,
				})
			default:
				line := g.Clone()
				if line.Quantity > e.cfg.MaxQuantityPerItem {
					report.Adjustments = append(report.Adjustments, MergeAdjustment{
						LineItemID: g.ID,
						Reason:     enums.CartItemWarningTypeClampedToMax,
						Requested:  line.Quantity,
						Kept:       e.cfg.MaxQuantityPerItem,
						Dropped:    line.Quantity - e.cfg.MaxQuantityPerItem,
					})
					line.Quantity = e.cfg.MaxQuantityPerItem
				}
				line.UpdatedAt = ts
				working.Items = append(working.Items, line)
				report.Added = append(report.Added, g.ID)
			}
		}

		working.MergedFrom = append(working.MergedFrom, report.MergeKey)
		if over := len(working.MergedFrom) - maxMergeKeys; over > 0 {
			working.MergedFrom = working.MergedFrom[over:]
		}
		report.Applied = true
		rep := report
		return outcome{event: enums.CartEventUpdated, payload: EventPayload{Merge: &rep}}, nil
	})
	if err != nil {
		return state, MergeReport{MergeKey: report.MergeKey}, err
	}

	if conflict := report.Conflict(); conflict != nil {
		e.metrics.AddMergeCaps(len(report.Adjustments))
		e.logg.Warn(e.logg.WithField(ctx, "merge_key", report.MergeKey), conflict.Error())
	}
	return state, report, nil
}
