package calibration

import (
	"context"
	"sync"
	"time"

	"github.com/dockwise/scheduler/internal/audit"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/estimator"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

// Apply promotes a pending calibration record to the live coefficient
// set; later estimates pick the new values up straight away through
// cache invalidation. Re-applying an applied record is a no-op that
// returns it unchanged, so a retried request cannot double-write.
type Apply struct {
	repo  domain.Repository
	cache *estimator.Store
	audit *audit.Dispatcher

	mu sync.Mutex
}

func NewApply(
	repo domain.Repository,
	cache *estimator.Store,
	auditor *audit.Dispatcher,
) *Apply {
	return &Apply{repo: repo, cache: cache, audit: auditor}
}

func (uc *Apply) Execute(
	ctx context.Context,
	recordID uint,
	appliedBy string,
	actorID *uint,
) (*models.CalibrationRecord, error) {

	// Two admins applying records for the same category must not
	// interleave the read-check-write below.
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var rec *models.CalibrationRecord
	alreadyApplied := false
	err := uc.repo.Transact(ctx, func(tx domain.Repository) error {
		var err error
		rec, err = tx.GetCalibrationRecord(ctx, recordID)
		if err != nil {
			return httperr.ErrBusiness("calibration_record_not_found")
		}
		if rec.Status == "applied" {
			alreadyApplied = true
			return nil
		}
		if rec.Status != "pending" {
			return httperr.ErrBusiness("calibration_already_" + rec.Status)
		}

		set, err := tx.GetCoefficientSet(ctx, rec.Category)
		if err != nil {
			return err
		}
		if set == nil {
			set = &models.CoefficientSet{Category: rec.Category}
		}
		set.TD = rec.NewTD
		set.TA = rec.NewTA
		set.TL = rec.NewTL
		set.TU = rec.NewTU
		if err := tx.UpsertCoefficientSet(ctx, set); err != nil {
			return err
		}

		now := time.Now().UTC()
		rec.Status = "applied"
		rec.AppliedAt = &now
		rec.AppliedBy = appliedBy
		return tx.UpdateCalibrationRecord(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	if alreadyApplied {
		return rec, nil
	}

	uc.cache.Invalidate(rec.Category)

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "calibration_applied",
		Entity:   "calibration_record",
		EntityID: &rec.ID,
	})
	return rec, nil
}
