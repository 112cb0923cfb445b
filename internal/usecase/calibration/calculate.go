package calibration

import (
	"context"

	"github.com/dockwise/scheduler/internal/audit"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/estimator"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

// MinSampleSize is the smallest completed-appointment sample a
// calibration run will accept.
const MinSampleSize = 5

// Asientos deliveries have no meaningful fixed setup time, so their
// fit drops the intercept and lines terms.
const noInterceptCategory = "Asientos"

type CalculateResult struct {
	Record      *models.CalibrationRecord `json:"record"`
	Improvement float64                   `json:"improvement_pct"`
}

// Calculate fits fresh coefficients for a category from its completed
// appointments and stores the proposal as a pending record. Nothing
// changes for the estimator until the record is applied.
type Calculate struct {
	repo   domain.Repository
	coeffs estimator.Source
	audit  *audit.Dispatcher
}

func NewCalculate(
	repo domain.Repository,
	coeffs estimator.Source,
	auditor *audit.Dispatcher,
) *Calculate {
	return &Calculate{repo: repo, coeffs: coeffs, audit: auditor}
}

func (uc *Calculate) Execute(
	ctx context.Context,
	category string,
	actorID *uint,
) (*CalculateResult, error) {

	canonical := estimator.NormalizeCategory(category)
	if canonical == "" {
		return nil, &httperr.ValidationError{Field: "category", Reason: "unknown category"}
	}

	completed, err := uc.repo.CompletedForCategory(ctx, canonical)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(completed))
	for _, ap := range completed {
		if ap.ActualDurationMin == nil {
			continue
		}
		samples = append(samples, Sample{
			Units:              derefInt(ap.Units),
			Lines:              derefInt(ap.Lines),
			DeliveryNotesCount: derefInt(ap.DeliveryNotesCount),
			ActualDurationMin:  *ap.ActualDurationMin,
		})
	}

	if len(samples) < MinSampleSize {
		return nil, &httperr.InsufficientSampleError{
			Category:   canonical,
			SampleSize: len(samples),
			Minimum:    MinSampleSize,
		}
	}

	old, _, err := uc.coeffs.Current(ctx, canonical)
	if err != nil {
		return nil, err
	}

	td, ta, tl, tu, err := Fit(samples, canonical != noInterceptCategory)
	if err != nil {
		return nil, httperr.ErrBusiness("insufficient_sample_variety")
	}

	maeOld := MAE(samples, old.TD, old.TA, old.TL, old.TU)
	maeNew := MAE(samples, td, ta, tl, tu)

	rec := &models.CalibrationRecord{
		Category:   canonical,
		SampleSize: len(samples),
		OldTD:      old.TD, OldTA: old.TA, OldTL: old.TL, OldTU: old.TU,
		NewTD: td, NewTA: ta, NewTL: tl, NewTU: tu,
		MAEOld: maeOld,
		MAENew: maeNew,
		Status: "pending",
	}
	if err := uc.repo.CreateCalibrationRecord(ctx, rec); err != nil {
		return nil, err
	}

	improvement := 0.0
	if maeOld > 0 {
		improvement = round2((maeOld - maeNew) / maeOld * 100)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "calibration_calculated",
		Entity:   "calibration_record",
		EntityID: &rec.ID,
	})

	return &CalculateResult{Record: rec, Improvement: improvement}, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
