package calibration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockwise/scheduler/internal/audit"
	"github.com/dockwise/scheduler/internal/estimator"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/infra/repository"
	"github.com/dockwise/scheduler/internal/models"
)

type calibFixture struct {
	repo      *repository.MemoryRepository
	store     *estimator.Store
	est       *estimator.Estimator
	calculate *Calculate
	apply     *Apply
}

func newCalibFixture(t *testing.T) *calibFixture {
	t.Helper()

	repo := repository.NewMemoryRepository()
	store := estimator.NewStore(repo)
	dispatcher := audit.NewDispatcher(nil)

	return &calibFixture{
		repo:      repo,
		store:     store,
		est:       estimator.New(store),
		calculate: NewCalculate(repo, store, dispatcher),
		apply:     NewApply(repo, store, dispatcher),
	}
}

// seedCompleted stores completed appointments whose actual durations
// follow minutes = td + ta·units + tl·lines + tu·notes exactly.
func (f *calibFixture) seedCompleted(
	t *testing.T,
	category string,
	td, ta, tl, tu float64,
	loads [][3]int,
) {
	t.Helper()
	ctx := context.Background()

	start := time.Date(2030, 4, 1, 6, 0, 0, 0, time.UTC)
	for i, l := range loads {
		units, lines, notes := l[0], l[1], l[2]
		actual := td + ta*float64(units) + tl*float64(lines) + tu*float64(notes)

		ap := &models.Appointment{
			ProviderName:      "Proveedor Test",
			GoodsType:         category,
			StartUTC:          start.AddDate(0, 0, i),
			EndUTC:            start.AddDate(0, 0, i).Add(time.Hour),
			SlotDate:          start.AddDate(0, 0, i),
			SlotStartTime:     "08:00",
			WorkMinutesNeeded: 60,
			Units:             &units,
			Lines:             &lines,
			DeliveryNotesCount: &notes,
			Status:            "completed",
			ActualDurationMin: &actual,
		}
		require.NoError(t, f.repo.CreateAppointment(ctx, ap))
	}
}

func TestCalculate_UnknownCategory(t *testing.T) {
	f := newCalibFixture(t)

	_, err := f.calculate.Execute(context.Background(), "perecederos", nil)

	var verr *httperr.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCalculate_InsufficientSample(t *testing.T) {
	f := newCalibFixture(t)
	f.seedCompleted(t, "Mobiliario", 12, 1, 3, 0.5, [][3]int{
		{1, 2, 3}, {2, 5, 1}, {3, 1, 4}, {4, 3, 2},
	})

	_, err := f.calculate.Execute(context.Background(), "Mobiliario", nil)

	var serr *httperr.InsufficientSampleError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 4, serr.SampleSize)
	assert.Equal(t, MinSampleSize, serr.Minimum)
}

func TestCalculateThenApply(t *testing.T) {
	ctx := context.Background()
	f := newCalibFixture(t)

	f.seedCompleted(t, "Mobiliario", 12, 1, 3, 0.5, [][3]int{
		{1, 2, 3}, {2, 5, 1}, {3, 1, 4}, {4, 3, 2}, {5, 7, 6}, {6, 2, 5},
	})

	res, err := f.calculate.Execute(ctx, "muebles", nil) // alias of Mobiliario
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, "Mobiliario", rec.Category)
	assert.Equal(t, "pending", rec.Status)
	assert.Equal(t, 6, rec.SampleSize)
	assert.InDelta(t, 12, rec.NewTD, 0.01)
	assert.InDelta(t, 1, rec.NewTA, 0.01)
	assert.InDelta(t, 3, rec.NewTL, 0.01)
	assert.InDelta(t, 0.5, rec.NewTU, 0.01)
	assert.InDelta(t, 0, rec.MAENew, 0.01)
	assert.Greater(t, rec.MAEOld, rec.MAENew)
	assert.InDelta(t, 100, res.Improvement, 0.01)

	// The estimator still runs on the seed coefficients until apply.
	before, err := f.est.Estimate(ctx, "Mobiliario", 10, 4, 4)
	require.NoError(t, err)
	assert.InDelta(t, 34.36, before, 0.01)

	applied, err := f.apply.Execute(ctx, rec.ID, "admin@warehouse", nil)
	require.NoError(t, err)
	assert.Equal(t, "applied", applied.Status)
	assert.NotNil(t, applied.AppliedAt)
	assert.Equal(t, "admin@warehouse", applied.AppliedBy)

	after, err := f.est.Estimate(ctx, "Mobiliario", 10, 4, 4)
	require.NoError(t, err)
	assert.InDelta(t, 36, after, 0.01) // 12 + 1*10 + 3*4 + 0.5*4
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newCalibFixture(t)

	f.seedCompleted(t, "Mobiliario", 12, 1, 3, 0.5, [][3]int{
		{1, 2, 3}, {2, 5, 1}, {3, 1, 4}, {4, 3, 2}, {5, 7, 6},
	})
	res, err := f.calculate.Execute(ctx, "Mobiliario", nil)
	require.NoError(t, err)

	first, err := f.apply.Execute(ctx, res.Record.ID, "admin@warehouse", nil)
	require.NoError(t, err)

	// Re-applying is a no-op: same record back, nothing rewritten.
	second, err := f.apply.Execute(ctx, res.Record.ID, "someone-else@warehouse", nil)
	require.NoError(t, err)
	assert.Equal(t, "applied", second.Status)
	assert.Equal(t, "admin@warehouse", second.AppliedBy)
	require.NotNil(t, second.AppliedAt)
	assert.Equal(t, *first.AppliedAt, *second.AppliedAt)

	set, err := f.repo.GetCoefficientSet(ctx, "Mobiliario")
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.InDelta(t, res.Record.NewTD, set.TD, 0.01)
}

func TestApply_UnknownRecord(t *testing.T) {
	f := newCalibFixture(t)

	_, err := f.apply.Execute(context.Background(), 99, "admin@warehouse", nil)
	assert.True(t, httperr.IsBusiness(err, "calibration_record_not_found"))
}

func TestCalculate_AsientosDropsInterceptAndLines(t *testing.T) {
	ctx := context.Background()
	f := newCalibFixture(t)

	// Durations scale purely with units and delivery notes.
	loads := [][3]int{{1, 3, 1}, {2, 1, 3}, {3, 4, 1}, {4, 2, 5}, {5, 6, 2}}
	f.seedCompleted(t, "Asientos", 0, 5, 0, 1, loads)

	res, err := f.calculate.Execute(ctx, "asientos", nil)
	require.NoError(t, err)

	rec := res.Record
	assert.Zero(t, rec.NewTD)
	assert.Zero(t, rec.NewTL)
	assert.InDelta(t, 5, rec.NewTA, 0.01)
	assert.InDelta(t, 1, rec.NewTU, 0.01)
}

func TestCalculate_SkipsSamplesWithoutVariety(t *testing.T) {
	ctx := context.Background()
	f := newCalibFixture(t)

	f.seedCompleted(t, "Electro", 30, 0, 0, 0, [][3]int{
		{2, 2, 2}, {2, 2, 2}, {2, 2, 2}, {2, 2, 2}, {2, 2, 2},
	})

	_, err := f.calculate.Execute(ctx, "Electro", nil)
	assert.True(t, httperr.IsBusiness(err, "insufficient_sample_variety"))
}
