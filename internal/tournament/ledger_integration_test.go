package tournament

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nexclash/nexclash/internal/bracket"
)

// startPostgres boots a throwaway Postgres container and returns a
// connected handle with the same config the app uses. Row-locking behavior
// can only be checked against the real thing; -short skips these.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("nexclash_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tournament{}, &BracketSlots{}, &Registration{}))
	return db
}

func seedTeamTournament(t *testing.T, db *gorm.DB, totalSlots, bracketSlotTotal int) *Tournament {
	t.Helper()
	tour := &Tournament{
		Name:                 "NexClash Open",
		Kind:                 KindTeam,
		Status:               StatusActive,
		StartAt:              time.Now().Add(time.Hour),
		EndAt:                time.Now().Add(48 * time.Hour),
		RegistrationDeadline: time.Now().Add(24 * time.Hour),
		TotalSlots:           totalSlots,
	}
	require.NoError(t, db.Create(tour).Error)
	require.NoError(t, db.Create(&BracketSlots{
		TournamentID: tour.ID,
		Tier:         bracket.TierLegendAncient,
		SlotsTotal:   bracketSlotTotal,
	}).Error)
	return tour
}

func TestSlotLedgerReserveUnderContention(t *testing.T) {
	db := startPostgres(t)
	tour := seedTeamTournament(t, db, 40, 5)
	ledger := NewSlotLedger(db)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.Reserve(context.Background(), tour.ID, bracket.TierLegendAncient, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 5, successes)

	var bs BracketSlots
	require.NoError(t, db.Where("tournament_id = ?", tour.ID).First(&bs).Error)
	assert.Equal(t, 5, bs.SlotsBooked)
}

func TestSlotLedgerReleaseReturnsCapacity(t *testing.T) {
	db := startPostgres(t)
	tour := seedTeamTournament(t, db, 40, 1)
	ledger := NewSlotLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, tour.ID, bracket.TierLegendAncient, 1))
	assert.ErrorIs(t, ledger.Reserve(ctx, tour.ID, bracket.TierLegendAncient, 1), ErrCapacityExceeded)

	require.NoError(t, ledger.Release(ctx, tour.ID, bracket.TierLegendAncient, 1))
	assert.NoError(t, ledger.Reserve(ctx, tour.ID, bracket.TierLegendAncient, 1))
}

func TestSlotLedgerReservePoolUnderContention(t *testing.T) {
	db := startPostgres(t)
	tour := &Tournament{
		Name:                 "NexClash Solo Cup",
		Kind:                 KindSolo,
		Status:               StatusActive,
		StartAt:              time.Now().Add(time.Hour),
		EndAt:                time.Now().Add(48 * time.Hour),
		RegistrationDeadline: time.Now().Add(24 * time.Hour),
		TotalSlots:           3,
	}
	require.NoError(t, db.Create(tour).Error)
	ledger := NewSlotLedger(db)

	const callers = 6
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.ReservePool(context.Background(), tour.ID, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 3, successes)

	var stored Tournament
	require.NoError(t, db.First(&stored, tour.ID).Error)
	assert.Equal(t, 3, stored.SlotsBooked)
}

func TestRegistrationUniqueKeyUnderPostgres(t *testing.T) {
	db := startPostgres(t)
	tour := seedTeamTournament(t, db, 40, 5)

	first := Registration{TournamentID: tour.ID, PlayerID: 10, Kind: RegTeam}
	require.NoError(t, db.Create(&first).Error)

	dup := Registration{TournamentID: tour.ID, PlayerID: 10, Kind: RegSolo}
	assert.ErrorIs(t, db.Create(&dup).Error, gorm.ErrDuplicatedKey)
}
