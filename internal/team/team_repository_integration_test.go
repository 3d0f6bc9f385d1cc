package team

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
	"github.com/nexclash/nexclash/internal/tournament"
)

// startPostgres boots a throwaway Postgres container for tests that need
// the real row locking in AddMember; -short skips these.
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
	require.NoError(t, db.AutoMigrate(
		&tournament.Tournament{}, &tournament.BracketSlots{}, &tournament.Registration{},
		&Team{}, &Member{},
	))
	return db
}

func seedTournamentWithTeam(t *testing.T, db *gorm.DB, memberCount int) (*tournament.Tournament, *Team) {
	t.Helper()
	tour := &tournament.Tournament{
		Name:                 "NexClash Open",
		Kind:                 tournament.KindTeam,
		Status:               tournament.StatusActive,
		StartAt:              time.Now().Add(time.Hour),
		EndAt:                time.Now().Add(48 * time.Hour),
		RegistrationDeadline: time.Now().Add(24 * time.Hour),
		TotalSlots:           40,
	}
	require.NoError(t, db.Create(tour).Error)
	require.NoError(t, db.Create(&tournament.BracketSlots{
		TournamentID: tour.ID,
		Tier:         bracket.TierLegendAncient,
		SlotsTotal:   10,
	}).Error)

	repo := NewRepository(db)
	team := &Team{TournamentID: tour.ID, CaptainID: 1, TeamCode: "QWERTY", Status: StatusForming}
	captain := &Member{PlayerID: 1, Tier: bracket.TierLegendAncient, MMR: 3000, IsCaptain: true}
	require.NoError(t, repo.CreateTeam(context.Background(), team, captain))

	for playerID := uint(2); playerID <= uint(memberCount); playerID++ {
		m := &Member{PlayerID: playerID, Tier: bracket.TierLegendAncient, MMR: 3000}
		_, err := repo.AddMember(context.Background(), team.TeamCode, m)
		require.NoError(t, err)
	}
	return tour, team
}

// Two players race for the last seat of a four-member team. The locked
// team row must serialize them: exactly one joins and settles the team,
// the other is told the team is full.
func TestAddMemberLastSeatRaceOnPostgres(t *testing.T) {
	db := startPostgres(t)
	tour, team := seedTournamentWithTeam(t, db, 4)
	repo := NewRepository(db)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, playerID := range []uint{50, 51} {
		wg.Add(1)
		go func(i int, playerID uint) {
			defer wg.Done()
			m := &Member{PlayerID: playerID, Tier: bracket.TierLegendAncient, MMR: 2800}
			_, errs[i] = repo.AddMember(context.Background(), team.TeamCode, m)
		}(i, playerID)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrTeamFull)
		}
	}
	assert.Equal(t, 1, successes)

	var stored Team
	require.NoError(t, db.First(&stored, team.ID).Error)
	assert.Equal(t, StatusFull, stored.Status)

	var seats int64
	require.NoError(t, db.Model(&Member{}).Where("team_id = ?", team.ID).Count(&seats).Error)
	assert.EqualValues(t, TeamSize, seats)

	// Settlement committed the full roster to the tournament total once.
	var storedTour tournament.Tournament
	require.NoError(t, db.First(&storedTour, tour.ID).Error)
	assert.Equal(t, TeamSize, storedTour.SlotsBooked)
}

// The shared registration key is the duplicate fence: creating a second
// team as the same captain in the same tournament must trip it on the
// real unique index.
func TestCreateTeamDuplicateCaptainOnPostgres(t *testing.T) {
	db := startPostgres(t)
	tour, _ := seedTournamentWithTeam(t, db, 1)
	repo := NewRepository(db)

	second := &Team{TournamentID: tour.ID, CaptainID: 1, TeamCode: "ZXCVBN", Status: StatusForming}
	captain := &Member{PlayerID: 1, Tier: bracket.TierLegendAncient, MMR: 3000, IsCaptain: true}
	err := repo.CreateTeam(context.Background(), second, captain)
	assert.ErrorIs(t, err, tournament.ErrAlreadyRegistered)

	// The failed transaction left no partial rows behind.
	var teams int64
	require.NoError(t, db.Model(&Team{}).Where("tournament_id = ?", tour.ID).Count(&teams).Error)
	assert.EqualValues(t, 1, teams)
}
