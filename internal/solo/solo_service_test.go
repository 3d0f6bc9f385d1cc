package solo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexclash/nexclash/internal/bracket"
	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/tournament"
)

// --- in-memory fakes ---

type bracketSlots struct {
	total  int
	booked int
}

type fakePoolLedger struct {
	mu       sync.Mutex
	total    int
	booked   int
	brackets map[bracket.Tier]*bracketSlots
}

func (l *fakePoolLedger) Reserve(_ context.Context, _ uint, tier bracket.Tier, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bs, ok := l.brackets[tier]
	if !ok {
		return tournament.ErrBracketMissing
	}
	if bs.booked+n > bs.total {
		return tournament.ErrCapacityExceeded
	}
	bs.booked += n
	return nil
}

func (l *fakePoolLedger) Release(_ context.Context, _ uint, tier bracket.Tier, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bs, ok := l.brackets[tier]
	if !ok {
		return tournament.ErrBracketMissing
	}
	bs.booked -= n
	if bs.booked < 0 {
		bs.booked = 0
	}
	return nil
}

func (l *fakePoolLedger) ReservePool(_ context.Context, _ uint, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.booked+n > l.total {
		return tournament.ErrCapacityExceeded
	}
	l.booked += n
	return nil
}

func (l *fakePoolLedger) ReleasePool(_ context.Context, _ uint, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.booked -= n
	if l.booked < 0 {
		l.booked = 0
	}
	return nil
}

// commitPool mirrors the tournament-total commit the real repo runs inside
// the registration transaction for team-tournament pool entries.
func (l *fakePoolLedger) commitPool(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.booked+n > l.total {
		return tournament.ErrCapacityExceeded
	}
	l.booked += n
	return nil
}

func (l *fakePoolLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.booked
}

func (l *fakePoolLedger) bracketCount(tier bracket.Tier) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bs, ok := l.brackets[tier]; ok {
		return bs.booked
	}
	return 0
}

type fakeTournaments struct {
	tournament *tournament.Tournament
	registered map[uint]bool
}

func (f *fakeTournaments) GetTournamentByID(id uint) (*tournament.Tournament, error) {
	if f.tournament != nil && f.tournament.ID == id {
		return f.tournament, nil
	}
	return nil, nil
}

func (f *fakeTournaments) IsPlayerRegistered(_ uint, playerID uint) (bool, error) {
	return f.registered[playerID], nil
}

type fakeRatings struct {
	ratings map[uint]identity.Rating
}

func (f *fakeRatings) VerifiedRating(_ context.Context, playerID uint) (identity.Rating, error) {
	r, ok := f.ratings[playerID]
	if !ok {
		return identity.Rating{}, identity.ErrUnverified
	}
	return r, nil
}

type fakeSoloRepo struct {
	mu          sync.Mutex
	regs        map[uint]*Registration
	tournaments *fakeTournaments
	ledger      *fakePoolLedger
	failCreate  bool
}

func (r *fakeSoloRepo) CreateRegistration(_ context.Context, reg *Registration, kind tournament.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("storage offline")
	}
	if _, ok := r.regs[reg.PlayerID]; ok {
		return tournament.ErrAlreadyRegistered
	}
	if kind == tournament.KindTeam {
		if err := r.ledger.commitPool(1); err != nil {
			return err
		}
	}
	clone := *reg
	r.regs[reg.PlayerID] = &clone
	r.tournaments.registered[reg.PlayerID] = true
	return nil
}

func (r *fakeSoloRepo) GetRegistration(_, playerID uint) (*Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[playerID]
	if !ok {
		return nil, nil
	}
	clone := *reg
	return &clone, nil
}

func (r *fakeSoloRepo) ListPool(_ uint, _, _ int) ([]Registration, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var regs []Registration
	for _, reg := range r.regs {
		regs = append(regs, *reg)
	}
	return regs, int64(len(regs)), nil
}

func (r *fakeSoloRepo) RemoveRegistration(_ context.Context, _, playerID uint) (*Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[playerID]
	if !ok {
		return nil, tournament.ErrNotFound
	}
	delete(r.regs, playerID)
	delete(r.tournaments.registered, playerID)
	return reg, nil
}

// --- fixtures ---

const testTournamentID = uint(7)

func activeSoloTournament(slots int) *tournament.Tournament {
	t := &tournament.Tournament{
		Kind:                 tournament.KindSolo,
		Status:               tournament.StatusActive,
		StartAt:              time.Now().Add(time.Hour),
		EndAt:                time.Now().Add(48 * time.Hour),
		RegistrationDeadline: time.Now().Add(24 * time.Hour),
		TotalSlots:           slots,
	}
	t.ID = testTournamentID
	return t
}

func activeTeamTournament(slots int) *tournament.Tournament {
	t := activeSoloTournament(slots)
	t.Kind = tournament.KindTeam
	return t
}

func newTestService(t *tournament.Tournament, slots int) (*Service, *fakeSoloRepo, *fakePoolLedger, *fakeRatings) {
	tournaments := &fakeTournaments{tournament: t, registered: map[uint]bool{}}
	ledger := &fakePoolLedger{total: slots, brackets: map[bracket.Tier]*bracketSlots{}}
	repo := &fakeSoloRepo{regs: map[uint]*Registration{}, tournaments: tournaments, ledger: ledger}
	ratings := &fakeRatings{ratings: map[uint]identity.Rating{}}
	return NewService(repo, tournaments, ledger, ratings), repo, ledger, ratings
}

func ratePlayer(ratings *fakeRatings, playerID uint) {
	ratings.ratings[playerID] = identity.Rating{RankTier: 52, MMR: 3100, Tier: bracket.TierLegendAncient}
}

// --- tests ---

func TestRegisterReservesPoolSlot(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeSoloTournament(10), 10)
	ratePlayer(ratings, 10)

	reg, err := svc.Register(context.Background(), testTournamentID, 10)
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, reg.Status)
	assert.Equal(t, bracket.TierLegendAncient, reg.Tier)
	assert.Equal(t, 3100, reg.MMR)
	assert.Equal(t, 1, ledger.count())
}

func TestRegisterLastSlotRace(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeSoloTournament(1), 1)
	ratePlayer(ratings, 10)
	ratePlayer(ratings, 11)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, playerID := range []uint{10, 11} {
		wg.Add(1)
		go func(i int, playerID uint) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), testTournamentID, playerID)
		}(i, playerID)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, tournament.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, ledger.count())
}

func TestRegisterReleasesSlotWhenPersistFails(t *testing.T) {
	svc, repo, ledger, ratings := newTestService(activeSoloTournament(10), 10)
	ratePlayer(ratings, 10)
	repo.failCreate = true

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	require.Error(t, err)
	assert.Equal(t, 0, ledger.count())
}

func TestRegisterTwice(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeSoloTournament(10), 10)
	ratePlayer(ratings, 10)

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), testTournamentID, 10)
	assert.ErrorIs(t, err, tournament.ErrAlreadyRegistered)
	assert.Equal(t, 1, ledger.count())
}

func TestRegisterTeamPoolBooksBracketSlot(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeTeamTournament(40), 40)
	ledger.brackets[bracket.TierLegendAncient] = &bracketSlots{total: 10}
	ratePlayer(ratings, 10)

	reg, err := svc.Register(context.Background(), testTournamentID, 10)
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, reg.Status)
	assert.Equal(t, bracket.TierLegendAncient, reg.Tier)
	assert.Equal(t, 1, ledger.bracketCount(bracket.TierLegendAncient))
	// A pool entrant in a team tournament counts toward the total at once.
	assert.Equal(t, 1, ledger.count())
}

func TestRegisterTeamPoolBracketFull(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeTeamTournament(40), 40)
	ledger.brackets[bracket.TierLegendAncient] = &bracketSlots{total: 1, booked: 1}
	ratePlayer(ratings, 10)

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	assert.ErrorIs(t, err, tournament.ErrCapacityExceeded)
	assert.Equal(t, 0, ledger.count())
}

func TestRegisterTeamPoolLastBracketSlotRace(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeTeamTournament(40), 40)
	ledger.brackets[bracket.TierLegendAncient] = &bracketSlots{total: 1}
	ratePlayer(ratings, 10)
	ratePlayer(ratings, 11)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, playerID := range []uint{10, 11} {
		wg.Add(1)
		go func(i int, playerID uint) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), testTournamentID, playerID)
		}(i, playerID)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, tournament.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, ledger.bracketCount(bracket.TierLegendAncient))
}

func TestRegisterTeamPoolReleasesBracketOnPersistFail(t *testing.T) {
	svc, repo, ledger, ratings := newTestService(activeTeamTournament(40), 40)
	ledger.brackets[bracket.TierLegendAncient] = &bracketSlots{total: 10}
	ratePlayer(ratings, 10)
	repo.failCreate = true

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	require.Error(t, err)
	assert.Equal(t, 0, ledger.bracketCount(bracket.TierLegendAncient))
	assert.Equal(t, 0, ledger.count())
}

func TestRegisterTeamPoolRejectsTeamMember(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeTeamTournament(40), 40)
	ledger.brackets[bracket.TierLegendAncient] = &bracketSlots{total: 10}
	ratePlayer(ratings, 10)

	// Player 10 already sits on a roster in this tournament.
	svcTournaments := svc.tournaments.(*fakeTournaments)
	svcTournaments.registered[10] = true

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	assert.ErrorIs(t, err, tournament.ErrAlreadyRegistered)
	assert.Equal(t, 0, ledger.bracketCount(bracket.TierLegendAncient))
}

func TestRemoveTeamPoolReleasesBracketSlot(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeTeamTournament(40), 40)
	ledger.brackets[bracket.TierLegendAncient] = &bracketSlots{total: 10}
	ratePlayer(ratings, 10)

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.bracketCount(bracket.TierLegendAncient))
	require.Equal(t, 1, ledger.count())

	require.NoError(t, svc.Remove(context.Background(), testTournamentID, 10))
	assert.Equal(t, 0, ledger.bracketCount(bracket.TierLegendAncient))
	assert.Equal(t, 0, ledger.count())
}

func TestRegisterRejectsPaidTournament(t *testing.T) {
	fixture := activeSoloTournament(10)
	fixture.EntryFee = 100
	svc, _, ledger, ratings := newTestService(fixture, 10)
	ratePlayer(ratings, 10)

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	assert.ErrorIs(t, err, ErrPaidEntry)
	assert.Equal(t, 0, ledger.count())
}

func TestRegisterRejectsUnverifiedPlayer(t *testing.T) {
	svc, _, ledger, _ := newTestService(activeSoloTournament(10), 10)

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	assert.ErrorIs(t, err, identity.ErrUnverified)
	assert.Equal(t, 0, ledger.count())
}

func TestRegisterUnknownTournament(t *testing.T) {
	svc, _, _, ratings := newTestService(activeSoloTournament(10), 10)
	ratePlayer(ratings, 10)

	_, err := svc.Register(context.Background(), 999, 10)
	assert.ErrorIs(t, err, tournament.ErrNotFound)
}

func TestRemoveReleasesPoolSlot(t *testing.T) {
	svc, _, ledger, ratings := newTestService(activeSoloTournament(10), 10)
	ratePlayer(ratings, 10)

	_, err := svc.Register(context.Background(), testTournamentID, 10)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.count())

	require.NoError(t, svc.Remove(context.Background(), testTournamentID, 10))
	assert.Equal(t, 0, ledger.count())

	reg, err := svc.MyRegistration(testTournamentID, 10)
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestRemoveUnknownRegistration(t *testing.T) {
	svc, _, _, _ := newTestService(activeSoloTournament(10), 10)
	assert.ErrorIs(t, svc.Remove(context.Background(), testTournamentID, 10), tournament.ErrNotFound)
}
