package tournament

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexclash/nexclash/internal/bracket"
)

// Ledger is the capacity authority. Every slot-affecting operation is a
// single atomic read-check-increment per (tournament, bracket) key; two
// reservations that would jointly exceed a counter can never both succeed.
type Ledger interface {
	// Reserve books n member slots in a team tournament's bracket.
	Reserve(ctx context.Context, tournamentID uint, tier bracket.Tier, n int) error
	// Release is the compensating action for Reserve.
	Release(ctx context.Context, tournamentID uint, tier bracket.Tier, n int) error
	// ReservePool books n slots in a solo tournament's shared pool.
	ReservePool(ctx context.Context, tournamentID uint, n int) error
	// ReleasePool is the compensating action for ReservePool.
	ReleasePool(ctx context.Context, tournamentID uint, n int) error
}

// SlotLedger implements Ledger on Postgres row locks: reserve and release
// serialize on SELECT ... FOR UPDATE of the counter row, so the
// read-check-increment sequence is atomic per key.
type SlotLedger struct {
	db *gorm.DB
}

func NewSlotLedger(db *gorm.DB) *SlotLedger {
	return &SlotLedger{db: db}
}

func (l *SlotLedger) Reserve(ctx context.Context, tournamentID uint, tier bracket.Tier, n int) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bs BracketSlots
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tournament_id = ? AND tier = ?", tournamentID, tier).
			First(&bs).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBracketMissing
			}
			return err
		}
		if bs.SlotsBooked+n > bs.SlotsTotal {
			return ErrCapacityExceeded
		}
		return tx.Model(&bs).Update("slots_booked", bs.SlotsBooked+n).Error
	})
}

func (l *SlotLedger) Release(ctx context.Context, tournamentID uint, tier bracket.Tier, n int) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bs BracketSlots
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tournament_id = ? AND tier = ?", tournamentID, tier).
			First(&bs).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBracketMissing
			}
			return err
		}
		booked := bs.SlotsBooked - n
		if booked < 0 {
			booked = 0
		}
		return tx.Model(&bs).Update("slots_booked", booked).Error
	})
}

func (l *SlotLedger) ReservePool(ctx context.Context, tournamentID uint, n int) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Tournament
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, tournamentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if t.SlotsBooked+n > t.TotalSlots {
			return ErrCapacityExceeded
		}
		return tx.Model(&t).Update("slots_booked", t.SlotsBooked+n).Error
	})
}

func (l *SlotLedger) ReleasePool(ctx context.Context, tournamentID uint, n int) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Tournament
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, tournamentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		booked := t.SlotsBooked - n
		if booked < 0 {
			booked = 0
		}
		return tx.Model(&t).Update("slots_booked", booked).Error
	})
}

// CommitBookedSlots adds a settled team's seats to the tournament total
// inside the caller's transaction, so the team flipping to full and the
// counter moving commit or roll back together. Exceeding the total here
// means the bracket configuration oversells the tournament; the caller
// treats that as an invariant violation.
func CommitBookedSlots(tx *gorm.DB, tournamentID uint, n int) error {
	var t Tournament
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, tournamentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if t.SlotsBooked+n > t.TotalSlots {
		return ErrCapacityExceeded
	}
	return tx.Model(&t).Update("slots_booked", t.SlotsBooked+n).Error
}
