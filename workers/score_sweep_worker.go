// workers/score_sweep_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/leaderboard"
	"github.com/nexclash/nexclash/internal/tournament"
)

// StartScoreSweep schedules a periodic re-aggregation of every active solo
// tournament's leaderboard, so standings stay current even for players who
// never hit the manual refresh endpoint.
func StartScoreSweep(db *gorm.DB, service *leaderboard.Service, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			var tournaments []tournament.Tournament
			err := db.Where("kind = ? AND status = ?", tournament.KindSolo, tournament.StatusActive).
				Find(&tournaments).Error
			if err != nil {
				log.Printf("[ScoreSweep] DB error: %v", err)
				return
			}

			for _, t := range tournaments {
				ctx, cancel := context.WithTimeout(context.Background(), interval/2)
				service.RefreshTournament(ctx, t.ID)
				cancel()
				log.Printf("[ScoreSweep] refreshed leaderboard for tournament %d (%s)", t.ID, t.Name)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("[ScoreSweep] running every %s", interval)
	return sched, nil
}
