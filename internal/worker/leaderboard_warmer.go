package worker

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	"github.com/yourusername/leaderboard-api/internal/websocket"
)

// LeaderboardRefresher перечитывает лидерборд из базы и обновляет кеш
type LeaderboardRefresher interface {
	Refresh(ctx context.Context) ([]dto.LeaderboardEntryDTO, error)
}

// Publisher рассылает события клиентам
type Publisher interface {
	Publish(eventType string, data interface{})
}

// LeaderboardWarmer периодически прогревает кеш лидерборда.
// Если рейтинг изменился с прошлого прогрева, рассылает LEADERBOARD_UPDATE.
type LeaderboardWarmer struct {
	refresher LeaderboardRefresher
	publisher Publisher
	interval  time.Duration
	timeout   time.Duration

	scheduler gocron.Scheduler

	mu   sync.Mutex
	last []dto.LeaderboardEntryDTO
}

// NewLeaderboardWarmer создает прогревщик. publisher может быть nil.
func NewLeaderboardWarmer(refresher LeaderboardRefresher, publisher Publisher, interval time.Duration) *LeaderboardWarmer {
	return &LeaderboardWarmer{
		refresher: refresher,
		publisher: publisher,
		interval:  interval,
		timeout:   10 * time.Second,
	}
}

// Start запускает планировщик. При interval <= 0 прогрев отключен.
func (w *LeaderboardWarmer) Start() error {
	if w.interval <= 0 {
		log.Println("[Warmer] Прогрев лидерборда отключен")
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
			defer cancel()
			w.RunOnce(ctx)
		}),
		gocron.WithName("leaderboard-warmer"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		sched.Shutdown()
		return fmt.Errorf("failed to schedule leaderboard warmer: %w", err)
	}

	sched.Start()
	w.scheduler = sched
	log.Printf("[Warmer] Прогрев лидерборда каждые %s", w.interval)
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего прогрева
func (w *LeaderboardWarmer) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}

// RunOnce выполняет один прогрев. Возвращает true, если рейтинг изменился.
func (w *LeaderboardWarmer) RunOnce(ctx context.Context) bool {
	entries, err := w.refresher.Refresh(ctx)
	if err != nil {
		log.Printf("[Warmer] Ошибка прогрева лидерборда: %v", err)
		return false
	}

	w.mu.Lock()
	changed := w.last == nil || !reflect.DeepEqual(w.last, entries)
	w.last = entries
	w.mu.Unlock()

	if changed && w.publisher != nil {
		w.publisher.Publish(websocket.LEADERBOARD_UPDATE, entries)
	}
	return changed
}
