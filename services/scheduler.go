// services/scheduler.go
package services

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// OwnerStore lists the owners the scheduler sweeps.
type OwnerStore interface {
	ActiveOwners() ([]uuid.UUID, error)
}

// SchedulerStats is the aggregate published to observers after each cycle.
type SchedulerStats struct {
	LastCheck          time.Time
	MaintenanceSent    int
	EvaluationSent     int
	Errors             int
	PendingMaintenance int
	PendingEvaluation  int
}

// Business-hours gate: automatic processing only runs between these local
// hours, inclusive.
const (
	businessHoursStart = 8
	businessHoursEnd   = 18
)

// Scheduler orchestrates the reminder pipeline: it ticks on a fixed interval,
// gates by business hours, guards against re-entrant cycles, runs both rule
// engines and publishes aggregate statistics.
type Scheduler struct {
	owners      OwnerStore
	maintenance *MaintenanceEngine
	evaluation  *EvaluationEngine
	cache       *ResultCache

	cron    *cron.Cron
	running atomic.Bool
	now     func() time.Time

	initialDelay time.Duration
	statsDelay   time.Duration

	mu        sync.Mutex
	stats     SchedulerStats
	observers []func(SchedulerStats)
}

func NewScheduler(owners OwnerStore, maintenance *MaintenanceEngine, evaluation *EvaluationEngine, cache *ResultCache) *Scheduler {
	return &Scheduler{
		owners:       owners,
		maintenance:  maintenance,
		evaluation:   evaluation,
		cache:        cache,
		cron:         cron.New(),
		now:          time.Now,
		initialDelay: 30 * time.Second,
		statsDelay:   5 * time.Second,
	}
}

// Start schedules the 4-hourly cycle. The first run happens shortly after
// startup when inside business hours; otherwise only the statistics are
// refreshed after a shorter delay.
func (s *Scheduler) Start() {
	if s.withinBusinessHours(s.now()) {
		time.AfterFunc(s.initialDelay, func() { s.RunCycle() })
	} else {
		time.AfterFunc(s.statsDelay, func() { s.refreshPendingCounts() })
	}

	s.cron.AddFunc("@every 4h", func() { s.RunCycle() })
	s.cron.Start()
	log.Println("Reminder scheduler started")
}

// Stop cancels the timer and clears the cache. An in-flight cycle completes
// uninterrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.cache.Clear()
	log.Println("Reminder scheduler stopped")
}

// Subscribe registers an observer notified with a stats snapshot after each
// completed cycle.
func (s *Scheduler) Subscribe(observer func(SchedulerStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Stats returns the latest published snapshot.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RunCycle executes one full cycle: business-hours gate, both engines for
// every active owner, then statistics. A cycle already in progress makes this
// call a no-op.
func (s *Scheduler) RunCycle() {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("Reminder cycle already in progress, skipping")
		return
	}
	defer s.running.Store(false)

	if !s.withinBusinessHours(s.now()) {
		log.Printf("Outside business hours (hour %d), skipping reminder cycle", s.now().Hour())
		return
	}

	owners, err := s.owners.ActiveOwners()
	if err != nil {
		log.Printf("Failed to list active owners: %v", err)
		return
	}

	var total SchedulerStats
	for _, owner := range owners {
		result := s.processOwner(owner)
		total.MaintenanceSent += result.maintenance.Sent
		total.EvaluationSent += result.evaluation.Sent
		total.Errors += result.maintenance.Errors + result.evaluation.Errors
	}

	s.publish(total)
	log.Printf("Reminder cycle finished: %d maintenance, %d evaluation, %d errors",
		total.MaintenanceSent, total.EvaluationSent, total.Errors)
}

type ownerResult struct {
	maintenance BatchResult
	evaluation  BatchResult
}

func (s *Scheduler) processOwner(owner uuid.UUID) ownerResult {
	var result ownerResult

	// The two settings reads are independent, so issue them concurrently
	// and join before dispatching.
	var (
		wg                sync.WaitGroup
		maintenancePolicy ReminderPolicy
		evaluationPolicy  EvaluationPolicy
		maintenanceErr    error
		evaluationErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		maintenancePolicy, maintenanceErr = s.maintenance.Settings(owner)
	}()
	go func() {
		defer wg.Done()
		evaluationPolicy, evaluationErr = s.evaluation.Settings(owner)
	}()
	wg.Wait()

	if maintenanceErr != nil || evaluationErr != nil {
		log.Printf("Owner %s: settings load failed (maintenance: %v, evaluation: %v)",
			owner, maintenanceErr, evaluationErr)
		return result
	}

	// Maintenance before evaluation, each only near its configured hour.
	if maintenancePolicy.Enabled && withinTargetHour(maintenancePolicy.SendTime, s.now()) {
		batch, err := s.maintenance.ProcessAutomaticReminders(owner)
		if err != nil {
			log.Printf("Owner %s: maintenance batch failed: %v", owner, err)
		}
		result.maintenance = batch
	}

	if evaluationPolicy.Enabled && withinTargetHour(evaluationPolicy.SendTime, s.now()) {
		batch, err := s.evaluation.ProcessAutomaticReminders(owner)
		if err != nil {
			log.Printf("Owner %s: evaluation batch failed: %v", owner, err)
		}
		result.evaluation = batch
	}

	return result
}

func (s *Scheduler) publish(total SchedulerStats) {
	pendingMaintenance, pendingEvaluation := s.pendingCounts()

	s.mu.Lock()
	s.stats = SchedulerStats{
		LastCheck:          s.now(),
		MaintenanceSent:    total.MaintenanceSent,
		EvaluationSent:     total.EvaluationSent,
		Errors:             total.Errors,
		PendingMaintenance: pendingMaintenance,
		PendingEvaluation:  pendingEvaluation,
	}
	snapshot := s.stats
	observers := make([]func(SchedulerStats), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		observer(snapshot)
	}
}

// refreshPendingCounts updates only the pending statistics, without sending.
func (s *Scheduler) refreshPendingCounts() {
	pendingMaintenance, pendingEvaluation := s.pendingCounts()

	s.mu.Lock()
	s.stats.PendingMaintenance = pendingMaintenance
	s.stats.PendingEvaluation = pendingEvaluation
	s.mu.Unlock()
}

func (s *Scheduler) pendingCounts() (int, int) {
	owners, err := s.owners.ActiveOwners()
	if err != nil {
		log.Printf("Failed to list active owners for statistics: %v", err)
		return 0, 0
	}

	var totalMaintenance, totalEvaluation int
	for _, owner := range owners {
		if count, err := s.maintenance.PendingCount(owner); err == nil {
			totalMaintenance += count
		}
		if count, err := s.evaluation.PendingCount(owner); err == nil {
			totalEvaluation += count
		}
	}
	return totalMaintenance, totalEvaluation
}

func (s *Scheduler) withinBusinessHours(now time.Time) bool {
	hour := now.Hour()
	return hour >= businessHoursStart && hour <= businessHoursEnd
}
