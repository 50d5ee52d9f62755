// ABOUTME: Sync orchestrator driving fetch, merge, and local upsert
// ABOUTME: One run at a time; every attempt lands in the append-only log
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/fiveyard/models"
)

// State names the phase a sync run is in.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateMerging  State = "merging"
	StateWriting  State = "writing"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

const syncTypeOpportunities = "opportunities"

// ErrSyncInProgress is returned when a run is requested while another is
// still going. Retry is an explicit external action.
var ErrSyncInProgress = errors.New("sync already in progress")

// RemoteSource is the remote half of the pipeline: the record fetch and
// the activity merge.
type RemoteSource interface {
	FetchOpportunities(ctx context.Context) ([]models.Opportunity, error)
	AttachLastContactDates(ctx context.Context, opps []models.Opportunity) []models.Opportunity
}

// LocalStore is the slice of the store the orchestrator writes to.
type LocalStore interface {
	UpsertOpportunity(ctx context.Context, o *models.Opportunity) error
	AppendSyncLog(ctx context.Context, entry *models.SyncLogEntry) error
	LatestSyncLog(ctx context.Context) (*models.SyncLogEntry, error)
	HasOpportunities(ctx context.Context) (bool, error)
}

// Syncer drives the full pipeline: fetch remote, merge activity, upsert
// local, log the outcome.
type Syncer struct {
	source RemoteSource
	store  LocalStore
	log    *logrus.Entry

	mu      sync.Mutex
	state   State
	running bool
}

func New(source RemoteSource, store LocalStore, log *logrus.Logger) *Syncer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Syncer{
		source: source,
		store:  store,
		log:    log.WithField("component", "syncer"),
		state:  StateIdle,
	}
}

// State reports the current phase.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Syncer) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// RunSync executes one full sync and returns the number of records
// written. Fetch or merge failure is logged to the sync log and returned
// to the caller; a single bad record does not abort the rest of the
// batch — it is counted, logged, and reflected in the log entry.
func (s *Syncer) RunSync(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return 0, ErrSyncInProgress
	}
	s.running = true
	s.state = StateFetching
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	opps, err := s.source.FetchOpportunities(ctx)
	if err != nil {
		s.fail(ctx, fmt.Errorf("fetch opportunities: %w", err))
		return 0, err
	}
	s.log.WithField("count", len(opps)).Info("fetched remote opportunities")

	s.setState(StateMerging)
	opps = s.source.AttachLastContactDates(ctx, opps)

	s.setState(StateWriting)
	written := 0
	var firstWriteErr error
	failed := 0
	for i := range opps {
		if err := s.store.UpsertOpportunity(ctx, &opps[i]); err != nil {
			failed++
			if firstWriteErr == nil {
				firstWriteErr = err
			}
			s.log.WithError(err).WithField("sfId", opps[i].SFID).Warn("upsert failed, continuing")
			continue
		}
		written++
	}

	entry := &models.SyncLogEntry{
		SyncType:      syncTypeOpportunities,
		Status:        models.SyncStatusSuccess,
		RecordsSynced: written,
	}
	if firstWriteErr != nil {
		entry.Status = models.SyncStatusError
		msg := fmt.Sprintf("%d of %d records failed: %v", failed, len(opps), firstWriteErr)
		entry.ErrorMessage = &msg
	}
	if err := s.store.AppendSyncLog(ctx, entry); err != nil {
		s.log.WithError(err).Error("failed to append sync log")
	}

	if firstWriteErr != nil {
		s.setState(StateFailed)
	} else {
		s.setState(StateDone)
	}
	s.log.WithFields(logrus.Fields{"written": written, "failed": failed}).Info("sync complete")
	return written, nil
}

// fail records a failed attempt with count zero before the error is
// re-thrown to the caller.
func (s *Syncer) fail(ctx context.Context, cause error) {
	s.setState(StateFailed)
	msg := cause.Error()
	entry := &models.SyncLogEntry{
		SyncType:     syncTypeOpportunities,
		Status:       models.SyncStatusError,
		ErrorMessage: &msg,
	}
	if err := s.store.AppendSyncLog(ctx, entry); err != nil {
		s.log.WithError(err).Error("failed to append sync log for failed run")
	}
	s.log.WithError(cause).Error("sync failed")
}

// Status summarizes the last sync attempt and whether any data has ever
// landed locally.
type Status struct {
	LastSync *models.SyncLogEntry `json:"lastSync"`
	HasData  bool                 `json:"hasData"`
}

// Status answers "when did we last sync and how did it go."
func (s *Syncer) Status(ctx context.Context) (*Status, error) {
	last, err := s.store.LatestSyncLog(ctx)
	if err != nil {
		return nil, err
	}
	hasData, err := s.store.HasOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{LastSync: last, HasData: hasData}, nil
}
