package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/cryptox"
	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/logging"
	"github.com/dmitrijs2005/secrimpo/internal/server/config"
	"github.com/dmitrijs2005/secrimpo/internal/server/models"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/records"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
	"github.com/dmitrijs2005/secrimpo/internal/timex"
)

// SyncService classifies submitted records against the dedup ledger and
// persists the new ones.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	historyMax  int
	now         func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		logger:      logger,
		historyMax:  cfg.HistoryMax,
		now:         time.Now,
	}
}

// Sync processes one envelope in a single transaction. Invalid records are
// reported in Errors and skipped. A storage failure rolls back the whole
// envelope and is reported as an unsuccessful Response.
func (s *SyncService) Sync(ctx context.Context, env *syncapi.Envelope) *syncapi.Response {
	var resp *syncapi.Response

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ldg := s.repomanager.Ledger(tx)
		if err := ldg.Lock(ctx); err != nil {
			return err
		}

		b := &batch{
			user:    env.User,
			ledger:  ldg,
			records: s.repomanager.Records(tx),
			summary: make(map[syncapi.Category]syncapi.CategorySummary, len(syncapi.Categories)),
		}
		if err := b.run(ctx, env.Data); err != nil {
			return err
		}

		entry, err := b.logEntry(env.ClientID)
		if err != nil {
			return err
		}
		if err := s.repomanager.SyncLog(tx).Create(ctx, entry); err != nil {
			return err
		}

		resp = &syncapi.Response{
			Success:         true,
			User:            env.User,
			ServerTimestamp: timex.Time{Time: entry.Timestamp},
			Summary:         b.summary,
			Details:         b.details,
			Errors:          b.errors,
			SyncID:          entry.ID,
		}
		return nil
	})

	if err != nil {
		s.logger.Error(ctx, "sync failed", "user", env.User, "client_uuid", env.ClientID, "error", err)
		return &syncapi.Response{
			Success:         false,
			User:            env.User,
			ServerTimestamp: timex.Time{Time: s.now().UTC()},
			Summary:         map[syncapi.Category]syncapi.CategorySummary{},
			Details:         []string{},
			Errors:          []string{"sync failed: " + common.ErrInternal.Error()},
		}
	}

	if resp.ServerTimestamp.IsZero() {
		resp.ServerTimestamp = timex.Time{Time: s.now().UTC()}
	}
	s.logger.Info(ctx, "sync processed",
		"user", env.User, "client_uuid", env.ClientID, "sync_id", resp.SyncID, "errors", len(resp.Errors))
	return resp
}

// batch accumulates the classification of one envelope.
type batch struct {
	user    string
	ledger  ledger.Repository
	records records.Repository

	summary map[syncapi.Category]syncapi.CategorySummary
	details []string
	errors  []string
}

func (b *batch) run(ctx context.Context, data syncapi.Data) error {
	for _, c := range syncapi.Categories {
		b.summary[c] = syncapi.CategorySummary{}
	}
	b.details = []string{}
	b.errors = []string{}

	for _, p := range data.Personnel {
		if err := b.personnel(ctx, p); err != nil {
			return err
		}
	}
	for _, o := range data.Owners {
		if err := b.owner(ctx, o); err != nil {
			return err
		}
	}
	for _, inc := range data.Incidents {
		if err := b.incident(ctx, inc); err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) count(c syncapi.Category, isNew bool) {
	sum := b.summary[c]
	if isNew {
		sum.New++
	} else {
		sum.Duplicate++
	}
	b.summary[c] = sum
}

// seen reports whether the record is already in the ledger and counts it as
// a duplicate if so.
func (b *batch) seen(ctx context.Context, c syncapi.Category, recordID string) (bool, error) {
	ok, err := b.ledger.IsSynced(ctx, c.Kind(), recordID)
	if err != nil {
		return false, err
	}
	if ok {
		b.count(c, false)
	}
	return ok, nil
}

func (b *batch) mark(ctx context.Context, c syncapi.Category, recordID string, centralID int64, record any) error {
	hash, err := cryptox.Fingerprint(record)
	if err != nil {
		return err
	}
	err = b.ledger.MarkSynced(ctx, &models.SyncedRecord{
		User:      b.user,
		Kind:      c.Kind(),
		RecordID:  recordID,
		CentralID: centralID,
		Hash:      hash,
	})
	if errors.Is(err, common.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (b *batch) personnel(ctx context.Context, p syncapi.Personnel) error {
	if err := p.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Sprintf("personnel %s: %s", p.RegistrationNumber, syncapi.FormatValidationError(err)))
		return nil
	}
	if seen, err := b.seen(ctx, syncapi.CategoryPersonnel, p.RecordID); err != nil || seen {
		return err
	}

	id, created, err := b.personnelID(ctx, p)
	if err != nil {
		return err
	}
	if err := b.mark(ctx, syncapi.CategoryPersonnel, p.RecordID, id, p); err != nil {
		return err
	}

	b.count(syncapi.CategoryPersonnel, created)
	if created {
		b.details = append(b.details, "new personnel created: "+p.RegistrationNumber)
	} else {
		b.details = append(b.details, "personnel "+p.RegistrationNumber+" already existed")
	}
	return nil
}

func (b *batch) owner(ctx context.Context, o syncapi.Owner) error {
	if err := o.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Sprintf("owner %s: %s", o.Document, syncapi.FormatValidationError(err)))
		return nil
	}
	if seen, err := b.seen(ctx, syncapi.CategoryOwners, o.RecordID); err != nil || seen {
		return err
	}

	id, created, err := b.ownerID(ctx, o)
	if err != nil {
		return err
	}
	if err := b.mark(ctx, syncapi.CategoryOwners, o.RecordID, id, o); err != nil {
		return err
	}

	b.count(syncapi.CategoryOwners, created)
	if created {
		b.details = append(b.details, "new owner created: "+o.Document)
	} else {
		b.details = append(b.details, "owner "+o.Document+" already existed")
	}
	return nil
}

func (b *batch) incident(ctx context.Context, inc syncapi.Incident) error {
	if err := inc.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Sprintf("incident %s: %s", inc.GenesisNumber, syncapi.FormatValidationError(err)))
		return nil
	}
	if seen, err := b.seen(ctx, syncapi.CategoryIncidents, inc.RecordID); err != nil || seen {
		return err
	}

	id, err := b.records.FindIncident(ctx, inc.GenesisNumber)
	switch {
	case err == nil:
		if err := b.mark(ctx, syncapi.CategoryIncidents, inc.RecordID, id, inc); err != nil {
			return err
		}
		b.count(syncapi.CategoryIncidents, false)
		b.details = append(b.details, "incident "+inc.GenesisNumber+" already existed")
		return nil
	case !errors.Is(err, common.ErrNotFound):
		return err
	}

	date, err := time.Parse("2006-01-02", inc.SeizureDate)
	if err != nil {
		b.errors = append(b.errors, fmt.Sprintf("incident %s: %v", inc.GenesisNumber, err))
		return nil
	}

	officerID, _, err := b.personnelID(ctx, inc.Officer)
	if err != nil {
		return err
	}
	id, err = b.records.CreateIncident(ctx, inc, date, officerID)
	if err != nil {
		return err
	}
	for _, it := range inc.Items {
		ownerID, _, err := b.ownerID(ctx, it.Owner)
		if err != nil {
			return err
		}
		if err := b.records.CreateItem(ctx, id, ownerID, officerID, it); err != nil {
			return err
		}
	}
	if err := b.mark(ctx, syncapi.CategoryIncidents, inc.RecordID, id, inc); err != nil {
		return err
	}

	b.count(syncapi.CategoryIncidents, true)
	b.details = append(b.details, fmt.Sprintf("new incident created: %s (%d item(s))", inc.GenesisNumber, len(inc.Items)))
	return nil
}

// personnelID returns the central id for p's registration number, creating
// the row when none exists.
func (b *batch) personnelID(ctx context.Context, p syncapi.Personnel) (id int64, created bool, err error) {
	id, err = b.records.FindPersonnel(ctx, p.RegistrationNumber)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return 0, false, err
	}
	id, err = b.records.CreatePersonnel(ctx, p)
	return id, err == nil, err
}

func (b *batch) ownerID(ctx context.Context, o syncapi.Owner) (id int64, created bool, err error) {
	id, err = b.records.FindOwner(ctx, o.Document)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return 0, false, err
	}
	id, err = b.records.CreateOwner(ctx, o)
	return id, err == nil, err
}

func (b *batch) logEntry(clientID string) (*models.SyncLog, error) {
	details, err := json.Marshal(b.summary)
	if err != nil {
		return nil, err
	}

	entry := &models.SyncLog{
		User:       b.user,
		ClientUUID: clientID,
		Status:     syncapi.StatusSuccess,
		Details:    string(details),
	}
	if len(b.errors) > 0 {
		entry.Status = syncapi.StatusPartial
	}
	for _, sum := range b.summary {
		entry.New += sum.New
		entry.Duplicate += sum.Duplicate
	}
	entry.Total = entry.New + entry.Duplicate
	return entry, nil
}

// Status summarizes the sync activity of user.
func (s *SyncService) Status(ctx context.Context, user string) (*syncapi.Status, error) {
	logs := s.repomanager.SyncLog(s.db)

	st := &syncapi.Status{User: user, LastSyncStatus: syncapi.StatusNever}

	last, err := logs.Last(ctx, user)
	switch {
	case err == nil:
		st.LastSync = &timex.Time{Time: last.Timestamp}
		st.LastSyncStatus = last.Status
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("error reading last sync: %w", err)
	}

	total, err := logs.Count(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error counting syncs: %w", err)
	}
	synced, err := s.repomanager.Ledger(s.db).CountByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error counting synced records: %w", err)
	}

	st.TotalSyncs = int64(total)
	st.TotalSyncedRecord = int64(synced)
	return st, nil
}

// History returns up to limit sync log entries of user, newest first.
// A non-positive limit means common.DefaultHistoryLimit; larger values are
// capped at the configured maximum.
func (s *SyncService) History(ctx context.Context, user string, limit int) ([]syncapi.HistoryEntry, error) {
	if limit <= 0 {
		limit = common.DefaultHistoryLimit
	}
	if s.historyMax > 0 && limit > s.historyMax {
		limit = s.historyMax
	}

	logs, err := s.repomanager.SyncLog(s.db).List(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}

	out := make([]syncapi.HistoryEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, syncapi.HistoryEntry{
			ID:         l.ID,
			User:       l.User,
			Timestamp:  timex.Time{Time: l.Timestamp},
			Total:      l.Total,
			New:        l.New,
			Duplicate:  l.Duplicate,
			Status:     l.Status,
			Details:    l.Details,
			ClientUUID: l.ClientUUID,
		})
	}
	return out, nil
}
