// internal/service/dedupe/merge.go
package dedupe

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
	xerrors "atriumcrm-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Merge stages, used to tag errors so callers know which step failed.
const (
	StageLoad      = "loading clients"
	StageFields    = "merging fields"
	StagePhones    = "transferring phones"
	StageCases     = "transferring cases"
	StageNotes     = "transferring notes"
	StageDocuments = "transferring documents"
	StageLeads     = "reassigning lead references"
	StageAudit     = "writing audit note"
	StagePurge     = "purging secondary client"
)

// MergeError tags a store failure with the merge stage that produced it.
// The surrounding transaction has already been rolled back by the time a
// MergeError reaches the caller.
type MergeError struct {
	Stage string
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge failed %s: %v", e.Stage, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &MergeError{Stage: stage, Err: err}
}

// EventSink receives notifications about committed merges. May be nil.
type EventSink interface {
	ClientsMerged(mainID, secondaryID int64)
}

// Merger consolidates two client records into one. It is the only actor that
// rewrites a client's ownership graph outside ordinary CRUD, and it does so
// inside a single store transaction: either every step lands or none do.
type Merger struct {
	store  Store
	events EventSink
	logger *zap.Logger
}

func NewMerger(store Store, events EventSink, logger *zap.Logger) *Merger {
	return &Merger{
		store:  store,
		events: events,
		logger: logger,
	}
}

// MergeClients absorbs the secondary client into the main one: fills gaps in
// main's fields from secondary, moves secondary's phones and dependent rows
// to main, writes a markdown audit note on main attributed to actingUserID,
// and deletes the secondary record. Re-invoking after success returns
// ErrNotFound because the secondary no longer exists.
func (m *Merger) MergeClients(ctx context.Context, mainID, secondaryID, actingUserID int64) error {
	if mainID == secondaryID {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "cannot merge a client into itself")
	}

	var report *auditReport

	err := m.store.WithTx(ctx, func(tx Tx) error {
		// Row locks in ascending id order, before any read, so two
		// operators merging the same pair in opposite directions
		// serialize instead of deadlocking.
		if err := tx.LockClients(ctx, mainID, secondaryID); err != nil {
			return stageErr(StageLoad, err)
		}

		main, err := tx.FindClient(ctx, mainID)
		if err != nil {
			return stageErr(StageLoad, err)
		}
		secondary, err := tx.FindClient(ctx, secondaryID)
		if err != nil {
			return stageErr(StageLoad, err)
		}

		mainPhones, err := tx.FindPhonesByClient(ctx, mainID)
		if err != nil {
			return stageErr(StageLoad, err)
		}
		secondaryPhones, err := tx.FindPhonesByClient(ctx, secondaryID)
		if err != nil {
			return stageErr(StageLoad, err)
		}

		report = newAuditReport(secondary, secondaryPhones)

		if err := m.mergeFields(ctx, tx, main, secondary, report); err != nil {
			return err
		}
		if err := m.transferPhones(ctx, tx, mainPhones, secondaryPhones, mainID, report); err != nil {
			return err
		}
		if err := m.transferOwned(ctx, tx, mainID, secondaryID, report); err != nil {
			return err
		}

		if err := tx.InsertNote(ctx, mainID, actingUserID, report.render()); err != nil {
			return stageErr(StageAudit, err)
		}

		// Phones still on secondary are by construction duplicates of
		// numbers main already has; drop them, then the record itself.
		if err := tx.DeletePhonesByClient(ctx, secondaryID); err != nil {
			return stageErr(StagePurge, err)
		}
		if err := tx.DeleteClient(ctx, secondaryID); err != nil {
			return stageErr(StagePurge, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("clients merged",
		zap.Int64("main_id", mainID),
		zap.Int64("secondary_id", secondaryID),
		zap.Int64("acting_user_id", actingUserID),
		zap.Int("fields_copied", len(report.fields)),
		zap.Int("phones_transferred", len(report.phones)),
		zap.Int64("cases_transferred", report.counts[related.KindCase]),
		zap.Int64("notes_transferred", report.counts[related.KindNote]),
		zap.Int64("documents_transferred", report.counts[related.KindDocument]),
		zap.Int64("leads_reassigned", report.counts[related.KindLead]),
	)

	if m.events != nil {
		m.events.ClientsMerged(mainID, secondaryID)
	}

	return nil
}

// mergeFields copies secondary's value into each of main's empty identifying
// fields. A non-empty main value is never overwritten.
func (m *Merger) mergeFields(ctx context.Context, tx Tx, main, secondary *client.Client, report *auditReport) error {
	patch := client.FieldPatch{}

	if !client.HasText(main.FirstName) && client.HasText(secondary.FirstName) {
		v := secondary.FirstName.String
		patch.FirstName = &v
		report.fieldCopied("first name", v)
	}
	if !client.HasText(main.LastName) && client.HasText(secondary.LastName) {
		v := secondary.LastName.String
		patch.LastName = &v
		report.fieldCopied("last name", v)
	}
	if !client.HasText(main.Email) && client.HasText(secondary.Email) {
		v := secondary.Email.String
		patch.Email = &v
		report.fieldCopied("email", v)
	}
	if !main.CountryID.Valid && secondary.CountryID.Valid {
		v := secondary.CountryID.Int64
		patch.CountryID = &v
		report.fieldCopied("country", fmt.Sprintf("%d", v))
	}
	if !main.CityID.Valid && secondary.CityID.Valid {
		v := secondary.CityID.Int64
		patch.CityID = &v
		report.fieldCopied("city", fmt.Sprintf("%d", v))
	}
	if !client.HasText(main.BillingCustomerRef) && client.HasText(secondary.BillingCustomerRef) {
		v := secondary.BillingCustomerRef.String
		patch.BillingCustomerRef = &v
		report.fieldCopied("billing customer", v)
	}

	if patch.IsZero() {
		return nil
	}

	if err := tx.UpdateClientFields(ctx, main.ID, patch); err != nil {
		return stageErr(StageFields, err)
	}

	return nil
}

// transferPhones re-points secondary phones whose string main does not
// already carry. Duplicates stay on secondary and are purged later.
func (m *Merger) transferPhones(ctx context.Context, tx Tx, mainPhones, secondaryPhones []client.ContactNumber, mainID int64, report *auditReport) error {
	existing := map[string]bool{}
	for _, p := range mainPhones {
		existing[p.Phone] = true
	}

	for _, p := range secondaryPhones {
		if existing[p.Phone] {
			continue
		}
		if err := tx.ReassignPhone(ctx, p.ID, mainID); err != nil {
			return stageErr(StagePhones, err)
		}
		existing[p.Phone] = true
		report.phoneTransferred(p.Phone)
	}

	return nil
}

// transferOwned bulk re-points cases, notes, documents and lead references.
func (m *Merger) transferOwned(ctx context.Context, tx Tx, mainID, secondaryID int64, report *auditReport) error {
	caseCodes, err := tx.CaseCodesByClient(ctx, secondaryID)
	if err != nil {
		return stageErr(StageCases, err)
	}
	report.caseCodes = caseCodes

	steps := []struct {
		kind  related.Kind
		stage string
	}{
		{related.KindCase, StageCases},
		{related.KindNote, StageNotes},
		{related.KindDocument, StageDocuments},
		{related.KindLead, StageLeads},
	}

	for _, step := range steps {
		count, err := tx.ReassignOwned(ctx, step.kind, secondaryID, mainID)
		if err != nil {
			return stageErr(step.stage, err)
		}
		report.counts[step.kind] = count
	}

	return nil
}
