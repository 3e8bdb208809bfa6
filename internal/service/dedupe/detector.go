// internal/service/dedupe/detector.go
package dedupe

import (
	"context"
	"fmt"
	"strings"

	"atriumcrm-service/internal/domain/client"

	"go.uber.org/zap"
)

// Detector scans the client population for records that plausibly describe
// the same person as a subject client. Matching is exact-string only: merges
// are destructive, so false positives cost more than misses.
type Detector struct {
	store  Store
	logger *zap.Logger
}

func NewDetector(store Store, logger *zap.Logger) *Detector {
	return &Detector{
		store:  store,
		logger: logger,
	}
}

// DetectConflicts returns every other client matching the subject on phone,
// email or full name. A candidate found by several passes appears once, with
// its reasons accumulated in phone, email, name order. Read-only.
func (d *Detector) DetectConflicts(ctx context.Context, clientID int64) ([]client.ConflictCandidate, error) {
	subject, err := d.store.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	acc := newCandidateSet()

	if err := d.matchPhones(ctx, subject, acc); err != nil {
		return nil, err
	}
	if err := d.matchEmail(ctx, subject, acc); err != nil {
		return nil, err
	}
	if err := d.matchName(ctx, subject, acc); err != nil {
		return nil, err
	}

	candidates := acc.list()

	d.logger.Info("conflict scan finished",
		zap.Int64("client_id", clientID),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}

// matchPhones finds contact numbers elsewhere in the store whose phone string
// equals one of the subject's, grouped by owning client.
func (d *Detector) matchPhones(ctx context.Context, subject *client.Client, acc *candidateSet) error {
	phones, err := d.store.FindPhonesByClient(ctx, subject.ID)
	if err != nil {
		return fmt.Errorf("failed to load subject phones: %w", err)
	}

	numbers := distinctNumbers(phones)
	if len(numbers) == 0 {
		return nil
	}

	matches, err := d.store.FindPhonesByNumbers(ctx, numbers, subject.ID)
	if err != nil {
		return fmt.Errorf("failed to match phones: %w", err)
	}

	// Group matched numbers by owning client, keeping first-seen order for
	// both owners and numbers.
	ownerOrder := []int64{}
	matched := map[int64][]string{}
	for _, m := range matches {
		if _, seen := matched[m.ClientID]; !seen {
			ownerOrder = append(ownerOrder, m.ClientID)
		}
		if !containsString(matched[m.ClientID], m.Phone) {
			matched[m.ClientID] = append(matched[m.ClientID], m.Phone)
		}
	}

	for _, ownerID := range ownerOrder {
		reason := "Same phone: " + strings.Join(matched[ownerID], ", ")
		if err := d.addCandidateByID(ctx, acc, ownerID, reason); err != nil {
			return err
		}
	}

	return nil
}

func (d *Detector) matchEmail(ctx context.Context, subject *client.Client, acc *candidateSet) error {
	if !client.HasText(subject.Email) {
		return nil
	}

	others, err := d.store.FindClientsByEmail(ctx, subject.Email.String, subject.ID)
	if err != nil {
		return fmt.Errorf("failed to match email: %w", err)
	}

	reason := "Same email: " + subject.Email.String
	for _, other := range others {
		if err := d.addCandidate(ctx, acc, other, reason); err != nil {
			return err
		}
	}

	return nil
}

// matchName only fires when the subject carries both name parts; a lone
// first or last name is too weak a signal for an exact-match detector.
func (d *Detector) matchName(ctx context.Context, subject *client.Client, acc *candidateSet) error {
	if !client.HasText(subject.FirstName) || !client.HasText(subject.LastName) {
		return nil
	}

	others, err := d.store.FindClientsByName(ctx, subject.FirstName.String, subject.LastName.String, subject.ID)
	if err != nil {
		return fmt.Errorf("failed to match name: %w", err)
	}

	reason := "Same name: " + subject.FirstName.String + " " + subject.LastName.String
	for _, other := range others {
		if err := d.addCandidate(ctx, acc, other, reason); err != nil {
			return err
		}
	}

	return nil
}

func (d *Detector) addCandidateByID(ctx context.Context, acc *candidateSet, id int64, reason string) error {
	if acc.has(id) {
		acc.addReason(id, reason)
		return nil
	}

	c, err := d.store.FindClient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load candidate %d: %w", id, err)
	}

	return d.addCandidate(ctx, acc, *c, reason)
}

func (d *Detector) addCandidate(ctx context.Context, acc *candidateSet, c client.Client, reason string) error {
	if acc.has(c.ID) {
		acc.addReason(c.ID, reason)
		return nil
	}

	phones, err := d.store.FindPhonesByClient(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load candidate phones: %w", err)
	}

	acc.add(c, phones, reason)
	return nil
}

// candidateSet unions candidates by client id, accumulating reasons instead
// of duplicating entries. Result order is first-discovery order.
type candidateSet struct {
	byID  map[int64]*client.ConflictCandidate
	order []int64
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byID: make(map[int64]*client.ConflictCandidate)}
}

func (s *candidateSet) has(id int64) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *candidateSet) add(c client.Client, phones []client.ContactNumber, reason string) {
	s.byID[c.ID] = &client.ConflictCandidate{
		Client:  c,
		Phones:  phones,
		Reasons: []string{reason},
	}
	s.order = append(s.order, c.ID)
}

func (s *candidateSet) addReason(id int64, reason string) {
	s.byID[id].Reasons = append(s.byID[id].Reasons, reason)
}

func (s *candidateSet) list() []client.ConflictCandidate {
	out := make([]client.ConflictCandidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func distinctNumbers(phones []client.ContactNumber) []string {
	out := []string{}
	for _, p := range phones {
		if p.Phone != "" && !containsString(out, p.Phone) {
			out = append(out, p.Phone)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
