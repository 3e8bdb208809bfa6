package dedupe

import (
	"testing"
	"time"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditReportRender(t *testing.T) {
	secondary := &client.Client{
		ID:        9,
		Code:      "CL-01HZXK",
		FirstName: client.NullText("Jan"),
		LastName:  client.NullText("Nowak"),
		Email:     client.NullText("jan@example.com"),
		CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	phones := []client.ContactNumber{
		{Phone: "+48 601 000 111"},
		{Phone: "+48 602 000 222"},
	}

	r := newAuditReport(secondary, phones)
	r.fieldCopied("last name", "Nowak")
	r.phoneTransferred("+48 602 000 222")
	r.caseCodes = []string{"CA-100", "CA-101"}
	r.counts[related.KindCase] = 2
	r.counts[related.KindNote] = 3
	r.counts[related.KindLead] = 1

	note := r.render()

	assert.Contains(t, note, "**CL-01HZXK**")
	assert.Contains(t, note, "- Name: Jan Nowak")
	assert.Contains(t, note, "- Email: jan@example.com")
	assert.Contains(t, note, "- Phones: +48 601 000 111, +48 602 000 222")
	assert.Contains(t, note, "- Created: 2026-01-02")
	assert.Contains(t, note, "- last name: Nowak")
	assert.Contains(t, note, "- cases: 2 (CA-100, CA-101)")
	assert.Contains(t, note, "- notes: 3")
	assert.Contains(t, note, "- documents: 0")
	assert.Contains(t, note, "- lead references: 1")
}

func TestAuditReportRenderSparseClient(t *testing.T) {
	secondary := &client.Client{
		ID:        3,
		Code:      "CL-EMPTY",
		CreatedAt: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
	}

	r := newAuditReport(secondary, nil)
	note := r.render()

	require.Contains(t, note, "**CL-EMPTY**")
	assert.Contains(t, note, "- Name: -")
	assert.Contains(t, note, "- Email: -")
	assert.Contains(t, note, "- Phones: -")
	assert.NotContains(t, note, "**Fields copied**")
	assert.NotContains(t, note, "**Phones transferred**")
	assert.Contains(t, note, "- cases: 0")
}
