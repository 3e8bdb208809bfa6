// internal/service/dedupe/audit.go
package dedupe

import (
	"fmt"
	"strings"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
)

// auditReport accumulates what the merge moved and renders the markdown note
// stored on the main client. The note is the only durable record of the
// absorbed client, so it restates its identifying data in full.
type auditReport struct {
	code      string
	name      string
	email     string
	phoneList []string
	createdAt string

	fields    []fieldTransfer
	phones    []string
	caseCodes []string
	counts    map[related.Kind]int64
}

type fieldTransfer struct {
	name  string
	value string
}

func newAuditReport(secondary *client.Client, phones []client.ContactNumber) *auditReport {
	r := &auditReport{
		code:      secondary.Code,
		name:      secondary.FullName(),
		createdAt: secondary.CreatedAt.Format("2006-01-02"),
		counts:    make(map[related.Kind]int64),
	}
	if client.HasText(secondary.Email) {
		r.email = secondary.Email.String
	}
	for _, p := range phones {
		r.phoneList = append(r.phoneList, p.Phone)
	}
	return r
}

func (r *auditReport) fieldCopied(name, value string) {
	r.fields = append(r.fields, fieldTransfer{name: name, value: value})
}

func (r *auditReport) phoneTransferred(phone string) {
	r.phones = append(r.phones, phone)
}

func (r *auditReport) render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Merged duplicate client **%s** into this record.\n\n", r.code)

	b.WriteString("**Absorbed client**\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDash(r.name))
	fmt.Fprintf(&b, "- Email: %s\n", orDash(r.email))
	fmt.Fprintf(&b, "- Phones: %s\n", orDash(strings.Join(r.phoneList, ", ")))
	fmt.Fprintf(&b, "- Created: %s\n", r.createdAt)

	if len(r.fields) > 0 {
		b.WriteString("\n**Fields copied**\n")
		for _, f := range r.fields {
			fmt.Fprintf(&b, "- %s: %s\n", f.name, f.value)
		}
	}

	if len(r.phones) > 0 {
		b.WriteString("\n**Phones transferred**\n")
		for _, p := range r.phones {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	b.WriteString("\n**Records transferred**\n")
	if len(r.caseCodes) > 0 {
		fmt.Fprintf(&b, "- cases: %d (%s)\n", r.counts[related.KindCase], strings.Join(r.caseCodes, ", "))
	} else {
		fmt.Fprintf(&b, "- cases: %d\n", r.counts[related.KindCase])
	}
	fmt.Fprintf(&b, "- notes: %d\n", r.counts[related.KindNote])
	fmt.Fprintf(&b, "- documents: %d\n", r.counts[related.KindDocument])
	fmt.Fprintf(&b, "- lead references: %d\n", r.counts[related.KindLead])

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
