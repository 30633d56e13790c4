package reconcile

import (
	"strings"
	"unicode/utf8"

	"hospital-recruitment-backend/internal/domain"
)

// MatchRule names the rule that tied a record to the caller in the fallback pass.
type MatchRule string

const (
	MatchNone      MatchRule = ""
	MatchUserID    MatchRule = "user_id"
	MatchLineID    MatchRule = "line_id"
	MatchEmail     MatchRule = "email"
	MatchLocalPart MatchRule = "email_local_part"
)

// LocalPartBound restricts the local-part containment rule. The zero value
// leaves containment unbounded.
type LocalPartBound struct {
	MinLength  int     // the shorter local part must have at least this many runes
	MinOverlap float64 // shorter/longer rune ratio, in (0, 1]
}

// DefaultSelfServiceBound applies when applicants look up their own records.
var DefaultSelfServiceBound = LocalPartBound{MinLength: 4, MinOverlap: 0.6}

func (b LocalPartBound) allows(a, c string) bool {
	shorter, longer := utf8.RuneCountInString(a), utf8.RuneCountInString(c)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if shorter < b.MinLength {
		return false
	}
	return float64(shorter) >= b.MinOverlap*float64(longer)
}

// Match checks the rules in order and returns the first that holds.
func Match(record domain.RawApplicantRecord, hints domain.IdentityHints) MatchRule {
	return MatchBounded(record, hints, LocalPartBound{})
}

// MatchBounded is Match with the local-part rule limited by bound.
func MatchBounded(record domain.RawApplicantRecord, hints domain.IdentityHints, bound LocalPartBound) MatchRule {
	if hints.UserID != "" && field(record, "userId") == hints.UserID {
		return MatchUserID
	}
	if hints.LineID != "" && field(record, "lineId") == hints.LineID {
		return MatchLineID
	}
	email := field(record, "email")
	if hints.Email == "" || email == "" {
		return MatchNone
	}
	if strings.EqualFold(email, hints.Email) {
		return MatchEmail
	}
	a, b := localPart(email), localPart(hints.Email)
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) && bound.allows(a, b) {
		return MatchLocalPart
	}
	return MatchNone
}

// FuzzyMatch keeps records that match hints under any rule, in input order.
func FuzzyMatch(records []domain.RawApplicantRecord, hints domain.IdentityHints) []domain.RawApplicantRecord {
	var out []domain.RawApplicantRecord
	for _, r := range records {
		if Match(r, hints) != MatchNone {
			out = append(out, r)
		}
	}
	return out
}

func localPart(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// Merge concatenates the resume-deposit and application-form results. With
// dedupByID the first record of each id is kept; records without an id are
// always kept.
func Merge(resumeDeposits, applicationForms []domain.RawApplicantRecord, dedupByID bool) []domain.RawApplicantRecord {
	out := make([]domain.RawApplicantRecord, 0, len(resumeDeposits)+len(applicationForms))
	out = append(out, resumeDeposits...)
	out = append(out, applicationForms...)
	if !dedupByID {
		return out
	}

	seen := make(map[string]struct{}, len(out))
	deduped := out[:0]
	for _, r := range out {
		id := r.ID()
		if id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		deduped = append(deduped, r)
	}
	return deduped
}
