// Package service implements the notice normalizer: one raw feed record in,
// one canonical NoticeRecord out, with anomalies reported alongside rather
// than raised.
package service

import (
	"fmt"
	"strings"
	"time"

	"boampwatch/internal/feed"
	"boampwatch/internal/notice/coerce"
	"boampwatch/internal/notice/docjson"
	"boampwatch/internal/notice/domain"
	"boampwatch/internal/notice/resolve"
	"boampwatch/platform/logger"
)

// Anomaly is a non-fatal data-quality finding made during normalization.
type Anomaly struct {
	NoticeID string
	Message  string
}

// Service normalizes raw notices. It is stateless apart from its clock and
// safe for concurrent use across notices.
type Service struct {
	log *logger.Logger
	now func() time.Time
}

// New creates a normalizer.
func New(log *logger.Logger) *Service {
	return &Service{log: log, now: time.Now}
}

// WithClock overrides the evaluation instant used for deadline day counts.
// Exposed for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{log: s.log, now: now}
}

// Normalize turns one raw notice into a NoticeRecord. It never fails: a
// malformed or unrecognized sub-document degrades to a best-effort record
// built from the raw top-level fields, with anomalies reported for the
// operator. Errors never escape past the notice being processed.
func (s *Service) Normalize(raw feed.RawNotice) (domain.NoticeRecord, []Anomaly) {
	var anomalies []Anomaly
	report := func(format string, args ...any) {
		message := fmt.Sprintf(format, args...)
		anomalies = append(anomalies, Anomaly{NoticeID: raw.ID(), Message: message})
		s.log.Anomaly(raw.ID(), message)
	}

	nature := domain.ParseNature(raw.Nature)

	doc := docjson.Absent()
	if len(raw.EmbeddedDocument) > 0 {
		decoded, err := docjson.Decode(raw.EmbeddedDocument)
		if err != nil {
			report("embedded document does not decode: %v", err)
		} else {
			doc = decoded
		}
	}

	variant, matched := resolve.DetectVariant(doc)
	if len(matched) > 1 {
		report("multiple variant markers present (%d), keeping %s", len(matched), variant)
	}
	if variant == domain.VariantUnknown && doc.Exists() {
		report("unrecognized sub-document shape, keys: %s", strings.Join(doc.Keys(), ", "))
	}
	if variant == domain.VariantUnknown && nature == domain.NatureUnspecified {
		report("unknown variant and unrecognized nature %q, emitting best-effort record", raw.Nature)
	}

	rawFields := resolve.RawFields{
		ResponseDeadlineRaw: raw.ResponseDeadline,
		Titulaires:          raw.Awardees,
	}

	record := domain.NoticeRecord{
		ID:              raw.ID(),
		Nature:          nature,
		Variant:         variant,
		Buyer:           raw.Buyer,
		Title:           raw.Title,
		PublicationDate: raw.PublicationDate,
		MarketFamily:    raw.MarketFamily,
		NoticeURL:       raw.NoticeURL,
		LinkedNotices:   raw.LinkedNoticeIDs,
		ServiceLabels:   stripServiceWrappers(raw.ServiceLabels),
		AmountKind:      domain.AmountUnknown,
	}

	record.Reference = resolve.Reference(variant, doc)
	record.Amount, record.AmountKind = resolve.Amount(variant, doc)
	// On an award result any resolved value is the awarded amount, even when
	// it was read from the object characteristics rather than the decision.
	if nature == domain.NatureResult && record.AmountKind == domain.AmountEstimated {
		record.AmountKind = domain.AmountAwarded
	}
	record.DurationMonths = resolve.DurationMonths(variant, doc)
	record.Awardees = resolve.Awardees(variant, doc, rawFields)
	record.OffersReceived = resolve.OffersReceived(variant, doc)
	record.Criteria = resolve.Criteria(variant, doc)

	record.Lots = resolve.Lots(variant, doc)
	record.LotCount = len(record.Lots)

	if deadline, ok := resolve.Deadline(variant, doc, rawFields); ok {
		record.Deadline = &deadline
		days := coerce.DaysBetween(deadline, s.now())
		record.DaysRemaining = &days
	}

	return record, anomalies
}

// stripServiceWrappers removes the literal "Informatique (" / ")" wrapper
// markers the feed puts around IT service sub-labels.
func stripServiceWrappers(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		cleaned := strings.ReplaceAll(label, "Informatique (", "")
		cleaned = strings.ReplaceAll(cleaned, ")", "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
