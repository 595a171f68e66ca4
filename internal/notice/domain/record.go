// Package domain defines the normalized notice model shared across modules.
// A NoticeRecord is produced once per raw feed record by the normalizer and
// is never mutated afterwards.
package domain

import "time"

// Nature is the announcement kind as carried by the feed.
type Nature string

const (
	// NatureAward is a call for tender (appel d'offre).
	NatureAward Nature = "APPEL_OFFRE"
	// NatureAmendment is a correction of a previous notice (rectificatif).
	NatureAmendment Nature = "RECTIFICATIF"
	// NatureResult is an award result (attribution).
	NatureResult Nature = "ATTRIBUTION"
	// NatureUnspecified is any value the feed uses that we do not recognize.
	NatureUnspecified Nature = ""
)

// ParseNature maps the feed's nature field onto the closed enum.
// The feed historically used "Résultat de marché" for award results
// before switching to ATTRIBUTION; both map to NatureResult.
func ParseNature(raw string) Nature {
	switch raw {
	case "APPEL_OFFRE":
		return NatureAward
	case "RECTIFICATIF":
		return NatureAmendment
	case "ATTRIBUTION", "Résultat de marché":
		return NatureResult
	default:
		return NatureUnspecified
	}
}

// SchemaVariant identifies which shape family the embedded sub-document
// conforms to. The feed does not version the sub-document; the variant is
// detected from its top-level marker key.
type SchemaVariant string

const (
	// VariantLegacyGeneric is the classic national form (OBJET block at the
	// top level, CONDITION_* siblings).
	VariantLegacyGeneric SchemaVariant = "legacy_generic"
	// VariantSimplifiedForm is the non-BOAMP simplified form, which nests the
	// classic blocks under its own marker key.
	VariantSimplifiedForm SchemaVariant = "simplified_form"
	// VariantStructuredAwardForm is the newer camelCase structured form.
	VariantStructuredAwardForm SchemaVariant = "structured_award_form"
	// VariantUnknown is any sub-document without a recognized marker key.
	VariantUnknown SchemaVariant = "unknown"
)

// AmountKind tags whether the resolved amount is an estimated ceiling or a
// final awarded amount. The feed mixes both semantics in one field family.
type AmountKind string

const (
	AmountEstimated AmountKind = "estimated"
	AmountAwarded   AmountKind = "awarded"
	AmountUnknown   AmountKind = "unknown"
)

// Amount is a monetary value with its currency code as given by the feed.
type Amount struct {
	Value    float64
	Currency string
}

// Lot is one subdivision of a market, as listed in the sub-document.
type Lot struct {
	Number string  // feed lot number, may be empty
	Label  string  // intitule, falling back to description
	Amount *Amount // lot value, if priced
	Info   string  // free-text complementary info
}

// Criterion is one awarding criterion with its optional weight percentage.
type Criterion struct {
	Label         string
	WeightPercent *float64
}

// NoticeRecord is the canonical normalized form of one procurement notice.
// Optional fields are nil pointers (or empty slices) when no resolver
// produced a usable value; an empty string is never silently treated as
// present.
type NoticeRecord struct {
	ID      string
	Nature  Nature
	Variant SchemaVariant

	Buyer           string
	Title           string
	PublicationDate string
	MarketFamily    string
	NoticeURL       string

	Reference      *string
	Amount         *Amount
	AmountKind     AmountKind
	Deadline       *time.Time
	DaysRemaining  *int
	DurationMonths *int
	OffersReceived *int

	LotCount int
	Lots     []Lot
	Criteria []Criterion

	Awardees      []string
	LinkedNotices []string
	ServiceLabels []string
}

// Tier is the classification bucket for the resolved amount.
type Tier string

const (
	TierUnknown        Tier = "unknown"
	TierBelowThreshold Tier = "below_threshold"
	Tier1              Tier = "tier1"
	Tier2              Tier = "tier2"
	Tier3              Tier = "tier3"
)

// Classification carries the presentation-level tags derived from a record.
// Purely computed, never mutated in place.
type Classification struct {
	AmountTier  Tier
	Icons       []string // rendered in the keyword table's declared order
	StatusGlyph string
}

// RunStats accumulates per-run counters. The batch driver owns one value
// per run; it is never shared between goroutines.
type RunStats struct {
	Date       string
	TotalCount int
	ByNature   map[Nature]int
	Sent       int
	Failed     int
	Anomalies  int
}

// NewRunStats creates an empty stats accumulator for a batch date.
func NewRunStats(date string) RunStats {
	return RunStats{
		Date:     date,
		ByNature: make(map[Nature]int),
	}
}

// CountNotice records one processed notice of the given nature.
func (s *RunStats) CountNotice(nature Nature) {
	if s.ByNature == nil {
		s.ByNature = make(map[Nature]int)
	}
	s.ByNature[nature]++
}
