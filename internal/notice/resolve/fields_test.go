package resolve

import (
	"testing"

	"boampwatch/internal/notice/domain"
)

func TestReferenceFallsBackFromConditionToObjet(t *testing.T) {
	withCondition := mustDecode(t, `{"OBJET":{"REF_MARCHE":"OBJ-1"},"CONDITION_ADMINISTRATIVE":{"REFERENCE_MARCHE":"ADM-1"}}`)
	ref := Reference(domain.VariantLegacyGeneric, withCondition)
	if ref == nil || *ref != "ADM-1" {
		t.Fatalf("expected administrative reference to win, got %v", ref)
	}

	objetOnly := mustDecode(t, `{"OBJET":{"REF_MARCHE":"OBJ-1"},"CONDITION_ADMINISTRATIVE":{"REFERENCE_MARCHE":""}}`)
	ref = Reference(domain.VariantLegacyGeneric, objetOnly)
	if ref == nil || *ref != "OBJ-1" {
		t.Fatalf("expected blank administrative reference to fall through, got %v", ref)
	}

	structured := mustDecode(t, `{"marche":{"idMarche":"M-42"}}`)
	ref = Reference(domain.VariantStructuredAwardForm, structured)
	if ref == nil || *ref != "M-42" {
		t.Fatalf("expected structured market id, got %v", ref)
	}

	if got := Reference(domain.VariantUnknown, mustDecode(t, `{}`)); got != nil {
		t.Fatalf("expected no reference on empty document, got %v", got)
	}
}

func TestAmountChainTagsKindBySourcePath(t *testing.T) {
	estimated := mustDecode(t, `{"OBJET":{"CARACTERISTIQUES":{"VALEUR":{"#text":"5000000","@DEVISE":"EUR"}}}}`)
	amount, kind := Amount(domain.VariantLegacyGeneric, estimated)
	if amount == nil || amount.Value != 5000000 || amount.Currency != "EUR" {
		t.Fatalf("expected 5000000 EUR, got %+v", amount)
	}
	if kind != domain.AmountEstimated {
		t.Fatalf("expected characteristics value to be estimated, got %s", kind)
	}

	awarded := mustDecode(t, `{"OBJET":{},"ATTRIBUTION":{"DECISION":{"MONTANT":"1234567"}}}`)
	amount, kind = Amount(domain.VariantLegacyGeneric, awarded)
	if amount == nil || amount.Value != 1234567 {
		t.Fatalf("expected decision amount, got %+v", amount)
	}
	if kind != domain.AmountAwarded {
		t.Fatalf("expected decision amount to be awarded, got %s", kind)
	}

	totalBeatsDecision := mustDecode(t, `{"OBJET":{"CARACTERISTIQUES":{"VALEUR_TOTALE":"800000"}},"ATTRIBUTION":{"DECISION":{"MONTANT":"1"}}}`)
	amount, kind = Amount(domain.VariantLegacyGeneric, totalBeatsDecision)
	if amount == nil || amount.Value != 800000 || kind != domain.AmountEstimated {
		t.Fatalf("expected total value to take precedence, got %+v kind %s", amount, kind)
	}

	none, kind := Amount(domain.VariantLegacyGeneric, mustDecode(t, `{"OBJET":{}}`))
	if none != nil || kind != domain.AmountUnknown {
		t.Fatalf("expected absent amount to be unknown, got %+v kind %s", none, kind)
	}
}

func TestAwardeesPrecedenceTopLevelWins(t *testing.T) {
	doc := mustDecode(t, `{"ATTRIBUTION":{"DECISION":{"TITULAIRE":{"DENOMINATION":"Société B"}}}}`)

	got := Awardees(domain.VariantLegacyGeneric, doc, RawFields{Titulaires: []string{"Société A"}})
	if len(got) != 1 || got[0] != "Société A" {
		t.Fatalf("expected top-level titulaire to win, got %v", got)
	}

	got = Awardees(domain.VariantLegacyGeneric, doc, RawFields{})
	if len(got) != 1 || got[0] != "Société B" {
		t.Fatalf("expected single-object decision titulaire, got %v", got)
	}
}

func TestAwardeesHandlesListAndBareStrings(t *testing.T) {
	doc := mustDecode(t, `{"ATTRIBUTION":{"DECISION":{"TITULAIRE":[{"DENOMINATION":"Alpha"},"Beta"]}}}`)
	got := Awardees(domain.VariantLegacyGeneric, doc, RawFields{})
	if len(got) != 2 || got[0] != "Alpha" || got[1] != "Beta" {
		t.Fatalf("expected [Alpha Beta], got %v", got)
	}

	structured := mustDecode(t, `{"marche":{"decision":{"titulaires":[{"denomination":"Gamma"}]}}}`)
	got = Awardees(domain.VariantStructuredAwardForm, structured, RawFields{})
	if len(got) != 1 || got[0] != "Gamma" {
		t.Fatalf("expected structured titulaires, got %v", got)
	}

	refOnly := mustDecode(t, `{"marche":{"refOffre":"OFF-7"}}`)
	got = Awardees(domain.VariantStructuredAwardForm, refOnly, RawFields{})
	if len(got) != 1 || got[0] != "OFF-7" {
		t.Fatalf("expected refOffre fallback, got %v", got)
	}
}

func TestLotsGateOnDivEnLotsAndCoerceSingleObject(t *testing.T) {
	gated := mustDecode(t, `{"OBJET":{"DIV_EN_LOTS":"NON","LOTS":{"LOT":{"NUM":"1","INTITULE":"Lot un"}}}}`)
	if got := Lots(domain.VariantLegacyGeneric, gated); got != nil {
		t.Fatalf("expected no lots when DIV_EN_LOTS is NON, got %v", got)
	}

	single := mustDecode(t, `{"OBJET":{"DIV_EN_LOTS":"OUI","LOTS":{"LOT":{"NUM":"1","INTITULE":"Lot un","VALEUR":{"#text":"90000","@DEVISE":"EUR"}}}}}`)
	got := Lots(domain.VariantLegacyGeneric, single)
	if len(got) != 1 {
		t.Fatalf("expected single lot object coerced to one lot, got %d", len(got))
	}
	lot := got[0]
	if lot.Number != "1" || lot.Label != "Lot un" {
		t.Fatalf("unexpected lot %+v", lot)
	}
	if lot.Amount == nil || lot.Amount.Value != 90000 || lot.Amount.Currency != "EUR" {
		t.Fatalf("unexpected lot amount %+v", lot.Amount)
	}

	described := mustDecode(t, `{"OBJET":{"DIV_EN_LOTS":"OUI","LOTS":{"LOT":[{"NUM":"1","DESCRIPTION":"Par description"}]}}}`)
	got = Lots(domain.VariantLegacyGeneric, described)
	if len(got) != 1 || got[0].Label != "Par description" {
		t.Fatalf("expected description fallback for label, got %v", got)
	}
}

func TestDurationMonthsConvertsStructuredYears(t *testing.T) {
	legacy := mustDecode(t, `{"OBJET":{"DUREE_DELAI":{"DUREE_MOIS":"48"}}}`)
	if got := DurationMonths(domain.VariantLegacyGeneric, legacy); got == nil || *got != 48 {
		t.Fatalf("expected 48 months, got %v", got)
	}

	years := mustDecode(t, `{"marche":{"periodePrevue":{"duree":4,"unite":"AN"}}}`)
	if got := DurationMonths(domain.VariantStructuredAwardForm, years); got == nil || *got != 48 {
		t.Fatalf("expected 4 years converted to 48 months, got %v", got)
	}

	camel := mustDecode(t, `{"natureMarche":{"dureeMois":12}}`)
	if got := DurationMonths(domain.VariantUnknown, camel); got == nil || *got != 12 {
		t.Fatalf("expected camelCase fallback, got %v", got)
	}
}

func TestCriteriaPrefixesLotNumbersOnMultiLotMarkets(t *testing.T) {
	multi := mustDecode(t, `{"marche":{"lots":[{"num":"1","criteresAttribution":[{"libelle":"Prix","poids":60}]},{"num":"2","criteresAttribution":[{"libelle":"Technique","poids":40}]}]}}`)
	got := Criteria(domain.VariantStructuredAwardForm, multi)
	if len(got) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(got))
	}
	if got[0].Label != "Lot 1 : Prix" || got[1].Label != "Lot 2 : Technique" {
		t.Fatalf("expected lot-prefixed labels, got %q and %q", got[0].Label, got[1].Label)
	}
	if got[0].WeightPercent == nil || *got[0].WeightPercent != 60 {
		t.Fatalf("expected weight 60, got %v", got[0].WeightPercent)
	}

	flat := mustDecode(t, `{"marche":{"criteresAttribution":{"critere":[{"libelle":"Prix","poids":100}]}}}`)
	got = Criteria(domain.VariantStructuredAwardForm, flat)
	if len(got) != 1 || got[0].Label != "Prix" {
		t.Fatalf("expected flat criteria without prefix, got %v", got)
	}

	if got := Criteria(domain.VariantLegacyGeneric, mustDecode(t, `{"OBJET":{}}`)); got != nil {
		t.Fatalf("expected no criteria outside the structured form, got %v", got)
	}
}

func TestOffersReceivedReadsDecisionCount(t *testing.T) {
	legacy := mustDecode(t, `{"ATTRIBUTION":{"DECISION":{"RENSEIGNEMENT":{"NB_OFFRE_RECU":"7"}}}}`)
	if got := OffersReceived(domain.VariantLegacyGeneric, legacy); got == nil || *got != 7 {
		t.Fatalf("expected 7 offers, got %v", got)
	}

	structured := mustDecode(t, `{"marche":{"decision":{"renseignement":{"nbOffreRecu":3}}}}`)
	if got := OffersReceived(domain.VariantStructuredAwardForm, structured); got == nil || *got != 3 {
		t.Fatalf("expected 3 offers, got %v", got)
	}
}
