package resolve

import (
	"strconv"
	"strings"
	"time"

	"boampwatch/internal/notice/coerce"
	"boampwatch/internal/notice/docjson"
	"boampwatch/internal/notice/domain"
)

// RawFields carries the top-level feed fields that participate in fallback
// chains alongside the sub-document.
type RawFields struct {
	ResponseDeadlineRaw string
	Titulaires          []string
}

// Reference resolves the market reference:
// administrative-condition reference, then object/subject reference, then
// the structured form's market id.
func Reference(variant domain.SchemaVariant, doc docjson.Value) *string {
	root := formRoot(variant, doc)

	var node docjson.Value
	if variant == domain.VariantStructuredAwardForm {
		node = root.Get("idMarche")
	} else {
		node = root.Get("CONDITION_ADMINISTRATIVE", "REFERENCE_MARCHE").
			Or(root.Get("OBJET", "REF_MARCHE"))
	}

	if text, ok := node.String(); ok {
		return &text
	}
	return nil
}

// Deadline resolves the offer reception deadline: the variant-specific
// reception-of-offers path, then the feed's top-level response-deadline
// field, then the condition-delay reception path.
func Deadline(variant domain.SchemaVariant, doc docjson.Value, raw RawFields) (time.Time, bool) {
	root := formRoot(variant, doc)

	var candidates []string
	switch variant {
	case domain.VariantStructuredAwardForm:
		candidates = append(candidates, root.Get("dateLimiteReceptionOffres").Text())
	case domain.VariantSimplifiedForm:
		candidates = append(candidates, root.Get("RECEPT_OFFRES").Text())
	}
	candidates = append(candidates,
		raw.ResponseDeadlineRaw,
		root.Get("CONDITION_DELAI", "RECEPT_OFFRES").Text(),
	)

	for _, candidate := range candidates {
		if parsed, ok := coerce.ParseFlexibleDate(candidate); ok {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// amountNode reads a monetary node, which is either a plain scalar or a
// {"#text": ..., "@DEVISE": ...} wrapper.
func amountNode(node docjson.Value) *domain.Amount {
	if !node.Exists() {
		return nil
	}

	value := node
	currency := ""
	if node.Has("#text") || node.Has("@DEVISE") {
		value = node.Get("#text")
		currency = node.Get("@DEVISE").Text()
	}

	text, ok := value.String()
	if !ok {
		return nil
	}
	parsed, ok := coerce.ParseAmount(text)
	if !ok {
		return nil
	}
	return &domain.Amount{Value: parsed, Currency: currency}
}

// Amount resolves the market value and tags its semantics: the object
// characteristics high-range value, then the characteristics total, then
// the award-decision amount, then the first lot's value. Values coming from
// the decision path are awarded amounts, the rest are estimates.
func Amount(variant domain.SchemaVariant, doc docjson.Value) (*domain.Amount, domain.AmountKind) {
	root := formRoot(variant, doc)

	type candidate struct {
		node docjson.Value
		kind domain.AmountKind
	}

	var chain []candidate
	if variant == domain.VariantStructuredAwardForm {
		chain = []candidate{
			{root.Get("valeur"), domain.AmountEstimated},
			{root.Get("valeurTotale"), domain.AmountEstimated},
			{root.Get("decision", "montant"), domain.AmountAwarded},
			{firstLotNode(variant, root).Get("valeur"), domain.AmountEstimated},
		}
	} else {
		chain = []candidate{
			{root.Get("OBJET", "CARACTERISTIQUES", "VALEUR"), domain.AmountEstimated},
			{root.Get("OBJET", "CARACTERISTIQUES", "VALEUR_TOTALE"), domain.AmountEstimated},
			{root.Get("ATTRIBUTION", "DECISION", "MONTANT"), domain.AmountAwarded},
			{firstLotNode(variant, root).Get("VALEUR"), domain.AmountEstimated},
		}
	}

	for _, c := range chain {
		if amount := amountNode(c.node); amount != nil {
			return amount, c.kind
		}
	}
	return nil, domain.AmountUnknown
}

func firstLotNode(variant domain.SchemaVariant, root docjson.Value) docjson.Value {
	var lots []docjson.Value
	if variant == domain.VariantStructuredAwardForm {
		lots = root.Get("lots").List()
	} else {
		lots = root.Get("OBJET", "LOTS", "LOT").List()
	}
	if len(lots) == 0 {
		return docjson.Absent()
	}
	return lots[0]
}

// DurationMonths resolves the market duration: the object's direct
// duration-in-months field, then the flat and nested legacy camelCase
// paths, then the structured form's planned period with its unit.
func DurationMonths(variant domain.SchemaVariant, doc docjson.Value) *int {
	root := formRoot(variant, doc)

	if months, ok := root.Get("OBJET", "DUREE_DELAI", "DUREE_MOIS").Int(); ok {
		return &months
	}
	if months, ok := doc.Get("natureMarche", "dureeMois").Int(); ok {
		return &months
	}
	if months, ok := doc.Get("initial", "natureMarche", "dureeMois").Int(); ok {
		return &months
	}

	if variant == domain.VariantStructuredAwardForm {
		period := root.Get("periodePrevue")
		if duration, ok := period.Get("duree").Int(); ok {
			switch strings.ToUpper(period.Get("unite").Text()) {
			case "MOIS", "":
				return &duration
			case "AN", "ANS", "ANNEE", "ANNEES":
				months := duration * 12
				return &months
			}
		}
	}
	return nil
}

// Awardees resolves the winning parties: the feed's top-level titulaire
// list wins, then the award-decision titulaire block (single object or
// list), then the structured form's tender reference id.
func Awardees(variant domain.SchemaVariant, doc docjson.Value, raw RawFields) []string {
	if cleaned := cleanStrings(raw.Titulaires); len(cleaned) > 0 {
		return cleaned
	}

	root := formRoot(variant, doc)
	var holders docjson.Value
	nameKey := "DENOMINATION"
	if variant == domain.VariantStructuredAwardForm {
		holders = root.Get("decision", "titulaires")
		nameKey = "denomination"
	} else {
		holders = root.Get("ATTRIBUTION", "DECISION", "TITULAIRE")
	}

	var names []string
	for _, holder := range holders.List() {
		// A bare string entry is already the name.
		if name, ok := holder.String(); ok {
			names = append(names, name)
			continue
		}
		if name, ok := holder.Get(nameKey).String(); ok {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		return names
	}

	if variant == domain.VariantStructuredAwardForm {
		if ref, ok := root.Get("refOffre").String(); ok {
			return []string{ref}
		}
	}
	return nil
}

// Lots resolves the lot list. The legacy forms gate on DIV_EN_LOTS
// containing "OUI"; the structured form lists lots directly. A single lot
// object is coerced into a one-element list.
func Lots(variant domain.SchemaVariant, doc docjson.Value) []domain.Lot {
	root := formRoot(variant, doc)

	var nodes []docjson.Value
	if variant == domain.VariantStructuredAwardForm {
		nodes = root.Get("lots").List()
	} else {
		if !root.Get("OBJET", "DIV_EN_LOTS").Contains("OUI") {
			return nil
		}
		nodes = root.Get("OBJET", "LOTS", "LOT").List()
	}

	lots := make([]domain.Lot, 0, len(nodes))
	for _, node := range nodes {
		lots = append(lots, lotFrom(variant, node))
	}
	return lots
}

func lotFrom(variant domain.SchemaVariant, node docjson.Value) domain.Lot {
	if variant == domain.VariantStructuredAwardForm {
		return domain.Lot{
			Number: node.Get("num").Text(),
			Label:  node.Get("intitule").Or(node.Get("description")).Text(),
			Amount: amountNode(node.Get("valeur")),
			Info:   node.Get("infoComplementaire").Text(),
		}
	}
	return domain.Lot{
		Number: node.Get("NUM").Text(),
		Label:  node.Get("INTITULE").Or(node.Get("DESCRIPTION")).Text(),
		Amount: amountNode(node.Get("VALEUR")),
		Info:   node.Get("INFO_COMPL").Text(),
	}
}

// Criteria resolves the awarding criteria. Only the structured form carries
// them: per-lot lists when the market has several lots (each criterion
// prefixed with its lot number), otherwise the flat single-lot list.
func Criteria(variant domain.SchemaVariant, doc docjson.Value) []domain.Criterion {
	if variant != domain.VariantStructuredAwardForm {
		return nil
	}
	root := formRoot(variant, doc)

	lots := root.Get("lots").List()
	if len(lots) > 1 {
		var criteria []domain.Criterion
		for i, lot := range lots {
			for _, node := range lot.Get("criteresAttribution").List() {
				criterion := criterionFrom(node)
				criterion.Label = lotPrefix(i+1, lot.Get("num").Text()) + criterion.Label
				criteria = append(criteria, criterion)
			}
		}
		return criteria
	}

	flat := root.Get("criteresAttribution", "critere").
		Or(root.Get("criteresAttribution"))
	var criteria []domain.Criterion
	for _, node := range flat.List() {
		criteria = append(criteria, criterionFrom(node))
	}
	return criteria
}

func criterionFrom(node docjson.Value) domain.Criterion {
	criterion := domain.Criterion{
		Label: node.Get("libelle").Or(node).Text(),
	}
	if weight, ok := node.Get("poids").Number(); ok {
		criterion.WeightPercent = &weight
	}
	return criterion
}

func lotPrefix(index int, number string) string {
	if number == "" {
		number = strconv.Itoa(index)
	}
	return "Lot " + number + " : "
}

// OffersReceived resolves the received-offer count from the award decision.
func OffersReceived(variant domain.SchemaVariant, doc docjson.Value) *int {
	root := formRoot(variant, doc)

	var node docjson.Value
	if variant == domain.VariantStructuredAwardForm {
		node = root.Get("decision", "renseignement", "nbOffreRecu")
	} else {
		node = root.Get("ATTRIBUTION", "DECISION", "RENSEIGNEMENT", "NB_OFFRE_RECU")
	}
	if count, ok := node.Int(); ok {
		return &count
	}
	return nil
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
