// Package compose renders a normalized notice and its classification into
// the title and HTML body delivered to the notification channel.
package compose

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"boampwatch/internal/notice/coerce"
	"boampwatch/internal/notice/domain"
)

// Message is one composed notification, ready for delivery. Nature is kept
// so the delivery layer can route it to the right channel.
type Message struct {
	NoticeID string
	Nature   domain.Nature
	Title    string
	Body     string
}

// Composer renders messages. The between-thresholds substitution text is the
// only configuration it carries.
type Composer struct {
	seuilMarches string
}

// New creates a composer. seuilMarches, when non-empty, replaces the feed's
// "seuils européens" wording in the market-type line with the operator's own
// threshold figures.
func New(seuilMarches string) *Composer {
	return &Composer{seuilMarches: seuilMarches}
}

// Compose builds the notification for one record. Absent fields are simply
// omitted from the body; the title and the notice URL line are always there.
func (c *Composer) Compose(record domain.NoticeRecord, class domain.Classification) Message {
	title := "[" + record.ID + "] " + class.StatusGlyph + "  " + record.Title
	if len(class.Icons) > 0 {
		title += " " + strings.Join(class.Icons, "")
	}

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString("<strong>")
		b.WriteString(label)
		b.WriteString(" : </strong>")
		b.WriteString(value)
		b.WriteString("\n\n")
	}

	if record.PublicationDate != "" {
		b.WriteString("<strong>" + record.PublicationDate + "</strong>\n\n")
	}
	line("Acheteur", record.Buyer)
	if record.Reference != nil {
		line("Référence marché", *record.Reference)
	}
	if len(record.ServiceLabels) > 0 {
		line("Services", strings.Join(record.ServiceLabels, ", "))
	}
	if family := c.marketFamily(record.MarketFamily); family != "" {
		line("Type de marché", family)
	}
	if record.Amount != nil {
		label := "Valeur du marché"
		if record.AmountKind == domain.AmountAwarded {
			label = "Montant attribué"
		}
		line(label, amountText(*record.Amount, class.AmountTier))
	}
	if record.LotCount > 0 {
		line("Marché alloti", "✅")
		for _, lot := range record.Lots {
			writeLot(&b, lot)
		}
	}
	if len(record.Criteria) > 0 {
		line("Critères d'attribution", "")
		for _, criterion := range record.Criteria {
			b.WriteString("\t" + criterionText(criterion) + "\n\n")
		}
	}
	if record.Deadline != nil {
		text := record.Deadline.Format(time.DateOnly)
		if record.DaysRemaining != nil {
			text += " (" + strconv.Itoa(*record.DaysRemaining) + " jours)"
		}
		line("Deadline", text)
	}
	if record.OffersReceived != nil {
		line("Offre(s) reçue(s)", strconv.Itoa(*record.OffersReceived))
	}
	if len(record.Awardees) > 0 {
		line("Titulaire(s)", strings.Join(record.Awardees, ", "))
	}
	if record.DurationMonths != nil {
		line("Durée du marché (en mois)", strconv.Itoa(*record.DurationMonths))
	}
	if len(record.LinkedNotices) > 0 {
		line("Annonce(s) liée(s)", strings.Join(record.LinkedNotices, ", "))
	}
	url := record.NoticeURL
	if url == "" {
		url = "Non disponible"
	}
	line("Avis", url)

	return Message{
		NoticeID: record.ID,
		Nature:   record.Nature,
		Title:    title,
		Body:     b.String(),
	}
}

// marketFamily applies the between-thresholds substitution.
func (c *Composer) marketFamily(family string) string {
	if c.seuilMarches != "" && strings.Contains(family, "seuils européens") {
		return strings.Replace(family, "seuils européens", c.seuilMarches, 1)
	}
	return family
}

// amountText renders a compact amount with its currency and the tier marker.
func amountText(amount domain.Amount, tier domain.Tier) string {
	text := coerce.CompactNumber(amount.Value)
	if amount.Currency != "" {
		text += " " + amount.Currency
	}
	if marker := tierMarker(tier); marker != "" {
		text += " " + marker
	}
	return text
}

func tierMarker(tier domain.Tier) string {
	switch tier {
	case domain.Tier1:
		return "💰"
	case domain.Tier2:
		return "💰💰"
	case domain.Tier3:
		return "💰💰💰"
	default:
		return ""
	}
}

func writeLot(b *strings.Builder, lot domain.Lot) {
	if lot.Number == "" {
		b.WriteString("\t" + lot.Label + "\n\n")
	} else {
		b.WriteString("\tLot " + lot.Number + " : " + lot.Label + "\n\n")
	}
	if lot.Amount != nil {
		text := coerce.CompactNumber(lot.Amount.Value)
		if lot.Amount.Currency != "" {
			text += " " + lot.Amount.Currency
		}
		b.WriteString("\t\tValeur du lot : " + text + "\n\n")
	}
	if lot.Info != "" {
		b.WriteString("\t\t" + lot.Info + "\n\n")
	}
}

func criterionText(criterion domain.Criterion) string {
	if criterion.WeightPercent == nil {
		return criterion.Label
	}
	return criterion.Label + " (" + strconv.FormatFloat(*criterion.WeightPercent, 'f', -1, 64) + " %)"
}

// PlainText strips HTML tags and collapses blank lines, for debug output on
// a terminal instead of a Teams card.
func PlainText(body string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.ReplaceAll(b.String(), "\n\n", "\n")
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}
