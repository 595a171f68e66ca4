// Package classify derives presentation-level tags from a normalized notice:
// the amount tier, the keyword icons and the status glyph.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"boampwatch/internal/notice/domain"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// BetweenThresholdsMarker flags the feed's market-family wording for markets
// sitting between the 90 k€ national floor and the European thresholds. Such
// markets are below every configured tier regardless of their resolved amount.
const BetweenThresholdsMarker = "entre 90 k€ et seuils"

// IconRule binds an icon to the keywords that trigger it. Rules are evaluated
// in declaration order and each can fire at most once per notice.
type IconRule struct {
	Icon     string   `yaml:"icon"`
	Keywords []string `yaml:"keywords"`
}

// defaultIconRules is the built-in keyword table, tuned for IT procurement.
// A YAML file referenced by ICON_TABLE_PATH replaces it wholesale.
var defaultIconRules = []IconRule{
	{Icon: "💻", Keywords: []string{"développement", "developpement", "logiciel", "application"}},
	{Icon: "☁️", Keywords: []string{"cloud", "hébergement", "hebergement", "saas"}},
	{Icon: "🔐", Keywords: []string{"sécurité", "securite", "cybersécurité", "cybersecurite"}},
	{Icon: "🔧", Keywords: []string{"maintenance", "infogérance", "infogerance", "tierce maintenance"}},
	{Icon: "🌐", Keywords: []string{"réseau", "reseau", "télécom", "telecom", "fibre"}},
	{Icon: "📊", Keywords: []string{"données", "donnees", "data", "décisionnel", "decisionnel"}},
	{Icon: "🧑‍💼", Keywords: []string{"assistance", "conseil", "amoa"}},
	{Icon: "🖥️", Keywords: []string{"matériel", "materiel", "poste de travail", "serveur"}},
}

// Classifier computes Classifications. Thresholds and the icon table are
// fixed at construction; Classify itself is a pure function of the record.
type Classifier struct {
	tier1 float64
	tier2 float64
	tier3 float64
	rules []IconRule
	log   *logger.Logger
}

// New builds a classifier from configuration, loading the icon table
// override when one is configured.
func New(cfg config.ClassifierConfig, log *logger.Logger) (*Classifier, error) {
	rules := defaultIconRules
	if path := cfg.GetIconTablePath(); path != "" {
		loaded, err := loadIconRules(path)
		if err != nil {
			return nil, fmt.Errorf("load icon table %s: %w", path, err)
		}
		rules = loaded
		log.Info("icon table loaded", "path", path, "rules", len(rules))
	}
	return &Classifier{
		tier1: cfg.GetAmountTier1(),
		tier2: cfg.GetAmountTier2(),
		tier3: cfg.GetAmountTier3(),
		rules: rules,
		log:   log,
	}, nil
}

func loadIconRules(path string) ([]IconRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []IconRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}
	return rules, nil
}

// Classify derives the classification for a record. Total: every record gets
// a tier, a glyph and a (possibly empty) icon list.
func (c *Classifier) Classify(record domain.NoticeRecord) domain.Classification {
	return domain.Classification{
		AmountTier:  c.amountTier(record),
		Icons:       c.icons(record),
		StatusGlyph: StatusGlyph(record.Nature),
	}
}

// amountTier buckets the resolved amount. Tiers only apply to calls for
// tender with a resolved amount; comparisons are strictly greater-than, so an
// amount exactly on a threshold falls in the bucket below it.
func (c *Classifier) amountTier(record domain.NoticeRecord) domain.Tier {
	if record.Nature != domain.NatureAward {
		return domain.TierUnknown
	}
	if record.Amount == nil || record.AmountKind == domain.AmountUnknown {
		return domain.TierUnknown
	}
	if strings.Contains(record.MarketFamily, BetweenThresholdsMarker) {
		return domain.TierBelowThreshold
	}

	switch value := record.Amount.Value; {
	case value > c.tier3:
		return domain.Tier3
	case value > c.tier2:
		return domain.Tier2
	case value > c.tier1:
		return domain.Tier1
	default:
		return domain.TierBelowThreshold
	}
}

// icons matches the keyword table against the title and service labels,
// case-insensitively. Rule order is preserved in the result.
func (c *Classifier) icons(record domain.NoticeRecord) []string {
	haystack := strings.ToLower(record.Title + " " + strings.Join(record.ServiceLabels, " "))

	var icons []string
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(haystack, strings.ToLower(keyword)) {
				icons = append(icons, rule.Icon)
				break
			}
		}
	}
	return icons
}

// StatusGlyph maps a nature onto its display glyph. Total by construction.
func StatusGlyph(nature domain.Nature) string {
	switch nature {
	case domain.NatureAward:
		return "🟢"
	case domain.NatureAmendment:
		return "🟠"
	case domain.NatureResult:
		return "🏆"
	default:
		return "Non disponible"
	}
}
