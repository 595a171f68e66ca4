// Package resolve implements schema variant detection and the per-field
// fallback chains that extract values from the embedded sub-document.
// Resolvers are pure functions over (variant, nature, document, raw fields);
// they return absent results instead of raising, whatever the input shape.
package resolve

import (
	"boampwatch/internal/notice/docjson"
	"boampwatch/internal/notice/domain"
)

// Marker keys identifying each sub-document family. The feed does not
// version the sub-document, so the variant is inferred from which of these
// top-level keys is present.
const (
	markerStructured = "marche"
	markerSimplified = "FORMULAIRE_NON_BOAMP"
	markerLegacy     = "OBJET"
)

// variantPriority is the tie-break order when a malformed document carries
// more than one marker key.
var variantPriority = []struct {
	key     string
	variant domain.SchemaVariant
}{
	{markerStructured, domain.VariantStructuredAwardForm},
	{markerSimplified, domain.VariantSimplifiedForm},
	{markerLegacy, domain.VariantLegacyGeneric},
}

// DetectVariant classifies the sub-document. It is total: every input,
// including an absent or empty document, yields exactly one variant.
// The second return lists every marker that matched; more than one entry
// means the caller should report a data-quality anomaly.
func DetectVariant(doc docjson.Value) (domain.SchemaVariant, []domain.SchemaVariant) {
	var matched []domain.SchemaVariant
	for _, candidate := range variantPriority {
		if doc.Has(candidate.key) {
			matched = append(matched, candidate.variant)
		}
	}
	if len(matched) == 0 {
		return domain.VariantUnknown, nil
	}
	return matched[0], matched
}

// formRoot returns the node the variant's classic blocks hang off. The
// legacy form keeps them at the top level, the simplified form nests them
// under its marker, the structured form uses its own camelCase subtree.
func formRoot(variant domain.SchemaVariant, doc docjson.Value) docjson.Value {
	switch variant {
	case domain.VariantSimplifiedForm:
		return doc.Get(markerSimplified)
	case domain.VariantStructuredAwardForm:
		return doc.Get(markerStructured)
	default:
		return doc
	}
}
