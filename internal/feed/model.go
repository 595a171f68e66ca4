// Package feed provides the HTTP client and wire model for the BOAMP
// opendatasoft records API.
package feed

import (
	"encoding/json"
	"fmt"
)

// FlexStringList handles JSON values that arrive as a string, a list of
// strings, or are absent. The feed is not consistent about list fields on
// older notices.
type FlexStringList []string

func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*f = nil
			return nil
		}
		*f = []string{single}
		return nil
	}
	// null or an unexpected shape degrades to empty rather than failing
	// the whole batch decode.
	*f = nil
	return nil
}

// EmbeddedDocument is the variant-shaped sub-document. The feed encodes it
// as a JSON string inside the record, but some vintages inline it as an
// object; both shapes decode to the raw inner bytes.
type EmbeddedDocument []byte

func (d *EmbeddedDocument) UnmarshalJSON(data []byte) error {
	var inner string
	if err := json.Unmarshal(data, &inner); err == nil {
		*d = []byte(inner)
		return nil
	}
	*d = append((*d)[:0], data...)
	return nil
}

// RawNotice is the as-fetched record for one procurement announcement.
// Constructed once per fetched item and immutable thereafter.
type RawNotice struct {
	IDWeb             string           `json:"idweb"`
	Nature            string           `json:"nature"`
	Buyer             string           `json:"nomacheteur"`
	Title             string           `json:"objet"`
	ServiceLabels     FlexStringList   `json:"descripteur_libelle"`
	PublicationDate   string           `json:"dateparution"`
	MarketFamily      string           `json:"famille_libelle"`
	ResponseDeadline  string           `json:"datelimitereponse"`
	Awardees          FlexStringList   `json:"titulaire"`
	LinkedNoticeIDs   FlexStringList   `json:"annonce_lie"`
	NoticeURL         string           `json:"url_avis"`
	EmbeddedDocument  EmbeddedDocument `json:"donnees"`
}

// ID returns the feed-unique identifier, with a stable placeholder for the
// rare record that lacks one.
func (n RawNotice) ID() string {
	if n.IDWeb == "" {
		return "sans-id"
	}
	return n.IDWeb
}

// Batch is one date-bounded feed response.
type Batch struct {
	TotalCount int         `json:"total_count"`
	Results    []RawNotice `json:"results"`
}

// SelectOption narrows a scan to one notice nature.
type SelectOption string

const (
	SelectAll           SelectOption = ""
	SelectAttribution   SelectOption = "attribution"
	SelectAppelOffre    SelectOption = "ao"
	SelectRectificatif  SelectOption = "rectificatif"
)

// ParseSelectOption validates a select flag value.
func ParseSelectOption(raw string) (SelectOption, error) {
	switch SelectOption(raw) {
	case SelectAll, SelectAttribution, SelectAppelOffre, SelectRectificatif:
		return SelectOption(raw), nil
	default:
		return SelectAll, fmt.Errorf("unknown select option %q", raw)
	}
}
