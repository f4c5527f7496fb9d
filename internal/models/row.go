package models

// GroupKey identifies one result group: a pattern label and a time bucket.
type GroupKey struct {
	Label  string `json:"label"`
	Bucket string `json:"bucket"`
}

// Row is one concordance row handed to a sink. Before/After hold up to the
// configured context width of tokens either side of the match, as text.
// BeforeTags and AfterTags hold the same spans as lemma_tag pairs.
type Row struct {
	Label      string `json:"label"`
	Bucket     string `json:"bucket"`
	File       string `json:"file"`
	Genre      string `json:"genre,omitempty"`
	DocID      string `json:"doc_id,omitempty"`
	Position   int    `json:"position"`
	Before     string `json:"before"`
	MatchText  string `json:"match_text"`
	MatchTags  string `json:"match_tags"`
	After      string `json:"after"`
	BeforeTags string `json:"before_tags"`
	AfterTags  string `json:"after_tags"`
}

// Key returns the row's group key.
func (r *Row) Key() GroupKey {
	return GroupKey{Label: r.Label, Bucket: r.Bucket}
}
