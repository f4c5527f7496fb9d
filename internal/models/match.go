package models

// Match is one occurrence of a pattern inside a corpus file. Start and End are
// the file positions of the first and last matched token (inclusive); the span
// never crosses a file or document boundary.
type Match struct {
	Label  string  `json:"label"`
	Bucket string  `json:"bucket"`
	File   string  `json:"file"`
	DocID  string  `json:"doc_id,omitempty"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Tokens []Token `json:"tokens"`
}

// ContextRecord is the bounded token window around a match. Left is ordered
// oldest-to-newest; both sides are clipped at document edges.
type ContextRecord struct {
	Left  []Token `json:"left"`
	Match []Token `json:"match"`
	Right []Token `json:"right"`
}
