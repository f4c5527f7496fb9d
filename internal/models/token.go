// Package models defines core data structures for tokens, matches, and run results.
package models

// Token is one tagged word occurrence in a corpus file.
type Token struct {
	ID    string `json:"id"`    // word-id column from the source line, carried as reference data
	Word  string `json:"word"`  // surface form
	Lemma string `json:"lemma"`
	Tag   string `json:"tag"` // part-of-speech code
	Pos   int    `json:"pos"` // 1-based position within the file, contiguous across documents
	DocID string `json:"doc_id,omitempty"`
}

// CorpusFile describes one corpus file and its time bucket.
type CorpusFile struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Bucket string `json:"bucket"`
	Genre  string `json:"genre,omitempty"` // optional second filename segment (fic, mag, news, nf)
}
