package schema

import "fmt"

const (
	// MetadataKeyDocumentID is the metadata key holding the owning document id.
	MetadataKeyDocumentID = "document_id"
	// MetadataKeySegmentID is the metadata key holding the segment id where the backend
	// cannot use it as its native key.
	MetadataKeySegmentID = "segment_id"
	// MetadataKeyText is the payload key holding the segment text.
	MetadataKeyText = "text"
)

// Page is the text extracted from one page of a source file.
// Loaders that have no notion of pages return a single Page numbered 1.
type Page struct {
	Number int
	Text   string
}

// Segment is a retained slice of a document's text as it is stored in the vector index.
type Segment struct {
	// ID is "{DocumentID}_{Index}" and is unique across the whole index.
	ID         string
	DocumentID string
	Index      int
	Text       string
}

// SegmentID builds the index key of the index-th retained segment of a document.
func SegmentID(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// Match is one ranked hit returned by a vector index query.
type Match struct {
	ID    string
	Text  string
	Score float32
}
