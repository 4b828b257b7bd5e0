package knowledge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive chunks of a document.
const DefaultChunkOverlap = 200

// boundaries are the split separators tried in descending priority when
// choosing where to end a chunk: paragraph break, sentence end, line break,
// word break. A hard character cut is the fallback when none of them lands
// inside the window past the overlap region.
var boundaries = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

// Splitter splits documents into overlapping fixed-size chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a Splitter. It returns ErrConfiguration unless
// chunkSize > 0 and 0 <= overlap < chunkSize.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrConfiguration, overlap, chunkSize)
	}

	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Split chunks each document independently, preserving document order and
// chunk order within a document. Every chunk is at most the configured chunk
// size except possibly the final chunk of a document, and consecutive chunks
// from one document share exactly the configured overlap. Documents with no
// text produce no chunks. Split has no side effects.
func (s *Splitter) Split(docs []Document) []Chunk {
	var chunks []Chunk

	for _, doc := range docs {
		if doc.Text == "" {
			continue
		}
		chunks = append(chunks, s.splitDocument(doc)...)
	}

	return chunks
}

// splitDocument indexes by runes, not bytes, so a hard cut in unspaced
// multi-byte text never splits mid-rune.
func (s *Splitter) splitDocument(doc Document) []Chunk {
	runes := []rune(doc.Text)

	estimated := len(runes)/(s.chunkSize-s.overlap) + 1
	chunks := make([]Chunk, 0, estimated)

	emit := func(piece string) {
		chunks = append(chunks, Chunk{
			ID:        uuid.New().String(),
			Text:      piece,
			SourceURL: doc.SourceURL,
			Sequence:  len(chunks),
		})
	}

	start := 0
	for {
		limit := start + s.chunkSize
		if limit >= len(runes) {
			// Final chunk takes the whole remaining tail.
			emit(string(runes[start:]))
			return chunks
		}

		cut := s.boundaryCut(string(runes[start:limit]))
		emit(string(runes[start : start+cut]))

		// The next chunk starts overlap characters before this one ended,
		// so consecutive chunks share exactly that many characters.
		start += cut - s.overlap
	}
}

// boundaryCut picks how many runes of the window to keep, preferring
// semantic breakpoints over raw character cuts. The returned count is
// always past the overlap region so the splitter makes forward progress.
func (s *Splitter) boundaryCut(window string) int {
	for _, sep := range boundaries {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}

		cut := utf8.RuneCountInString(window[:idx+len(sep)])
		if cut > s.overlap {
			return cut
		}
	}

	return utf8.RuneCountInString(window)
}
