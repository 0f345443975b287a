package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultSize    = 1000
	DefaultOverlap = 100
)

// separators are tried in order; the empty separator splits into single runes.
var separators = []string{"\n\n", "\n", " ", ""}

// Options controls how text is chunked. Lengths are counted in runes.
type Options struct {
	Size    int
	Overlap int
}

// Chunk represents a slice of the document text.
type Chunk struct {
	Text string
}

// ChunkText recursively splits text on paragraph, line, word and finally
// character boundaries, then merges the pieces into windows of at most
// opts.Size runes that carry up to opts.Overlap runes from the previous window.
func ChunkText(text string, opts Options) []Chunk {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap >= opts.Size {
		opts.Overlap = opts.Size / 10
	}

	s := splitter{size: opts.Size, overlap: opts.Overlap}
	var chunks []Chunk
	for _, t := range s.split(text, separators) {
		chunks = append(chunks, Chunk{Text: t})
	}
	return chunks
}

type splitter struct {
	size    int
	overlap int
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func (s splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	for _, p := range strings.Split(text, sep) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}

	var out, good []string
	for _, p := range pieces {
		if runeLen(p) < s.size {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good, sep)...)
	}
	return out
}

// merge packs pieces joined by sep into windows, keeping a tail of at most
// s.overlap runes as the head of the next window.
func (s splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		docs    []string
		current []string
		total   int
	)
	joinLen := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	for _, p := range pieces {
		n := runeLen(p)
		if total+n+joinLen() > s.size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total > 0 && total+n+joinLen() > s.size) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
