// Package tokenizer counts tokens for budget estimation. It prefers a
// real BPE tokenizer and degrades to a character heuristic when the
// encoding cannot be loaded.
package tokenizer

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/bote-dev/bote/pkg/observability"
)

// encodingName is the BPE vocabulary used for counting. The served
// model family tokenizes close enough to this for budget estimation.
const encodingName = "o200k_base"

var (
	once     sync.Once
	encoding *tiktoken.Tiktoken
)

// load initializes the shared encoding on first use. tiktoken fetches
// its BPE ranks lazily, which can fail without network access; Count
// degrades to Estimate in that case.
func load() *tiktoken.Tiktoken {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			slog.Warn("tokenizer unavailable, falling back to character estimate",
				"encoding", encodingName,
				"error", err)
			return
		}
		encoding = enc
	})
	return encoding
}

// Count returns the token count for text. Empty text counts as zero on
// both paths.
func Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := load(); enc != nil {
		observability.TokenCountsTotal.WithLabelValues("tokenizer").Inc()
		return len(enc.Encode(text, nil, nil))
	}
	observability.TokenCountsTotal.WithLabelValues("estimate").Inc()
	return Estimate(text)
}

// Estimate approximates the token count as ceil(characters / 4).
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}
