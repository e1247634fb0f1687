// Package langid classifies question text into the small set of language
// tags the corpus distinguishes. Only Tagalog is treated specially; every
// other classifier outcome collapses to the English default.
package langid

import "github.com/abadojack/whatlanggo"

// Tag is a supported language tag as stored on a candidate.
type Tag string

const (
	English Tag = "eng"
	Tagalog Tag = "tgl"
)

// Detector classifies text into a supported language tag.
type Detector interface {
	Detect(text string) Tag
}

// Whatlang implements Detector on top of the whatlanggo classifier, which
// reports ISO 639-3 codes and recognizes Tagalog.
type Whatlang struct{}

func (Whatlang) Detect(text string) Tag {
	info := whatlanggo.Detect(text)
	return Collapse(whatlanggo.LangToString(info.Lang))
}

// Collapse maps a raw classifier code onto the supported tag set. Codes
// outside the set fall back to English.
func Collapse(code string) Tag {
	if Tag(code) == Tagalog {
		return Tagalog
	}
	return English
}
