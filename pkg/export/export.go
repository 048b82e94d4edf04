// Package export writes recognition results to subtitle and transcript
// files.
//
// Cue formats (srt, vtt, ass, tsv, csv) can be written at segment level,
// one cue per recognized phrase, or at word level, one cue per word when
// the engine produced word timestamps. Plain text and JSON are written
// once regardless of level; the JSON form carries the full result
// including word timings.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

// Format names an output file format.
type Format string

const (
	FormatTxt  Format = "txt"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatTxt, FormatSRT, FormatVTT, FormatASS, FormatTSV, FormatCSV, FormatJSON}

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	switch f {
	case FormatTxt, FormatSRT, FormatVTT, FormatASS, FormatTSV, FormatCSV, FormatJSON:
		return true
	}
	return false
}

// ErrUnknownFormat is returned by [ParseFormat] for unrecognized names.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat converts a format name to a [Format].
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// cueFormats reports whether f is timed per cue, so a word-level variant
// exists.
func cueFormat(f Format) bool {
	switch f {
	case FormatSRT, FormatVTT, FormatASS, FormatTSV, FormatCSV:
		return true
	}
	return false
}

// Cue is one timed text unit, a segment or a single word.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// SegmentCues converts a result to one cue per segment.
func SegmentCues(res asr.Result) []Cue {
	cues := make([]Cue, 0, len(res.Segments))
	for _, s := range res.Segments {
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return cues
}

// WordCues converts a result to one cue per word. Segments without word
// data fall back to a single segment-wide cue.
func WordCues(res asr.Result) []Cue {
	var cues []Cue
	for _, s := range res.Segments {
		if len(s.Words) == 0 {
			cues = append(cues, Cue{
				Index: len(cues) + 1,
				Start: s.Start,
				End:   s.End,
				Text:  s.Text,
			})
			continue
		}
		for _, w := range s.Words {
			cues = append(cues, Cue{
				Index: len(cues) + 1,
				Start: w.Start,
				End:   w.End,
				Text:  trimWord(w.Text),
			})
		}
	}
	return cues
}

// Options selects which files [WriteAll] produces.
type Options struct {
	// Formats lists the output formats to write.
	Formats []Format

	// SegmentLevel writes one cue per segment. Defaults to true when
	// WordLevel is unset.
	SegmentLevel bool

	// WordLevel additionally writes word-per-cue variants of the cue
	// formats, named <base>.words.<ext>.
	WordLevel bool
}

// WriteAll writes res to dir in every requested format and returns the
// paths written. base is the output file name without extension, normally
// the input file's stem.
func WriteAll(dir, base string, res asr.Result, opts Options) ([]string, error) {
	if !opts.SegmentLevel && !opts.WordLevel {
		opts.SegmentLevel = true
	}

	var paths []string
	for _, f := range opts.Formats {
		if !f.IsValid() {
			return paths, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}

		if opts.SegmentLevel || !cueFormat(f) {
			path := filepath.Join(dir, base+"."+string(f))
			if err := writeFile(path, f, res, SegmentCues(res)); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		if opts.WordLevel && cueFormat(f) {
			path := filepath.Join(dir, base+".words."+string(f))
			if err := writeFile(path, f, res, WordCues(res)); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func writeFile(path string, f Format, res asr.Result, cues []Cue) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %q: %w", path, err)
	}
	if err := Write(out, f, res, cues); err != nil {
		out.Close()
		return fmt.Errorf("export: write %q: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("export: close %q: %w", path, err)
	}
	return nil
}

// Write renders res in the given format to w. cues supplies the timed
// units for the cue formats; txt and json ignore it and use res directly.
func Write(w io.Writer, f Format, res asr.Result, cues []Cue) error {
	switch f {
	case FormatTxt:
		return writeTxt(w, res)
	case FormatSRT:
		return writeSRT(w, cues)
	case FormatVTT:
		return writeVTT(w, cues)
	case FormatASS:
		return writeASS(w, cues)
	case FormatTSV:
		return writeTSV(w, cues)
	case FormatCSV:
		return writeCSV(w, cues)
	case FormatJSON:
		return writeJSON(w, res)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
