package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

func trimWord(s string) string { return strings.TrimSpace(s) }

// srtTimestamp renders d as "HH:MM:SS,mmm".
func srtTimestamp(d time.Duration) string {
	return clockTimestamp(d, ",")
}

// vttTimestamp renders d as "HH:MM:SS.mmm".
func vttTimestamp(d time.Duration) string {
	return clockTimestamp(d, ".")
}

func clockTimestamp(d time.Duration, msSep string) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms % 3_600_000 / 60_000
	s := ms % 60_000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, msSep, ms%1000)
}

// assTimestamp renders d as "H:MM:SS.cc" (centisecond precision).
func assTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d.Milliseconds() / 10
	h := cs / 360_000
	m := cs % 360_000 / 6000
	s := cs % 6000 / 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

func writeTxt(w io.Writer, res asr.Result) error {
	for _, s := range res.Segments {
		if _, err := fmt.Fprintln(w, s.Text); err != nil {
			return err
		}
	}
	return nil
}

func writeSRT(w io.Writer, cues []Cue) error {
	for _, c := range cues {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			c.Index, srtTimestamp(c.Start), srtTimestamp(c.End), c.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeVTT(w io.Writer, cues []Cue) error {
	if _, err := fmt.Fprint(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, c := range cues {
		_, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			vttTimestamp(c.Start), vttTimestamp(c.End), c.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

const assHeader = `[Script Info]
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,24,&Hffffff,&Hffffff,&H0,&H0,0,0,0,0,100,100,0,0,1,1,0,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

func writeASS(w io.Writer, cues []Cue) error {
	if _, err := io.WriteString(w, assHeader); err != nil {
		return err
	}
	for _, c := range cues {
		// ASS dialogue text must not contain raw newlines.
		text := strings.ReplaceAll(c.Text, "\n", `\N`)
		_, err := fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			assTimestamp(c.Start), assTimestamp(c.End), text)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTSV(w io.Writer, cues []Cue) error {
	if _, err := fmt.Fprint(w, "start\tend\ttext\n"); err != nil {
		return err
	}
	for _, c := range cues {
		// Tabs inside the text would shift columns.
		text := strings.ReplaceAll(c.Text, "\t", " ")
		_, err := fmt.Fprintf(w, "%d\t%d\t%s\n",
			c.Start.Milliseconds(), c.End.Milliseconds(), text)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, cues []Cue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start", "end", "text"}); err != nil {
		return err
	}
	for _, c := range cues {
		rec := []string{
			strconv.FormatInt(c.Start.Milliseconds(), 10),
			strconv.FormatInt(c.End.Milliseconds(), 10),
			c.Text,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

type jsonSegment struct {
	ID               int        `json:"id"`
	Start            float64    `json:"start"`
	End              float64    `json:"end"`
	Text             string     `json:"text"`
	AvgLogProb       float64    `json:"avg_logprob"`
	NoSpeechProb     float64    `json:"no_speech_prob"`
	CompressionRatio float64    `json:"compression_ratio,omitempty"`
	Words            []jsonWord `json:"words,omitempty"`
}

type jsonResult struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Segments []jsonSegment `json:"segments"`
}

func writeJSON(w io.Writer, res asr.Result) error {
	out := jsonResult{
		Text:     res.Text(),
		Language: res.Language,
		Segments: make([]jsonSegment, 0, len(res.Segments)),
	}
	for _, s := range res.Segments {
		js := jsonSegment{
			ID:               s.ID,
			Start:            s.Start.Seconds(),
			End:              s.End.Seconds(),
			Text:             s.Text,
			AvgLogProb:       s.AvgLogProb,
			NoSpeechProb:     s.NoSpeechProb,
			CompressionRatio: s.CompressionRatio,
		}
		for _, word := range s.Words {
			js.Words = append(js.Words, jsonWord{
				Word:        trimWord(word.Text),
				Start:       word.Start.Seconds(),
				End:         word.End.Seconds(),
				Probability: word.Probability,
			})
		}
		out.Segments = append(out.Segments, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
