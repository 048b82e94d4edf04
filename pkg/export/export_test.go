package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dadangdut33/speech-translate/pkg/provider/asr"
)

func sampleResult() asr.Result {
	return asr.Result{
		Language: "en",
		Segments: []asr.Segment{
			{
				ID:    0,
				Start: 0,
				End:   1500 * time.Millisecond,
				Text:  "hello world",
				Words: []asr.Word{
					{Text: " hello", Start: 0, End: 700 * time.Millisecond, Probability: 0.9},
					{Text: " world", Start: 700 * time.Millisecond, End: 1500 * time.Millisecond, Probability: 0.8},
				},
				AvgLogProb: -0.12,
			},
			{
				ID:    1,
				Start: 2 * time.Second,
				End:   3661*time.Second + 250*time.Millisecond,
				Text:  "second phrase",
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if _, err := ParseFormat("srt"); err != nil {
		t.Fatalf("ParseFormat(srt) returned error: %v", err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Fatal("ParseFormat(docx) expected error")
	}
}

func TestWriteSRT(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := sampleResult()
	if err := Write(&buf, FormatSRT, res, SegmentCues(res)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got := buf.String()
	want := "1\n00:00:00,000 --> 00:00:01,500\nhello world\n\n" +
		"2\n00:00:02,000 --> 01:01:01,250\nsecond phrase\n\n"
	if got != want {
		t.Fatalf("srt output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteVTT(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := sampleResult()
	if err := Write(&buf, FormatVTT, res, SegmentCues(res)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got := buf.String()
	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Fatalf("vtt output missing header:\n%s", got)
	}
	if !strings.Contains(got, "00:00:00.000 --> 00:00:01.500\nhello world") {
		t.Fatalf("vtt output missing cue:\n%s", got)
	}
}

func TestWriteASS(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := sampleResult()
	if err := Write(&buf, FormatASS, res, SegmentCues(res)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "[Events]") {
		t.Fatalf("ass output missing events section:\n%s", got)
	}
	if !strings.Contains(got, "Dialogue: 0,0:00:00.00,0:00:01.50,Default,,0,0,0,,hello world") {
		t.Fatalf("ass output missing dialogue line:\n%s", got)
	}
}

func TestWriteTSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := sampleResult()
	if err := Write(&buf, FormatTSV, res, SegmentCues(res)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("tsv has %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "start\tend\ttext" {
		t.Fatalf("tsv header = %q", lines[0])
	}
	if lines[1] != "0\t1500\thello world" {
		t.Fatalf("tsv row = %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := sampleResult()
	if err := Write(&buf, FormatJSON, res, nil); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	var out jsonResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if out.Text != "hello world second phrase" {
		t.Fatalf("json text = %q", out.Text)
	}
	if len(out.Segments) != 2 {
		t.Fatalf("json has %d segments, want 2", len(out.Segments))
	}
	if got := out.Segments[0].Words[0].Word; got != "hello" {
		t.Fatalf("json word = %q, want trimmed %q", got, "hello")
	}
}

func TestWordCuesFallback(t *testing.T) {
	t.Parallel()

	cues := WordCues(sampleResult())
	// Two words from the first segment plus the wordless second segment.
	if len(cues) != 3 {
		t.Fatalf("got %d cues, want 3: %+v", len(cues), cues)
	}
	if cues[0].Text != "hello" || cues[1].Text != "world" {
		t.Fatalf("word cues = %q, %q", cues[0].Text, cues[1].Text)
	}
	if cues[2].Text != "second phrase" {
		t.Fatalf("fallback cue = %q", cues[2].Text)
	}
	for i, c := range cues {
		if c.Index != i+1 {
			t.Fatalf("cue %d has index %d", i, c.Index)
		}
	}
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res := sampleResult()
	paths, err := WriteAll(dir, "clip", res, Options{
		Formats:      []Format{FormatTxt, FormatSRT, FormatJSON},
		SegmentLevel: true,
		WordLevel:    true,
	})
	if err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "clip.txt"),
		filepath.Join(dir, "clip.srt"),
		filepath.Join(dir, "clip.words.srt"),
		filepath.Join(dir, "clip.json"),
	}
	if len(paths) != len(want) {
		t.Fatalf("WriteAll wrote %v, want %v", paths, want)
	}
	for i, p := range paths {
		if p != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, p, want[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output file %q: %v", p, err)
		}
	}
}

func TestWriteAllDefaultsToSegmentLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res := sampleResult()
	paths, err := WriteAll(dir, "clip", res, Options{Formats: []Format{FormatVTT}})
	if err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "clip.vtt") {
		t.Fatalf("paths = %v, want a single clip.vtt", paths)
	}
}

func TestWriteAllUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := WriteAll(t.TempDir(), "clip", sampleResult(), Options{Formats: []Format{"docx"}})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}
