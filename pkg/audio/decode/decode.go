// Package decode turns audio files into 16 kHz mono PCM ready for
// recognition. WAV and FLAC are decoded natively; everything else goes
// through an ffmpeg subprocess when one is installed.
package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mewkiz/flac"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

// ErrUnsupportedFormat means the file's format is not decodable natively and
// no ffmpeg binary is available to convert it.
var ErrUnsupportedFormat = errors.New("decode: unsupported audio format")

// File decodes the audio file at path and conditions it to 16 kHz mono
// 16-bit PCM. The context cancels a running ffmpeg conversion.
func File(ctx context.Context, path string) (audio.Conditioned, error) {
	var (
		f   audio.Frame
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		f, err = wavFile(path)
	case ".flac":
		f, err = flacFile(path)
	default:
		f, err = ffmpegFile(ctx, path)
	}
	if err != nil {
		return audio.Conditioned{}, err
	}
	return audio.ToMono16k(f), nil
}

func wavFile(path string) (audio.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return audio.Frame{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	f, err := audio.DecodeWAV(fh)
	if err != nil {
		return audio.Frame{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return f, nil
}

func flacFile(path string) (audio.Frame, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return audio.Frame{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	shift := 0
	if info.BitsPerSample > 16 {
		shift = int(info.BitsPerSample) - 16
	}

	var buf bytes.Buffer
	for {
		fr, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return audio.Frame{}, fmt.Errorf("decoding %s: %w", path, err)
		}
		// Keep only the first channel; the conditioner would drop the
		// others anyway.
		for _, s := range fr.Subframes[0].Samples {
			v := s >> shift
			if info.BitsPerSample < 16 {
				v <<= 16 - int(info.BitsPerSample)
			}
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(int16(v)))
			buf.Write(b[:])
		}
	}

	return audio.Frame{
		Data:       buf.Bytes(),
		SampleRate: int(info.SampleRate),
		Channels:   1,
	}, nil
}

// ffmpegFile shells out to ffmpeg to convert arbitrary containers (mp3,
// ogg, m4a, video files) to raw 16 kHz mono s16le.
func ffmpegFile(ctx context.Context, path string) (audio.Frame, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return audio.Frame{}, fmt.Errorf("%w: %s (ffmpeg not found)", ErrUnsupportedFormat, filepath.Ext(path))
	}

	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(audio.RecognitionRate),
		"-",
	)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return audio.Frame{}, ctx.Err()
		}
		msg := strings.TrimSpace(errBuf.String())
		if msg == "" {
			msg = err.Error()
		}
		return audio.Frame{}, fmt.Errorf("ffmpeg %s: %s", path, msg)
	}

	return audio.Frame{
		Data:       out.Bytes(),
		SampleRate: audio.RecognitionRate,
		Channels:   1,
	}, nil
}
