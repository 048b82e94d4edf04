package audio

import (
	"encoding/binary"
	"math"
)

// ToMono16k conditions a captured frame into the recognition format: 16-bit
// mono PCM at [RecognitionRate]. Multi-channel input keeps the left channel,
// and rate conversion applies an order-4 Butterworth low-pass at 0.9·Nyquist
// of the target rate before interpolating, so downsampling does not alias.
//
// The function is stateless and idempotent: a frame that is already 16 kHz
// mono is returned unchanged, same backing bytes.
func ToMono16k(f Frame) Conditioned {
	if f.SampleRate == RecognitionRate && f.Channels == 1 {
		return Conditioned{Frame: f, DBFS: LoudnessDB(f.Data)}
	}

	pcm := f.Data
	if f.Channels > 1 {
		pcm = leftChannel(pcm, f.Channels)
	}
	if f.SampleRate != RecognitionRate {
		if f.SampleRate > RecognitionRate {
			// Anti-alias before decimation. Cutoff at 0.9 of the target
			// Nyquist keeps the speech band intact.
			pcm = butterworthLowPass(pcm, f.SampleRate, 0.9*RecognitionRate/2)
		}
		pcm = ResampleMono16(pcm, f.SampleRate, RecognitionRate)
	}

	out := Frame{
		Data:       pcm,
		SampleRate: RecognitionRate,
		Channels:   1,
		Timestamp:  f.Timestamp,
	}
	return Conditioned{Frame: out, DBFS: LoudnessDB(pcm)}
}

// LoudnessDB returns the RMS loudness of 16-bit little-endian PCM in dBFS.
// The result is ≤ 0; an empty or all-zero buffer returns [SilenceFloorDB].
func LoudnessDB(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return SilenceFloorDB
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		v := float64(s) / 32768.0
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(n))
	if rms <= 0 {
		return SilenceFloorDB
	}
	db := 20 * math.Log10(rms)
	if db < SilenceFloorDB {
		return SilenceFloorDB
	}
	return db
}

// leftChannel extracts channel 0 from interleaved 16-bit PCM.
func leftChannel(pcm []byte, channels int) []byte {
	frames := len(pcm) / (2 * channels)
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		out[i*2] = pcm[i*2*channels]
		out[i*2+1] = pcm[i*2*channels+1]
	}
	return out
}

// ResampleMono16 resamples 16-bit mono PCM from srcRate to dstRate using
// linear interpolation. The input must be little-endian int16 samples. If
// srcRate == dstRate, the input is returned unchanged.
func ResampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	if srcRate == dstRate || len(pcm) < 2 {
		return pcm
	}
	srcSamples := len(pcm) / 2
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(srcRate) / float64(dstRate)

	for i := range dstSamples {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := int16(pcm[srcIdx*2]) | int16(pcm[srcIdx*2+1])<<8
		var s1 int16
		if srcIdx+1 < srcSamples {
			s1 = int16(pcm[(srcIdx+1)*2]) | int16(pcm[(srcIdx+1)*2+1])<<8
		} else {
			s1 = s0
		}

		interpolated := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		out[i*2] = byte(interpolated)
		out[i*2+1] = byte(interpolated >> 8)
	}
	return out
}

// biquad holds the coefficients of one second-order IIR section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

// Q values of the two cascaded sections of an order-4 Butterworth filter.
var butterworthQ = [2]float64{0.54119610, 1.30656296}

// newLowPass designs one low-pass biquad section with the given cutoff and Q
// at the given sample rate (RBJ cookbook formulas).
func newLowPass(sampleRate int, cutoff, q float64) biquad {
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return biquad{
		b0: (1 - cosw) / 2 / a0,
		b1: (1 - cosw) / a0,
		b2: (1 - cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

// apply runs the section over mono float64 samples in place (direct form I,
// zero initial state).
func (f biquad) apply(x []float64) {
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y := f.b0*v + f.b1*x1 + f.b2*x2 - f.a1*y1 - f.a2*y2
		x2, x1 = x1, v
		y2, y1 = y1, y
		x[i] = y
	}
}

// butterworthLowPass filters 16-bit mono PCM through an order-4 Butterworth
// low-pass at the given cutoff frequency.
func butterworthLowPass(pcm []byte, sampleRate int, cutoff float64) []byte {
	n := len(pcm) / 2
	if n == 0 || cutoff >= float64(sampleRate)/2 {
		return pcm
	}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	for _, q := range butterworthQ {
		newLowPass(sampleRate, cutoff, q).apply(samples)
	}

	out := make([]byte, n*2)
	for i, v := range samples {
		s := math.Round(v)
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out
}

// Float32Samples converts 16-bit little-endian PCM to float32 samples in
// [−1, 1], the representation VAD models and whisper.cpp operate on.
func Float32Samples(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
	}
	return out
}
