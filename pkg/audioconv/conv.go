// Package audioconv decodes wav, mp3, ogg/vorbis and ogg/opus files into
// interleaved 16-bit PCM at a requested rate and channel count.
package audioconv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

type Options struct {
	SampleRate int // target rate, 0 keeps the source rate
	Channels   int // 1 or 2, 0 means 1
	MaxFrames  int // 0 = no limit
}

// decoded is mono float PCM in [-1, 1] at its native rate.
type decoded struct {
	pcm  []float32
	rate int
}

// DecodeFile decodes path and returns interleaved int16 samples in the
// target format. Multi-channel sources are downmixed to mono before being
// spread over the target channels.
func DecodeFile(ctx context.Context, path string, opt Options) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := decode(ctx, f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return finish(d, opt), nil
}

func decode(ctx context.Context, f *os.File, ext string) (decoded, error) {
	switch ext {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".ogg", ".oga", ".opus":
		return decodeOgg(ctx, f)
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return decoded{}, err
	}
	switch string(magic) {
	case "RIFF":
		return decodeWAV(f)
	case "OggS":
		return decodeOgg(ctx, f)
	}
	return decoded{}, fmt.Errorf("unsupported format %q (supported: wav/mp3/ogg-vorbis/ogg-opus)", ext)
}

func decodeOgg(ctx context.Context, f *os.File) (decoded, error) {
	d, err := decodeOggVorbis(f)
	if err == nil {
		return d, nil
	}
	if _, e2 := f.Seek(0, io.SeekStart); e2 != nil {
		return decoded{}, e2
	}
	d, e3 := decodeOggOpus(ctx, f)
	if e3 != nil {
		return decoded{}, fmt.Errorf("ogg is neither vorbis (%v) nor opus (%w)", err, e3)
	}
	return d, nil
}

func decodeWAV(r io.ReadSeeker) (decoded, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return decoded{}, errors.New("invalid wav")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil || pb == nil || pb.Data == nil {
		if err == nil {
			err = errors.New("empty wav")
		}
		return decoded{}, err
	}

	bd := int(dec.BitDepth)
	if bd == 0 {
		bd = 16
	}
	x := intSliceToFloat32(pb.Data, bd)

	ch := 1
	sr := 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			ch = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			sr = pb.Format.SampleRate
		}
	}
	return decoded{pcm: downmixInterleaved(x, ch), rate: sr}, nil
}

func decodeMP3(r io.Reader) (decoded, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return decoded{}, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return decoded{}, err
	}
	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return decoded{}, err
	}

	sr := dec.SampleRate()
	if sr <= 0 {
		sr = 44100
	}
	// go-mp3 always yields stereo.
	return decoded{pcm: downmixInterleaved(int16SliceToFloat32(ints), 2), rate: sr}, nil
}

func decodeOggVorbis(r io.Reader) (decoded, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return decoded{}, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return decoded{}, errors.New("invalid ogg/vorbis stream")
	}
	return decoded{pcm: downmixInterleaved(pcm, format.Channels), rate: format.SampleRate}, nil
}

func decodeOggOpus(ctx context.Context, rs io.ReadSeeker) (decoded, error) {
	dec, err := popus.NewDecoder(rs)
	if err != nil {
		return decoded{}, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	// libopusfile always decodes at 48kHz.
	var (
		pcm []float32
		buf = make([]int16, 48_000*ch/2)
	)
	for {
		if err := ctx.Err(); err != nil {
			return decoded{}, err
		}
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, int16SliceToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return decoded{}, err
		}
	}
	return decoded{pcm: downmixInterleaved(pcm, ch), rate: 48000}, nil
}

func finish(d decoded, opt Options) []int16 {
	x := d.pcm
	if opt.SampleRate > 0 && opt.SampleRate != d.rate {
		x = resampleLinear(x, d.rate, opt.SampleRate)
	}
	if opt.MaxFrames > 0 && len(x) > opt.MaxFrames {
		x = x[:opt.MaxFrames]
	}

	ch := opt.Channels
	if ch <= 0 {
		ch = 1
	}
	out := make([]int16, len(x)*ch)
	for i, v := range x {
		s := float32ToInt16(v)
		for c := 0; c < ch; c++ {
			out[i*ch+c] = s
		}
	}
	return out
}

// helpers

func intSliceToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		out[i] = float32(clamp(float64(v)*scale, -1.0, 1.0))
	}
	return out
}

func int16SliceToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func float32ToInt16(v float32) int16 {
	return int16(math.Round(clamp(float64(v)*32768.0, math.MinInt16, math.MaxInt16)))
}

func downmixInterleaved(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	nFrames := len(in) / channels
	out := make([]float32, nFrames)
	for i := 0; i < nFrames; i++ {
		sum := 0.0
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resampleLinear(in []float32, inSR, outSR int) []float32 {
	if inSR == outSR || len(in) == 0 {
		return in
	}
	ratio := float64(outSR) / float64(inSR)
	outN := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, outN)
	for i := 0; i < outN; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		i1 := i0 + 1
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
