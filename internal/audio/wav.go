package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// Clip is interleaved 16-bit PCM with its container metadata.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

func (c Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(int64(c.Frames()) * int64(time.Second) / int64(c.SampleRate))
}

// WriteWAV encodes c as a PCM WAV stream. The header is finalized by seeking
// back, hence the io.WriteSeeker.
func WriteWAV(w io.WriteSeeker, c Clip) error {
	if c.Channels <= 0 || c.SampleRate <= 0 {
		return fmt.Errorf("invalid clip format: %d channels, %dHz", c.Channels, c.SampleRate)
	}
	if len(c.Samples)%c.Channels != 0 {
		return fmt.Errorf("%d samples is not a whole number of %d-channel frames", len(c.Samples), c.Channels)
	}

	data := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(w, c.SampleRate, BitDepth, c.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: c.Channels,
			SampleRate:  c.SampleRate,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize header: %w", err)
	}
	return nil
}

// ReadWAV decodes a 16-bit PCM WAV stream.
func ReadWAV(r io.ReadSeeker) (Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, errors.New("invalid wav")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return Clip{}, fmt.Errorf("unsupported wav format %d, want PCM", dec.WavAudioFormat)
	}
	if dec.BitDepth != BitDepth {
		return Clip{}, fmt.Errorf("unsupported bit depth %d, want %d", dec.BitDepth, BitDepth)
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("read samples: %w", err)
	}

	c := Clip{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}
	if pb != nil {
		c.Samples = make([]int16, len(pb.Data))
		for i, v := range pb.Data {
			c.Samples[i] = int16(v)
		}
	}
	return c, nil
}

// WriteFile stores c at path. The file only appears once it is complete:
// it is written next to path and renamed into place.
func WriteFile(path string, c Clip) (rerr error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmp := f.Name()

	defer func() {
		if rerr != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err := WriteWAV(f, c); err != nil {
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func ReadFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	return ReadWAV(f)
}
