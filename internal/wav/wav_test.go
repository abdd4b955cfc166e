package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mono24k() Options { return Options{Volume: 1, SampleRate: 24000} }

func le32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
func le16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }

func samples16(b []byte) []int16 {
	pcm := b[HeaderSize:]
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}

func TestEncode_ClipsAndQuantizes(t *testing.T) {
	b, err := Encode([]float32{0.0, 0.5, 1.5, -2.0}, mono24k())
	require.NoError(t, err)

	require.Len(t, b, HeaderSize+8)
	assert.Equal(t, []int16{0, 16384, 32767, -32767}, samples16(b))

	assert.Equal(t, "RIFF", string(b[0:4]))
	assert.Equal(t, uint32(len(b)-8), le32(b, 4))
	assert.Equal(t, "WAVE", string(b[8:12]))
	assert.Equal(t, "fmt ", string(b[12:16]))
	assert.Equal(t, uint32(16), le32(b, 16))
	assert.Equal(t, uint16(1), le16(b, 20), "linear PCM")
	assert.Equal(t, uint16(1), le16(b, 22), "channels")
	assert.Equal(t, uint32(24000), le32(b, 24))
	assert.Equal(t, uint32(24000*2), le32(b, 28), "byte rate")
	assert.Equal(t, uint16(2), le16(b, 32), "block align")
	assert.Equal(t, uint16(16), le16(b, 34))
	assert.Equal(t, "data", string(b[36:40]))
	assert.Equal(t, uint32(8), le32(b, 40))
}

func TestEncode_Volume(t *testing.T) {
	opts := mono24k()
	opts.Volume = 0.5
	b, err := Encode([]float32{1, -1, 4}, opts)
	require.NoError(t, err)
	assert.Equal(t, []int16{16384, -16384, 32767}, samples16(b))
}

func TestEncode_Empty(t *testing.T) {
	b, err := Encode(nil, mono24k())
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)
	assert.Equal(t, uint32(0), le32(b, 40))
	assert.Equal(t, uint32(HeaderSize-8), le32(b, 4))
}

func TestEncode_RepeatsForRateAndChannels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantBlock uint16
		wantRate  uint32
		repeat    int
	}{
		{"stereo", Options{Volume: 1, SampleRate: 24000, Channels: 2}, 4, 24000 * 4, 2},
		{"48k mono", Options{Volume: 1, SampleRate: 48000}, 2, 48000 * 2, 2},
		{"48k stereo", Options{Volume: 1, SampleRate: 48000, Channels: 2}, 4, 48000 * 4, 4},
	}
	in := []float32{0.25, -0.25, 0.75}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(in, tt.opts)
			require.NoError(t, err)
			require.Len(t, b, HeaderSize+2*len(in)*tt.repeat)
			assert.Equal(t, tt.wantBlock, le16(b, 32))
			assert.Equal(t, tt.wantRate, le32(b, 28))
			assert.Equal(t, uint32(len(b)-HeaderSize), le32(b, 40))

			got := samples16(b)
			for i, s := range in {
				for r := 0; r < tt.repeat; r++ {
					assert.Equal(t, Quantize(float64(s)), got[i*tt.repeat+r])
				}
			}
		})
	}
}

func TestEncode_RejectsRates(t *testing.T) {
	for _, rate := range []int{0, -24000, 44100, 22050, 36000} {
		_, err := Encode([]float32{0}, Options{Volume: 1, SampleRate: rate})
		assert.True(t, errors.Is(err, ErrUnsupportedRate), "rate %d", rate)
	}
	_, err := Encode([]float32{0}, Options{Volume: 1, SampleRate: 24000, Channels: 3})
	assert.Error(t, err)
}

func TestEncode_DecodesWithGoAudio(t *testing.T) {
	b, err := Encode([]float32{0.1, 0.2, -0.3, 0.4}, Options{Volume: 1, SampleRate: 48000, Channels: 2})
	require.NoError(t, err)

	dec := wav.NewDecoder(bytes.NewReader(b))
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 48000, buf.Format.SampleRate)
	assert.Len(t, buf.Data, 16)
}

func TestPCM(t *testing.T) {
	b, err := Encode([]float32{0.5, -0.5}, mono24k())
	require.NoError(t, err)
	pcm, err := PCM(b)
	require.NoError(t, err)
	assert.Equal(t, b[HeaderSize:], pcm)

	_, err = PCM([]byte("RIFF"))
	assert.Error(t, err)
}

func TestEncode_SizeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 2000).Draw(rt, "n")
		in := make([]float32, n)
		for i := range in {
			in[i] = float32(rapid.Float64Range(-3, 3).Draw(rt, "s"))
		}
		b, err := Encode(in, mono24k())
		if err != nil {
			rt.Fatal(err)
		}
		if len(b) != HeaderSize+2*n {
			rt.Fatalf("len = %d, want %d", len(b), HeaderSize+2*n)
		}
		if got := int(le32(b, 40)); got != len(b)-HeaderSize {
			rt.Fatalf("data size = %d, want %d", got, len(b)-HeaderSize)
		}
		for i, s := range samples16(b) {
			if s == -32768 {
				rt.Fatalf("sample %d below -32767", i)
			}
		}
	})
}

func TestReadFormat(t *testing.T) {
	b, err := Encode([]float32{0.1, 0.2}, Options{Volume: 1, SampleRate: 48000, Channels: 2})
	require.NoError(t, err)
	f, err := ReadFormat(b)
	require.NoError(t, err)
	assert.Equal(t, Format{SampleRate: 48000, Channels: 2, Width: 2}, f)

	_, err = ReadFormat([]byte("not a wav file at all"))
	assert.Error(t, err)
}
