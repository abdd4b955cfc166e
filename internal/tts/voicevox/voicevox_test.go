package voicevox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/tts"
)

type fakeEngine struct {
	queryErr, waveErr error

	gotQuery   *query.AudioQuery
	gotSpeaker int64
	gotUpspeak bool
}

func (f *fakeEngine) AudioQuery(_ context.Context, _ string, speaker int64) (*query.AudioQuery, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.gotSpeaker = speaker
	return query.DefaultAudioQuery(nil), nil
}

func (f *fakeEngine) SynthesisWave(q *query.AudioQuery, _ int64, upspeak bool) ([]byte, error) {
	if f.waveErr != nil {
		return nil, f.waveErr
	}
	f.gotQuery = q
	f.gotUpspeak = upspeak
	return []byte("RIFF"), nil
}

func TestSynthesize(t *testing.T) {
	e := &fakeEngine{}
	s := New(e, nil)

	res, err := s.Synthesize(context.Background(), "こんにちは", tts.SynthesizeOpts{
		Speaker:                    4,
		EnableInterrogativeUpspeak: true,
		SpeedScale:                 1.2,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), res.Audio)
	assert.Equal(t, "audio/wav", res.ContentType)
	assert.Equal(t, 24000, res.SampleRate)
	assert.Equal(t, 1, res.Channels)

	assert.Equal(t, int64(4), e.gotSpeaker)
	assert.True(t, e.gotUpspeak)
	assert.Equal(t, 1.2, e.gotQuery.SpeedScale)
	assert.Equal(t, 1.0, e.gotQuery.VolumeScale, "zero override keeps the default")
}

func TestSynthesize_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&fakeEngine{queryErr: boom}, nil).Synthesize(context.Background(), "a", tts.SynthesizeOpts{})
	assert.ErrorIs(t, err, boom)

	_, err = New(&fakeEngine{waveErr: boom}, nil).Synthesize(context.Background(), "a", tts.SynthesizeOpts{})
	assert.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	assert.NoError(t, New(&fakeEngine{}, nil).Close())

	closed := false
	s := New(&fakeEngine{}, func() error { closed = true; return nil })
	require.NoError(t, s.Close())
	assert.True(t, closed)
}
