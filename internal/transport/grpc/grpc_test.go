package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/koe/internal/message"
	"github.com/nadzzz/koe/internal/query"
)

// start serves handler over an in-memory listener and returns a client.
func start(t *testing.T, handler func(context.Context, *message.Request) (*message.Result, error)) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	tr := New(0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tr.Serve(ctx, lis, handler)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return NewClient(conn)
}

func TestAudioQuery(t *testing.T) {
	var got *message.Request
	client := start(t, func(_ context.Context, req *message.Request) (*message.Result, error) {
		got = req
		return &message.Result{RequestID: req.ID, Query: query.DefaultAudioQuery(nil)}, nil
	})

	speaker := int64(4)
	q, err := client.AudioQuery(context.Background(), &AudioQueryRequest{Text: "あ", Speaker: &speaker})
	require.NoError(t, err)
	assert.Equal(t, query.DefaultAudioQuery(nil), q)
	assert.Equal(t, message.ModeAudioQuery, got.Mode)
	assert.Equal(t, "あ", got.Text)
	assert.Equal(t, int64(4), *got.Speaker)
	assert.NotEmpty(t, got.ID)
}

func TestSynthesisAndTTS(t *testing.T) {
	var modes []message.Mode
	client := start(t, func(_ context.Context, req *message.Request) (*message.Result, error) {
		modes = append(modes, req.Mode)
		return &message.Result{Audio: []byte("RIFF"), ContentType: "audio/wav"}, nil
	})

	upspeak := false
	res, err := client.Synthesis(context.Background(), &SynthesisRequest{
		Query:                      query.DefaultAudioQuery(nil),
		EnableInterrogativeUpspeak: &upspeak,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), res.Audio)
	assert.Equal(t, "audio/wav", res.ContentType)

	res, err = client.TTS(context.Background(), &TTSRequest{Text: "a"})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), res.Audio)

	assert.Equal(t, []message.Mode{message.ModeSynthesis, message.ModeTTS}, modes)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		result *message.Result
		want   codes.Code
	}{
		{"invalid", &message.Result{Error: "invalid audio query: speedScale", Code: message.CodeInvalid}, codes.InvalidArgument},
		{"internal", &message.Result{Error: "acoustic model decode: oom", Code: message.CodeInternal}, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := start(t, func(context.Context, *message.Request) (*message.Result, error) {
				return tt.result, nil
			})
			_, err := client.TTS(context.Background(), &TTSRequest{Text: "a"})
			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, st.Code())
			assert.Equal(t, tt.result.Error, st.Message())
		})
	}
}
