package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nadzzz/koe/internal/query"
)

// Client calls koe.v1.Synthesis over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

// AudioQuery creates a query for in.Text.
func (c *Client) AudioQuery(ctx context.Context, in *AudioQueryRequest) (*query.AudioQuery, error) {
	out := new(query.AudioQuery)
	if err := c.invoke(ctx, "AudioQuery", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Synthesis renders in.Query to WAV.
func (c *Client) Synthesis(ctx context.Context, in *SynthesisRequest) (*AudioResponse, error) {
	out := new(AudioResponse)
	if err := c.invoke(ctx, "Synthesis", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// TTS renders in.Text to WAV.
func (c *Client) TTS(ctx context.Context, in *TTSRequest) (*AudioResponse, error) {
	out := new(AudioResponse)
	if err := c.invoke(ctx, "TTS", in, out); err != nil {
		return nil, err
	}
	return out, nil
}
