// Package grpc implements the gRPC transport for koe.
//
// The service koe.v1.Synthesis exposes the same three operations as the HTTP
// API. Messages are plain Go structs carried by a JSON codec registered
// under the "json" content subtype, so clients call with
// grpc.CallContentSubtype("json") instead of generated protobuf stubs.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/koe/internal/message"
	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "koe.v1.Synthesis"

// AudioQueryRequest is the input of AudioQuery.
type AudioQueryRequest struct {
	Text    string `json:"text"`
	Speaker *int64 `json:"speaker,omitempty"`
}

// SynthesisRequest is the input of Synthesis.
type SynthesisRequest struct {
	Query                      *query.AudioQuery `json:"query"`
	Speaker                    *int64            `json:"speaker,omitempty"`
	EnableInterrogativeUpspeak *bool             `json:"enable_interrogative_upspeak,omitempty"`
}

// TTSRequest is the input of TTS.
type TTSRequest struct {
	Text                       string `json:"text"`
	Speaker                    *int64 `json:"speaker,omitempty"`
	EnableInterrogativeUpspeak *bool  `json:"enable_interrogative_upspeak,omitempty"`
}

// AudioResponse carries a complete WAV file.
type AudioResponse struct {
	Audio       []byte `json:"audio"`
	ContentType string `json:"content_type"`
}

// SynthesisServer is the server API for koe.v1.Synthesis.
type SynthesisServer interface {
	AudioQuery(context.Context, *AudioQueryRequest) (*query.AudioQuery, error)
	Synthesis(context.Context, *SynthesisRequest) (*AudioResponse, error)
	TTS(context.Context, *TTSRequest) (*AudioResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SynthesisServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AudioQuery", SynthesisServer.AudioQuery),
		unary("Synthesis", SynthesisServer.Synthesis),
		unary("TTS", SynthesisServer.TTS),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "koe/v1/synthesis.proto",
}

// unary builds the method descriptor for one unary call.
func unary[Req, Resp any](method string, call func(SynthesisServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SynthesisServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, handler)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler transport.Handler) error {
	t.server = grpc.NewServer()
	t.server.RegisterService(&serviceDesc, &server{handler: handler})

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

// server adapts transport.Handler to SynthesisServer.
type server struct {
	handler transport.Handler
}

func (s *server) AudioQuery(ctx context.Context, in *AudioQueryRequest) (*query.AudioQuery, error) {
	req := newRequest(message.ModeAudioQuery)
	req.Text = in.Text
	req.Speaker = in.Speaker
	res, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Query, nil
}

func (s *server) Synthesis(ctx context.Context, in *SynthesisRequest) (*AudioResponse, error) {
	req := newRequest(message.ModeSynthesis)
	req.Query = in.Query
	req.Speaker = in.Speaker
	req.EnableInterrogativeUpspeak = in.EnableInterrogativeUpspeak
	res, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	return &AudioResponse{Audio: res.Audio, ContentType: res.ContentType}, nil
}

func (s *server) TTS(ctx context.Context, in *TTSRequest) (*AudioResponse, error) {
	req := newRequest(message.ModeTTS)
	req.Text = in.Text
	req.Speaker = in.Speaker
	req.EnableInterrogativeUpspeak = in.EnableInterrogativeUpspeak
	res, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	return &AudioResponse{Audio: res.Audio, ContentType: res.ContentType}, nil
}

func (s *server) dispatch(ctx context.Context, req *message.Request) (*message.Result, error) {
	res, err := s.handler(ctx, req)
	if err != nil {
		slog.Error("dispatch failed", "request_id", req.ID, "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	if res.Failed() {
		return nil, status.Error(statusCode(res.Code), res.Error)
	}
	return res, nil
}

func statusCode(c message.Code) codes.Code {
	switch c {
	case message.CodeOK:
		return codes.OK
	case message.CodeInvalid:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

func newRequest(mode message.Mode) *message.Request {
	return &message.Request{
		ID:        uuid.NewString(),
		Source:    "grpc",
		Mode:      mode,
		Timestamp: time.Now(),
	}
}
