// Package wyoming implements a Wyoming protocol TTS server for koe.
//
// Home Assistant voice pipelines connect over TCP, ask for the server's
// capabilities with describe, then send synthesize events. Each synthesize
// is answered with audio-start, raw PCM in audio-chunk events and
// audio-stop, or with a single error event.
package wyoming

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/koe/internal/config"
	"github.com/nadzzz/koe/internal/message"
	"github.com/nadzzz/koe/internal/transport"
	"github.com/nadzzz/koe/internal/wav"
)

// samplesPerChunk is the number of samples per channel in one audio-chunk.
const samplesPerChunk = 1024

// Transport implements transport.Transport as a Wyoming TCP server.
type Transport struct {
	port    int
	voice   string
	version string

	mu    sync.Mutex
	lis   net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// New creates a Wyoming server from config. version is advertised in the
// info event.
func New(cfg config.WyomingConfig, version string) *Transport {
	return &Transport{
		port:    cfg.Port,
		voice:   cfg.Voice,
		version: version,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "wyoming" }

// Listen accepts connections until the context is cancelled.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("wyoming listen: %w", err)
	}
	slog.Info("wyoming transport listening", "port", t.port, "voice", t.voice)
	return t.Serve(ctx, lis, handler)
}

// Serve accepts connections on lis until ctx is cancelled or Close is called.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler transport.Handler) error {
	t.mu.Lock()
	t.lis = lis
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		slog.Info("wyoming transport shutting down")
		_ = t.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				t.wg.Wait()
				return nil
			}
			return fmt.Errorf("wyoming accept: %w", err)
		}
		t.track(conn, true)
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			defer t.track(conn, false)
			t.serveConn(ctx, conn, handler)
		}()
	}
}

// Close stops accepting connections and closes the open ones.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var err error
	if t.lis != nil {
		err = t.lis.Close()
		t.lis = nil
	}
	for c := range t.conns {
		_ = c.Close()
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (t *Transport) track(c net.Conn, open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if open {
		t.conns[c] = struct{}{}
		return
	}
	delete(t.conns, c)
	_ = c.Close()
}

func (t *Transport) serveConn(ctx context.Context, conn net.Conn, handler transport.Handler) {
	logger := slog.With("transport", "wyoming", "remote", conn.RemoteAddr().String())
	logger.Debug("client connected")
	r := bufio.NewReader(conn)

	for {
		evt, err := ReadEvent(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("reading event failed", "error", err)
			}
			return
		}

		switch evt.Type {
		case "describe":
			err = WriteEvent(conn, t.info())
		case "synthesize":
			err = t.synthesize(ctx, conn, evt, handler)
		default:
			logger.Debug("ignoring event", "type", evt.Type)
		}
		if err != nil {
			logger.Warn("writing response failed", "type", evt.Type, "error", err)
			return
		}
	}
}

func (t *Transport) info() Event {
	attribution := map[string]any{"name": "koe", "url": "https://github.com/nadzzz/koe"}
	return Event{
		Type: "info",
		Data: map[string]any{
			"tts": []any{map[string]any{
				"name":        "koe",
				"description": "Japanese text to speech",
				"attribution": attribution,
				"installed":   true,
				"version":     t.version,
				"voices": []any{map[string]any{
					"name":        t.voice,
					"description": "VOICEVOX compatible Japanese voice",
					"attribution": attribution,
					"installed":   true,
					"version":     t.version,
					"languages":   []string{"ja"},
				}},
			}},
		},
	}
}

// synthesize runs a synthesize event through handler and streams the result.
func (t *Transport) synthesize(ctx context.Context, w io.Writer, evt Event, handler transport.Handler) error {
	req := &message.Request{
		ID:        uuid.NewString(),
		Source:    "wyoming",
		Mode:      message.ModeTTS,
		Timestamp: time.Now(),
	}
	req.Text, _ = evt.Data["text"].(string)
	if voice, ok := evt.Data["voice"].(map[string]any); ok {
		req.Speaker = parseSpeaker(voice["speaker"])
	}

	res, err := handler(ctx, req)
	if err != nil {
		return writeError(w, err.Error(), message.CodeInternal)
	}
	if res.Failed() {
		return writeError(w, res.Error, res.Code)
	}

	format, err := wav.ReadFormat(res.Audio)
	if err != nil {
		return writeError(w, err.Error(), message.CodeInternal)
	}
	pcm, err := wav.PCM(res.Audio)
	if err != nil {
		return writeError(w, err.Error(), message.CodeInternal)
	}
	return streamAudio(w, format, pcm)
}

func streamAudio(w io.Writer, format wav.Format, pcm []byte) error {
	audioFormat := map[string]any{
		"rate":     format.SampleRate,
		"width":    format.Width,
		"channels": format.Channels,
	}
	if err := WriteEvent(w, Event{Type: "audio-start", Data: audioFormat}); err != nil {
		return err
	}
	chunk := samplesPerChunk * format.Width * format.Channels
	for start := 0; start < len(pcm); start += chunk {
		end := min(start+chunk, len(pcm))
		if err := WriteEvent(w, Event{Type: "audio-chunk", Data: audioFormat, Payload: pcm[start:end]}); err != nil {
			return err
		}
	}
	return WriteEvent(w, Event{Type: "audio-stop"})
}

func writeError(w io.Writer, text string, code message.Code) error {
	return WriteEvent(w, Event{Type: "error", Data: map[string]any{"text": text, "code": string(code)}})
}

// parseSpeaker accepts the speaker as a JSON number or a numeric string.
func parseSpeaker(v any) *int64 {
	switch s := v.(type) {
	case float64:
		id := int64(s)
		return &id
	case string:
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return &id
	}
	return nil
}
