package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
)

const readChunkSize = 4 * 1024

// Handlers 事件回调，全部在读取循环所在的 goroutine 中同步调用
type Handlers struct {
	// OnMessage 每个可解析为 JSON 的帧调用一次，顺序与到达顺序一致
	OnMessage func(msg json.RawMessage)
	// OnError 终止性错误，最多调用一次
	OnError func(err error)
	// OnComplete 流正常结束时调用一次，出错时不调用
	OnComplete func()
}

// Fail 将错误交给 OnError；未设置 OnError 时只记录日志
func (h Handlers) Fail(err error) {
	if h.OnError == nil {
		logger.Log.Warnf("stream error dropped: %v", err)
		return
	}
	h.OnError(err)
}

// Ingest 从 r 中增量读取事件帧并分发，直到 EOF、读错误或 ctx 取消。
// 所有错误（包括回调中的 panic）都通过 OnError 报告，不会返回给调用方。
func Ingest(ctx context.Context, r io.Reader, h Handlers) {
	if err := ingest(ctx, r, h); err != nil {
		h.Fail(err)
		return
	}
	if err := complete(h); err != nil {
		h.Fail(err)
	}
}

func complete(h Handlers) (err error) {
	if h.OnComplete == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stream complete handler panic: %v", rec)
		}
	}()
	h.OnComplete()
	return nil
}

func ingest(ctx context.Context, r io.Reader, h Handlers) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stream handler panic: %v", rec)
		}
	}()

	var parser Parser
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stream aborted: %w", err)
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			dispatch(parser.Feed(buf[:n]), h)
		}
		if errors.Is(readErr, io.EOF) {
			if rest := parser.Pending(); rest != "" {
				logger.Log.Debugf("discarding incomplete trailing frame (%d bytes)", len(rest))
			}
			return nil
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("stream aborted: %w", ctxErr)
			}
			return fmt.Errorf("read stream: %w", readErr)
		}
	}
}

func dispatch(frames []Frame, h Handlers) {
	for _, f := range frames {
		if !json.Valid([]byte(f.Data)) {
			// 心跳或注释帧
			logger.Log.Debugf("skip non-json frame: %q", f.Data)
			continue
		}
		if h.OnMessage != nil {
			h.OnMessage(json.RawMessage(f.Data))
		}
	}
}
