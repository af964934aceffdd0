package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Writer 服务端事件流写入器
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter 写入事件流响应头并返回 Writer；ResponseWriter 不支持 Flush 时返回错误
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &Writer{w: w, flusher: flusher}, nil
}

// Send 以单个 data 帧写出 v 的 JSON 编码
func (s *Writer) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment 写出一条注释帧，常用作心跳
func (s *Writer) Comment(text string) error {
	text = strings.ReplaceAll(text, "\n", " ")
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
