// Package sse 实现 "data: <json>\n\n" 事件流的增量解析与消费。
package sse

import (
	"bytes"
	"strings"
)

var (
	delimiter = []byte("\n\n")
	crlf      = []byte("\r\n")
	lf        = []byte("\n")
)

// Frame 一个完整的事件帧
type Frame struct {
	// Data 为所有 data: 行去掉标记与首尾空白后以换行拼接的内容
	Data string
	// Raw 为帧的原始文本（不含分隔空行）
	Raw string
}

// Parser 增量事件帧解析器，按到达顺序返回完整帧，保留末尾不完整的片段。
// Parser 不是并发安全的，每个流使用一个实例。
type Parser struct {
	buf []byte
}

// Feed 追加一个数据块，返回其中所有完整的帧
func (p *Parser) Feed(chunk []byte) []Frame {
	p.buf = append(p.buf, chunk...)
	// 被拆到两个块里的 \r\n 在下次 Feed 时才会合并
	if bytes.Contains(p.buf, crlf) {
		p.buf = bytes.ReplaceAll(p.buf, crlf, lf)
	}

	var frames []Frame
	for {
		idx := bytes.Index(p.buf, delimiter)
		if idx < 0 {
			break
		}
		segment := string(p.buf[:idx])
		p.buf = p.buf[idx+len(delimiter):]
		if f, ok := parseSegment(segment); ok {
			frames = append(frames, f)
		}
	}
	if len(p.buf) == 0 {
		p.buf = nil
	}
	return frames
}

// Pending 返回尚未构成完整帧的缓冲内容
func (p *Parser) Pending() string {
	return string(p.buf)
}

// Reset 丢弃缓冲内容
func (p *Parser) Reset() {
	p.buf = nil
}

func parseSegment(segment string) (Frame, bool) {
	var data []string
	for _, line := range strings.Split(segment, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, ":") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimSpace(rest))
		}
	}
	if len(data) == 0 {
		return Frame{}, false
	}
	return Frame{Data: strings.Join(data, "\n"), Raw: segment}, true
}
