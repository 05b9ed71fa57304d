package radio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// LengthPrefixSize は長さプレフィックスのバイト数
const LengthPrefixSize = 4

// フレーミングのエラー
var (
	ErrFrameTooLarge  = errors.New("frame too large")
	ErrFrameEmpty     = errors.New("frame is empty")
	ErrFrameTruncated = errors.New("frame truncated")
)

// FrameWriter は4バイトビッグエンディアンの長さプレフィックス付きフレームを書き込む。
// 複数goroutineから呼び出し可能。
type FrameWriter struct {
	w       io.Writer
	maxSize uint32
	mu      sync.Mutex
}

// NewFrameWriter は新しいFrameWriterを生成する
func NewFrameWriter(w io.Writer, maxSize uint32) *FrameWriter {
	return &FrameWriter{w: w, maxSize: maxSize}
}

// WriteFrame は1フレームを書き込む
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrFrameEmpty
	}
	if uint32(len(data)) > fw.maxSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(data), fw.maxSize)
	}

	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, err := fw.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// FrameReader は長さプレフィックス付きフレームを読み込む
type FrameReader struct {
	r         io.Reader
	maxSize   uint32
	lengthBuf [LengthPrefixSize]byte
}

// NewFrameReader は新しいFrameReaderを生成する
func NewFrameReader(r io.Reader, maxSize uint32) *FrameReader {
	return &FrameReader{r: r, maxSize: maxSize}
}

// ReadFrame は1フレームを読み込み、ペイロードを返す。
// 接続が正常に閉じられた場合はio.EOFを返す。
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])
	if length == 0 {
		return nil, ErrFrameEmpty
	}
	if length > fr.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, fr.maxSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return payload, nil
}
