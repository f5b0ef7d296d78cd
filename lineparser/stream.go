package lineparser

import "io"

// InputStream supplies the raw bytes of an input in source-controlled
// chunks. Chunk sizes are an artifact of the source; callers must not
// assume any relationship between chunk boundaries and line boundaries.
type InputStream interface {
	// Next returns the next chunk of the input, or io.EOF once the input
	// is exhausted. The returned slice is only valid until the next call.
	Next() ([]byte, error)
	// SizeHint returns the total number of bytes the stream will produce,
	// or -1 if unknown. It is advisory; implementations that cannot know
	// the size do not need to estimate it.
	SizeHint() int64
}

type blockStream struct {
	data  []byte
	pos   int
	block int
}

// NewBlockStream returns an InputStream over data that delivers at most
// blockSize bytes per call to Next. A zero or negative blockSize delivers
// the whole input as a single chunk.
func NewBlockStream(data []byte, blockSize int) InputStream {
	if blockSize <= 0 || blockSize > len(data) {
		blockSize = len(data)
	}
	return &blockStream{data: data, block: blockSize}
}

func (s *blockStream) Next() ([]byte, error) {
	if s.pos >= len(s.data) {
		return nil, io.EOF
	}
	end := s.pos + s.block
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.pos:end]
	s.pos = end
	return chunk, nil
}

func (s *blockStream) SizeHint() int64 {
	return int64(len(s.data))
}

type readerStream struct {
	r   io.Reader
	buf []byte
	err error
}

// NewReaderStream returns an InputStream that reads from r in blocks of
// at most blockSize bytes. A zero or negative blockSize uses a default of
// 4096 bytes.
func NewReaderStream(r io.Reader, blockSize int) InputStream {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &readerStream{r: r, buf: make([]byte, blockSize)}
}

func (s *readerStream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			// A reader may return bytes alongside an error; deliver the
			// bytes now and surface the error on the next call.
			s.err = err
			return s.buf[:n], nil
		}
		if err != nil {
			s.err = err
			return nil, err
		}
	}
}

func (s *readerStream) SizeHint() int64 {
	return -1
}
