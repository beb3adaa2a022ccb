// Package textenc normalises uploaded text files to UTF-8. Supplier price
// lists arrive from Windows spreadsheets as often as from web exports, so
// the charset is sniffed instead of trusted.
package textenc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// Reader yields UTF-8 text and remembers which charset it decoded from.
type Reader struct {
	io.Reader
	Charset string
}

type bom struct {
	prefix  []byte
	charset string
	dec     encoding.Encoding
}

var boms = []bom{
	{prefix: []byte{0xEF, 0xBB, 0xBF}, charset: "UTF-8"},
	{prefix: []byte{0xFF, 0xFE}, charset: "UTF-16LE", dec: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{prefix: []byte{0xFE, 0xFF}, charset: "UTF-16BE", dec: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// legacy maps chardet results onto decoders. Anything unknown falls back to
// Windows-1252, the usual export charset for pt-BR spreadsheets.
var legacy = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
}

func NewUTF8Reader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peeking input: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.prefix) {
			continue
		}

		if b.dec == nil {
			_, _ = br.Discard(len(b.prefix))
			return &Reader{Reader: br, Charset: b.charset}, nil
		}

		return &Reader{Reader: transform.NewReader(br, b.dec.NewDecoder()), Charset: b.charset}, nil
	}

	if utf8.Valid(head) {
		return &Reader{Reader: br, Charset: "UTF-8"}, nil
	}

	charset := "windows-1252"

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == "UTF-8" {
			return &Reader{Reader: br, Charset: "UTF-8"}, nil
		}

		if _, ok := legacy[res.Charset]; ok {
			charset = res.Charset
		}
	}

	return &Reader{Reader: transform.NewReader(br, legacy[charset].NewDecoder()), Charset: charset}, nil
}
