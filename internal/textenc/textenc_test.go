package textenc_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/atacadao/internal/textenc"
)

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, err := textenc.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), r.Charset
}

func TestNewUTF8Reader_UTF8(t *testing.T) {
	input := "Código;Descrição;Preço\n001;Açúcar 5kg;23,90\n"

	got, charset := readAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, "UTF-8", charset)
}

func TestNewUTF8Reader_StripsBOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Código;Preço\n")...)

	got, _ := readAll(t, input)
	assert.Equal(t, "Código;Preço\n", got)
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Descrição;Preço\nFeijão;8,50\n")
	require.NoError(t, err)

	got, charset := readAll(t, []byte(encoded))
	assert.Equal(t, "Descrição;Preço\nFeijão;8,50\n", got)
	assert.NotEqual(t, "UTF-8", charset)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	got, charset := readAll(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, "UTF-8", charset)
}
