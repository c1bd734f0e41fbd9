package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "ascii", text: "hi"},
		{name: "unicode", text: "merhaba dünya, şimdi görüşürüz 👋"},
		{name: "empty", text: ""},
		{name: "multiline", text: "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.text)
			assert.Equal(t, tt.text, Decode(encoded))
		})
	}
}

func TestEncode_IsNotPlaintext(t *testing.T) {
	assert.Equal(t, "aGk=", Encode("hi"))
}

func TestDecode_FallsBackToInput(t *testing.T) {
	assert.Equal(t, "not base64!", Decode("not base64!"))
}
