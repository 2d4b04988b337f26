package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandlerRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, ref HandlerRef)
	}{
		{
			name:  "short input left-padded",
			input: "0x01",
			check: func(t *testing.T, ref HandlerRef) {
				assert.Equal(t, byte(0x01), ref[HandlerRefSize-1])
				assert.False(t, ref.IsUnbound())
			},
		},
		{
			name:  "full width",
			input: "0x0102030405060708090a0b0c0d0e0f1011121314",
			check: func(t *testing.T, ref HandlerRef) {
				assert.Equal(t, byte(0x01), ref[0])
				assert.Equal(t, byte(0x14), ref[HandlerRefSize-1])
			},
		},
		{
			name:  "odd nibble count",
			input: "0x123",
			check: func(t *testing.T, ref HandlerRef) {
				assert.Equal(t, byte(0x23), ref[HandlerRefSize-1])
				assert.Equal(t, byte(0x01), ref[HandlerRefSize-2])
			},
		},
		{name: "too long", input: "0x010203040506070809" + "0a0b0c0d0e0f10111213141516", wantErr: true},
		{name: "not hex", input: "0xgg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseHandlerRef(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, ref)
		})
	}
}

func TestHandlerRef_Sentinel(t *testing.T) {
	assert.True(t, UnboundHandler.IsUnbound())

	ref, err := ParseHandlerRef("0x00")
	require.NoError(t, err)
	assert.True(t, ref.IsUnbound(), "all-zero reference is the sentinel")
}

func TestHandlerRef_TextRoundTrip(t *testing.T) {
	ref, err := ParseHandlerRef("0xdeadbeef")
	require.NoError(t, err)

	text, err := ref.MarshalText()
	require.NoError(t, err)

	var back HandlerRef
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, ref, back)
}
