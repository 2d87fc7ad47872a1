package fcp

import (
	"bytes"
	"testing"

	"github.com/brocaar/lorawan"
	"github.com/stretchr/testify/require"
)

var testKey = lorawan.AES128Key{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x00}

const testPassword = "password"

func mustNewGate(t *testing.T, key lorawan.AES128Key, password string) *Gate {
	g, err := NewGate(key, password)
	require.NoError(t, err)
	return g
}

func TestNewGate(t *testing.T) {
	assert := require.New(t)

	_, err := NewGate(testKey, "")
	assert.Error(err)

	_, err = NewGate(testKey, string(make([]byte, blockSize*MaxNumOfBlocks)))
	assert.Error(err)

	g, err := NewGate(testKey, testPassword)
	assert.NoError(err)
	assert.Equal(blockSize*MaxNumOfBlocks-1-len(testPassword), g.MaxOptDataLength())
}

func TestGateRoundTrip(t *testing.T) {
	g := mustNewGate(t, testKey, testPassword)

	for l := 0; l <= g.MaxOptDataLength(); l++ {
		assert := require.New(t)

		optData := bytes.Repeat([]byte{byte(l)}, l)
		out := make([]byte, MaxRadioBufferLength)

		n, err := g.Encode(out, testCallsign, CmdSetCallsign, optData)
		assert.NoError(err)
		assert.Equal(g.FrameLength(testCallsign, l), n)
		assert.Zero((n - len(testCallsign) - 1) % blockSize)

		f, err := Decode(testCallsign, out[:n], g)
		assert.NoError(err)
		assert.Equal(CmdSetCallsign, f.FunctionID)
		assert.Equal(optData, f.OptData)

		dl, err := g.OptDataLength(testCallsign, out[:n])
		assert.NoError(err)
		assert.Equal(l, dl)
	}
}

func TestGateSectionLength(t *testing.T) {
	g := mustNewGate(t, testKey, testPassword)

	tests := []struct {
		OptDataLen int
		Expected   int
	}{
		{0, 16},
		{7, 16},
		{8, 32},
		{23, 32},
		{24, 48},
		{39, 48},
	}

	for _, tst := range tests {
		require.Equal(t, tst.Expected, g.SectionLength(tst.OptDataLen), "optDataLen %d", tst.OptDataLen)
	}
}

func TestGateOpenErrors(t *testing.T) {
	g := mustNewGate(t, testKey, testPassword)

	sealed, err := g.Seal([]byte{0x01})
	require.NoError(t, err)

	wrongKey := testKey
	wrongKey[0] ^= 0xff

	tests := []struct {
		Name          string
		Gate          *Gate
		Section       []byte
		ExpectedError error
	}{
		{
			Name:          "empty section",
			Gate:          g,
			ExpectedError: ErrInvalidLength,
		},
		{
			Name:          "not a multiple of the block size",
			Gate:          g,
			Section:       make([]byte, blockSize+1),
			ExpectedError: ErrInvalidLength,
		},
		{
			Name:          "too many blocks",
			Gate:          g,
			Section:       make([]byte, blockSize*(MaxNumOfBlocks+1)),
			ExpectedError: ErrInvalidLength,
		},
		{
			Name:          "wrong key",
			Gate:          mustNewGate(t, wrongKey, testPassword),
			Section:       sealed,
			ExpectedError: ErrIncorrectPassword,
		},
		{
			Name:          "wrong password",
			Gate:          mustNewGate(t, testKey, "drowssap"),
			Section:       sealed,
			ExpectedError: ErrIncorrectPassword,
		},
	}

	for _, tst := range tests {
		t.Run(tst.Name, func(t *testing.T) {
			assert := require.New(t)

			b, err := tst.Gate.Open(tst.Section)
			assert.Equal(tst.ExpectedError, err)
			assert.Nil(b)
		})
	}
}

func TestGateOpenLengthOverrun(t *testing.T) {
	assert := require.New(t)
	g := mustNewGate(t, testKey, testPassword)

	// a valid password but a length byte pointing past the section
	plain := make([]byte, blockSize)
	plain[0] = 0xff
	copy(plain[1:], testPassword)
	section := make([]byte, blockSize)
	g.block.Encrypt(section, plain)

	b, err := g.Open(section)
	assert.Equal(ErrIncorrectPassword, err)
	assert.Nil(b)
}

func TestGateSealTooLong(t *testing.T) {
	assert := require.New(t)
	g := mustNewGate(t, testKey, testPassword)

	_, err := g.Seal(make([]byte, g.MaxOptDataLength()+1))
	assert.Equal(ErrInvalidLength, err)
}

func TestDecodePrivateWithoutGate(t *testing.T) {
	assert := require.New(t)
	g := mustNewGate(t, testKey, testPassword)

	out := make([]byte, MaxRadioBufferLength)
	n, err := g.Encode(out, testCallsign, CmdRestart, nil)
	assert.NoError(err)

	_, err = Decode(testCallsign, out[:n], nil)
	assert.Equal(ErrGateRequired, err)
}

func TestDecodePrivateWithoutSection(t *testing.T) {
	assert := require.New(t)
	g := mustNewGate(t, testKey, testPassword)

	_, err := Decode(testCallsign, append([]byte(testCallsign), byte(CmdRestart)), g)
	assert.Equal(ErrInvalidLength, err)
}
