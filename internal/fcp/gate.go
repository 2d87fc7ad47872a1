package fcp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	"github.com/brocaar/lorawan"
	"github.com/pkg/errors"
)

// Gate decrypts and encrypts the optional data of private frames.
//
// The encrypted section is a sequence of AES-128 blocks, each processed on
// its own (ECB). Its plaintext is the optional data length, the password, the
// optional data and zero padding.
type Gate struct {
	block    cipher.Block
	password []byte
}

// NewGate creates a Gate for the given pre-shared key and password.
func NewGate(key lorawan.AES128Key, password string) (*Gate, error) {
	if len(password) == 0 || 1+len(password) >= blockSize*MaxNumOfBlocks {
		return nil, errors.New("password length out of range")
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "new aes cipher error")
	}

	return &Gate{
		block:    block,
		password: []byte(password),
	}, nil
}

// MaxOptDataLength returns the largest optional data length that fits the
// encrypted section.
func (g *Gate) MaxOptDataLength() int {
	return blockSize*MaxNumOfBlocks - 1 - len(g.password)
}

// SectionLength returns the encrypted section length for the given optional
// data length, including padding.
func (g *Gate) SectionLength(optDataLen int) int {
	n := 1 + len(g.password) + optDataLen
	return (n + blockSize - 1) / blockSize * blockSize
}

// Open decrypts the given encrypted section and returns the optional data.
// The decrypted scratch buffer is cleared before returning.
func (g *Gate) Open(section []byte) ([]byte, error) {
	if len(section) == 0 || len(section)%blockSize != 0 || len(section) > blockSize*MaxNumOfBlocks {
		return nil, ErrInvalidLength
	}

	plain := make([]byte, len(section))
	defer clear(plain)

	for i := 0; i < len(section); i += blockSize {
		g.block.Decrypt(plain[i:i+blockSize], section[i:i+blockSize])
	}

	n := int(plain[0])
	head := 1 + len(g.password)
	if head+n > len(plain) {
		return nil, ErrIncorrectPassword
	}
	if subtle.ConstantTimeCompare(plain[1:head], g.password) != 1 {
		return nil, ErrIncorrectPassword
	}

	out := make([]byte, n)
	copy(out, plain[head:head+n])
	return out, nil
}

// Seal encrypts the given optional data into an encrypted section.
func (g *Gate) Seal(optData []byte) ([]byte, error) {
	if len(optData) > g.MaxOptDataLength() {
		return nil, ErrInvalidLength
	}

	plain := make([]byte, g.SectionLength(len(optData)))
	defer clear(plain)

	plain[0] = byte(len(optData))
	copy(plain[1:], g.password)
	copy(plain[1+len(g.password):], optData)

	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += blockSize {
		g.block.Encrypt(out[i:i+blockSize], plain[i:i+blockSize])
	}

	return out, nil
}

// OptDataLength returns the decrypted optional data length of the frame.
func (g *Gate) OptDataLength(callsign string, frame []byte) (int, error) {
	b, err := g.OptData(callsign, frame)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// OptData decrypts and returns the optional data of the frame.
func (g *Gate) OptData(callsign string, frame []byte) ([]byte, error) {
	if _, err := ParseFunctionID(callsign, frame); err != nil {
		return nil, err
	}
	return g.Open(frame[len(callsign)+1:])
}

// FrameLength returns the length of an encrypted frame.
func (g *Gate) FrameLength(callsign string, optDataLen int) int {
	return len(callsign) + 1 + g.SectionLength(optDataLen)
}

// Encode writes an encrypted frame into out and returns its length.
func (g *Gate) Encode(out []byte, callsign string, id FunctionID, optData []byte) (int, error) {
	section, err := g.Seal(optData)
	if err != nil {
		return 0, err
	}

	n := len(callsign) + 1 + len(section)
	if n > MaxRadioBufferLength {
		return 0, ErrInvalidLength
	}
	if len(out) < n {
		return 0, ErrBufferTooSmall
	}

	copy(out, callsign)
	out[len(callsign)] = byte(id)
	copy(out[len(callsign)+1:], section)

	return n, nil
}
