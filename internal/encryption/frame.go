package encryption

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"scout/internal/recon"
)

var (
	ErrNotSnapshot     = errors.New("not a framed snapshot")
	ErrCorruptSnapshot = errors.New("framed snapshot is corrupt")
)

// frameMagic opens every framed snapshot. It is followed by the payload
// length (uint64, big endian), the payload, and its CRC-32.
var frameMagic = []byte("SCOUTSNP")

const frameHeaderSize = 8 + 8

// FrameEncryptor wraps snapshots in a checksummed frame without encrypting
// them. It is selected with encryption type "test" and needs no keys, so
// snapshot export and import can run end to end in tests.
type FrameEncryptor struct{}

var _ recon.Encryptor = FrameEncryptor{}

func NewFrameEncryptor() FrameEncryptor {
	return FrameEncryptor{}
}

func (FrameEncryptor) Setup(string) error { return nil }

func (FrameEncryptor) IsConfigured() bool { return true }

// Encrypt buffers r to learn its length before writing the frame.
func (FrameEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	header := make([]byte, frameHeaderSize)
	copy(header, frameMagic)
	binary.BigEndian.PutUint64(header[len(frameMagic):], uint64(len(payload)))

	trailer := binary.BigEndian.AppendUint32(nil, crc32.ChecksumIEEE(payload))
	for _, part := range [][]byte{header, payload, trailer} {
		if _, err := w.Write(part); err != nil {
			return fmt.Errorf("writing snapshot frame: %w", err)
		}
	}
	return nil
}

func (FrameEncryptor) Unlock(string) (recon.DecryptionContext, error) {
	return frameDecryption{}, nil
}

type frameDecryption struct{}

// Decrypt streams the payload to w. A wrong magic is ErrNotSnapshot; a short
// payload, a checksum mismatch or trailing bytes are ErrCorruptSnapshot.
func (frameDecryption) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: reading header: %w", ErrNotSnapshot, err)
	}
	if !bytes.Equal(header[:len(frameMagic)], frameMagic) {
		return ErrNotSnapshot
	}
	size := binary.BigEndian.Uint64(header[len(frameMagic):])

	sum := crc32.NewIEEE()
	if _, err := io.CopyN(io.MultiWriter(w, sum), r, int64(size)); err != nil {
		return fmt.Errorf("%w: payload shorter than %d bytes: %w", ErrCorruptSnapshot, size, err)
	}

	trailer := make([]byte, 4)
	if _, err := io.ReadFull(r, trailer); err != nil {
		return fmt.Errorf("%w: missing checksum: %w", ErrCorruptSnapshot, err)
	}
	if binary.BigEndian.Uint32(trailer) != sum.Sum32() {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}
	if n, _ := r.Read(make([]byte, 1)); n > 0 {
		return fmt.Errorf("%w: trailing data after checksum", ErrCorruptSnapshot)
	}
	return nil
}
