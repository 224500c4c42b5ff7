package fat12

import (
	"fmt"
	"io"

	"github.com/xaionaro-go/bytesextra"
)

// Image is the fixed-size byte blob backing the whole editor session: 2,880
// sectors of 512 bytes. It exposes sector-granular read/write only, with
// no caching, so every access goes through one narrow boundary the way a
// real BIOS-level block device would.
type Image struct {
	bytes  []byte
	stream io.ReadWriteSeeker
}

// NewImage wraps `data`, which must be exactly ImageSize bytes, as an Image.
// The byte slice is used directly (not copied); mutations through the Image
// are visible in `data` and vice versa.
func NewImage(data []byte) (*Image, error) {
	if len(data) != ImageSize {
		return nil, ErrIOFailed.WithMessage(
			fmt.Sprintf("image must be exactly %d bytes, got %d", ImageSize, len(data)))
	}
	return &Image{
		bytes:  data,
		stream: bytesextra.NewReadWriteSeeker(data),
	}, nil
}

// Bytes returns the underlying buffer. The caller must not retain it past
// the lifetime of the session if the Image is reused for another load.
func (img *Image) Bytes() []byte {
	return img.bytes
}

// checkBounds validates a sector range against the fixed 2,880-sector
// geometry.
func checkBounds(start SectorID, count uint) error {
	if uint(start)+count > TotalSectors {
		return ErrIOFailed.WithMessage(
			fmt.Sprintf(
				"sector range [%d, %d) out of bounds [0, %d)",
				start, uint(start)+count, TotalSectors))
	}
	return nil
}

// ReadSectors copies `count` sectors starting at `start` into a freshly
// allocated buffer.
func (img *Image) ReadSectors(start SectorID, count uint) ([]byte, error) {
	if err := checkBounds(start, count); err != nil {
		return nil, err
	}
	offset := int64(start) * SectorSize
	buf := make([]byte, count*SectorSize)
	copy(buf, img.bytes[offset:offset+int64(len(buf))])
	return buf, nil
}

// WriteSectors copies `data` (which must be an exact multiple of the
// sector size) into the image starting at sector `start`, through the
// image's ReadWriteSeeker so the write path always goes through one narrow
// boundary.
func (img *Image) WriteSectors(start SectorID, data []byte) error {
	if len(data)%SectorSize != 0 {
		return ErrIOFailed.WithMessage(
			fmt.Sprintf("data length %d is not a multiple of the sector size", len(data)))
	}
	count := uint(len(data)) / SectorSize
	if err := checkBounds(start, count); err != nil {
		return err
	}

	if _, err := img.stream.Seek(int64(start)*SectorSize, io.SeekStart); err != nil {
		return ErrIOFailed.Wrap(err)
	}
	if _, err := img.stream.Write(data); err != nil {
		return ErrIOFailed.Wrap(err)
	}
	return nil
}
