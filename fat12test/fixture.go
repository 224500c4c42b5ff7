// Package fat12test builds an in-memory, standard 1.44 MiB FAT12 image for
// use by other packages' tests. There's no on-disk floppy image to embed
// here, so the fixture is assembled programmatically from the same BPB
// fields ParseBootSector expects.
package fat12test

import (
	"encoding/binary"

	fat12 "github.com/gofat12/fat12edit"
)

// NewFixtureImage returns a freshly formatted, empty standard 1.44 MiB
// floppy image: a single volume-label entry in the root directory, no
// other files, all data clusters free.
func NewFixtureImage() (*fat12.Image, *fat12.BootSector) {
	data := make([]byte, fat12.ImageSize)
	sector := data[0:fat12.SectorSize]

	sector[0], sector[1], sector[2] = 0xEB, 0x3C, 0x90
	copy(sector[3:11], []byte("MSDOS5.0"))
	binary.LittleEndian.PutUint16(sector[11:13], fat12.SectorSize)
	sector[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(sector[14:16], 1)
	sector[16] = 2 // NumFATs
	binary.LittleEndian.PutUint16(sector[17:19], 224)
	binary.LittleEndian.PutUint16(sector[19:21], fat12.TotalSectors)
	sector[21] = 0xF0
	binary.LittleEndian.PutUint16(sector[22:24], 9) // FATSz16
	binary.LittleEndian.PutUint16(sector[24:26], 18)
	binary.LittleEndian.PutUint16(sector[26:28], 2)
	sector[38] = 0x29
	copy(sector[43:54], []byte("NO NAME    "))
	copy(sector[54:62], []byte("FAT12   "))
	sector[510], sector[511] = 0x55, 0xAA

	img, err := fat12.NewImage(data)
	if err != nil {
		panic(err)
	}
	boot, err := fat12.ParseBootSector(sector)
	if err != nil {
		panic(err)
	}

	// Stamp a volume label into the root directory so fixtures start out
	// non-empty, the way a freshly formatted floppy would.
	labelSector, err := img.ReadSectors(boot.RootStartSector, 1)
	if err != nil {
		panic(err)
	}
	copy(labelSector[0:11], []byte("NO NAME    "))
	labelSector[11] = fat12.AttrVolumeLabel
	if err := img.WriteSectors(boot.RootStartSector, labelSector); err != nil {
		panic(err)
	}

	return img, boot
}
