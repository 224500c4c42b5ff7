package fat12

import (
	"encoding/binary"
	"fmt"
)

// RawBootSector is the packed on-disk layout of sector 0 (the BIOS
// Parameter Block). Fields are decoded byte-wise in ParseBootSector rather
// than via binary.Read on this struct directly, since Go struct layout and
// padding are not guaranteed to match the disk format on every platform.
type RawBootSector struct {
	JumpBoot        [3]byte
	OEMName         [8]byte
	BytesPerSector  uint16
	SectorsPerClus  uint8
	ReservedSectors uint16
	NumFATs         uint8
	RootEntryCount  uint16
	TotSec16        uint16
	Media           uint8
	FATSz16         uint16
	SectorsPerTrack uint16
	NumHeads        uint16
	HiddenSectors   uint32
	TotSec32        uint32
	DriveNumber     uint8
	NTReserved      uint8
	BootSignature   uint8
	VolumeID        uint32
	VolumeLabel     [11]byte
	FileSystemType  [8]byte
}

// BootSector is the processed form of the BPB: the raw fields plus every
// derived layout quantity the rest of the engine needs.
type BootSector struct {
	RawBootSector

	BytesPerCluster   uint
	FATStartSector    SectorID
	FATSizeBytes      uint
	RootStartSector   SectorID
	RootSectorCount   uint
	DataStartSector   SectorID
	TotalClusters     uint
	DirentsPerCluster int
	Bootable          bool
}

func (b *BootSector) totalSectors() uint32 {
	if b.TotSec16 != 0 {
		return uint32(b.TotSec16)
	}
	return b.TotSec32
}

// le16/le32 decode little-endian integers byte-wise so the result is
// identical regardless of host byte order or struct packing.
func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// ParseBootSector decodes the 512-byte boot sector of an image into a
// BootSector, deriving the FAT/root/data region layout from the BPB fields.
func ParseBootSector(sector []byte) (*BootSector, error) {
	if len(sector) < SectorSize {
		return nil, ErrIOFailed.WithMessage(
			fmt.Sprintf("boot sector must be %d bytes, got %d", SectorSize, len(sector)))
	}

	raw := RawBootSector{
		BytesPerSector:  le16(sector[11:13]),
		SectorsPerClus:  sector[13],
		ReservedSectors: le16(sector[14:16]),
		NumFATs:         sector[16],
		RootEntryCount:  le16(sector[17:19]),
		TotSec16:        le16(sector[19:21]),
		Media:           sector[21],
		FATSz16:         le16(sector[22:24]),
		SectorsPerTrack: le16(sector[24:26]),
		NumHeads:        le16(sector[26:28]),
		HiddenSectors:   le32(sector[28:32]),
		TotSec32:        le32(sector[32:36]),
		DriveNumber:     sector[36],
		NTReserved:      sector[37],
		BootSignature:   sector[38],
		VolumeID:        le32(sector[39:43]),
	}
	copy(raw.JumpBoot[:], sector[0:3])
	copy(raw.OEMName[:], sector[3:11])
	copy(raw.VolumeLabel[:], sector[43:54])
	copy(raw.FileSystemType[:], sector[54:62])

	if raw.BytesPerSector != SectorSize {
		return nil, ErrIOFailed.WithMessage(
			fmt.Sprintf("unsupported BytesPerSector %d, want %d", raw.BytesPerSector, SectorSize))
	}
	if raw.SectorsPerClus == 0 {
		return nil, ErrIOFailed.WithMessage("SectorsPerCluster must be nonzero")
	}

	rootSectorCount := uint(
		(uint32(raw.RootEntryCount)*DirentSize + uint32(raw.BytesPerSector) - 1) /
			uint32(raw.BytesPerSector))

	fatStart := SectorID(raw.ReservedSectors)
	fatSizeBytes := uint(raw.FATSz16) * uint(raw.BytesPerSector)
	rootStart := fatStart + SectorID(uint(raw.NumFATs)*uint(raw.FATSz16))
	dataStart := rootStart + SectorID(rootSectorCount)

	bytesPerCluster := uint(raw.BytesPerSector) * uint(raw.SectorsPerClus)

	totalSectors := raw.TotSec16
	var totalSectorsU uint
	if totalSectors != 0 {
		totalSectorsU = uint(totalSectors)
	} else {
		totalSectorsU = uint(raw.TotSec32)
	}
	dataSectors := totalSectorsU - uint(dataStart)
	totalClusters := dataSectors / uint(raw.SectorsPerClus)

	boot := &BootSector{
		RawBootSector:     raw,
		BytesPerCluster:   bytesPerCluster,
		FATStartSector:    fatStart,
		FATSizeBytes:      fatSizeBytes,
		RootStartSector:   rootStart,
		RootSectorCount:   rootSectorCount,
		DataStartSector:   dataStart,
		TotalClusters:     totalClusters,
		DirentsPerCluster: int(bytesPerCluster) / DirentSize,
		Bootable:          sector[510] == 0x55 && sector[511] == 0xAA,
	}
	return boot, nil
}

// FirstSectorOfCluster returns the logical sector number at which cluster
// `cluster` (>= 2) begins.
func (b *BootSector) FirstSectorOfCluster(cluster ClusterID) SectorID {
	return b.DataStartSector + SectorID(uint(cluster-FirstDataCluster)*uint(b.SectorsPerClus))
}
