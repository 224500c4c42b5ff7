// Package fat12file implements whole-file I/O: reading a file's full
// content by walking its cluster chain, and overwriting a file's content by
// reallocating a chain sized to fit the new data.
package fat12file

import (
	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12alloc"
	"github.com/gofat12/fat12edit/fat12dir"
	"github.com/gofat12/fat12edit/fat12fat"
)

// ReadAll reads every byte of a file's content by walking its cluster chain
// cluster by cluster, returning exactly `entry.Size` bytes even though the
// last cluster is only partially used. A zero-length file (FirstCluster ==
// 0) reads as zero bytes without walking any chain.
func ReadAll(img *fat12.Image, boot *fat12.BootSector, fat *fat12fat.Table, entry fat12dir.Entry) ([]byte, error) {
	if entry.Size == 0 || entry.FirstCluster == 0 {
		return nil, nil
	}

	clusters, _, err := fat.Chain(entry.FirstCluster)
	if err != nil {
		return nil, err
	}

	needed := (uint(entry.Size) + boot.BytesPerCluster - 1) / boot.BytesPerCluster
	if uint(len(clusters)) != needed {
		return nil, fat12.ErrInconsistent.WithMessage(
			"file's cluster chain length does not match its recorded size")
	}

	out := make([]byte, 0, entry.Size)
	remaining := uint(entry.Size)
	for _, cluster := range clusters {
		sector := boot.FirstSectorOfCluster(cluster)
		data, err := img.ReadSectors(sector, uint(boot.BytesPerCluster)/fat12.SectorSize)
		if err != nil {
			return nil, err
		}
		take := boot.BytesPerCluster
		if remaining < take {
			take = remaining
		}
		out = append(out, data[:take]...)
		remaining -= take
		if remaining == 0 {
			break
		}
	}
	return out, nil
}

// WriteAll replaces a file's entire content. It frees the file's existing
// chain (if any), allocates a fresh chain sized to hold `data`, and writes
// the bytes into it; the last cluster is left zero-padded past the data's
// end by the allocator's zero-fill. Returns the new FirstCluster and size to
// store back into the file's directory entry.
func WriteAll(img *fat12.Image, boot *fat12.BootSector, fat *fat12fat.Table, alloc *fat12alloc.Allocator, oldHead fat12.ClusterID, data []byte) (fat12.ClusterID, uint32, error) {
	if oldHead != 0 {
		if err := alloc.FreeChain(oldHead); err != nil {
			return 0, 0, err
		}
	}

	if len(data) == 0 {
		return 0, 0, nil
	}

	needed := (uint(len(data)) + boot.BytesPerCluster - 1) / boot.BytesPerCluster
	head, err := alloc.AllocateChain(needed, 0)
	if err != nil {
		return 0, 0, err
	}

	clusters, _, err := fat.Chain(head)
	if err != nil {
		return 0, 0, err
	}

	offset := 0
	for _, cluster := range clusters {
		end := offset + int(boot.BytesPerCluster)
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		if len(chunk) > 0 {
			sector := boot.FirstSectorOfCluster(cluster)
			full, err := img.ReadSectors(sector, uint(boot.BytesPerCluster)/fat12.SectorSize)
			if err != nil {
				alloc.FreeChain(head)
				return 0, 0, err
			}
			copy(full, chunk)
			if err := img.WriteSectors(sector, full); err != nil {
				alloc.FreeChain(head)
				return 0, 0, err
			}
		}
		offset = end
	}

	return head, uint32(len(data)), nil
}
