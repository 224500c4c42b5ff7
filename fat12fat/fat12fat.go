// Package fat12fat reads and writes 12-bit cluster entries packed
// three-to-a-pair, and keeps every FAT copy on the image byte-identical.
package fat12fat

import (
	"fmt"

	fat12 "github.com/gofat12/fat12edit"
)

// Table is an in-memory copy of the primary FAT, decoded into one
// ClusterID per slot for convenient access. Writes accumulate here and are
// only pushed out to every FAT copy on the image by Commit.
type Table struct {
	entries []fat12.ClusterID
	boot    *fat12.BootSector
}

// Load decodes the primary FAT (the first of NumFATs copies) out of the
// image into a Table.
func Load(img *fat12.Image, boot *fat12.BootSector) (*Table, error) {
	raw, err := img.ReadSectors(boot.FATStartSector, uint(boot.FATSz16))
	if err != nil {
		return nil, err
	}

	totalEntries := boot.TotalClusters + 2 // clusters 0 and 1 are reserved
	entries := make([]fat12.ClusterID, totalEntries)
	for i := uint(0); i < totalEntries; i += 2 {
		b0, b1, b2 := byteTriple(raw, i)
		entries[i] = fat12.ClusterID(uint16(b0) | (uint16(b1&0x0F) << 8))
		if i+1 < totalEntries {
			entries[i+1] = fat12.ClusterID((uint16(b1) >> 4) | (uint16(b2) << 4))
		}
	}
	return &Table{entries: entries, boot: boot}, nil
}

// byteTriple returns the three packed bytes encoding entries 2k and 2k+1,
// where k = index/2.
func byteTriple(raw []byte, index uint) (byte, byte, byte) {
	pairStart := (index / 2) * 3
	return raw[pairStart], raw[pairStart+1], raw[pairStart+2]
}

// Get returns the value stored at cluster index `index`.
func (t *Table) Get(index fat12.ClusterID) (fat12.ClusterID, error) {
	if err := t.checkRange(index); err != nil {
		return 0, err
	}
	return t.entries[index], nil
}

// Set stores `value` at cluster index `index`. The change is only
// reflected on the image once Commit is called.
func (t *Table) Set(index fat12.ClusterID, value fat12.ClusterID) error {
	if err := t.checkRange(index); err != nil {
		return err
	}
	t.entries[index] = value
	return nil
}

func (t *Table) checkRange(index fat12.ClusterID) error {
	if index < 2 || uint(index) >= uint(len(t.entries)) {
		return fat12.ErrInconsistent.WithMessage(
			fmt.Sprintf("cluster index %d out of range [2, %d)", index, len(t.entries)))
	}
	return nil
}

// TotalClusters returns the number of addressable data clusters (index 2
// and up).
func (t *Table) TotalClusters() uint {
	return t.boot.TotalClusters
}

// Commit serializes the in-memory table and writes the identical bytes to
// every one of NumFATs copies on the image, keeping all FAT copies
// byte-identical.
func (t *Table) Commit(img *fat12.Image) error {
	packed := t.pack()

	for copyIdx := uint(0); copyIdx < uint(t.boot.NumFATs); copyIdx++ {
		start := t.boot.FATStartSector + fat12.SectorID(copyIdx*uint(t.boot.FATSz16))
		if err := img.WriteSectors(start, packed); err != nil {
			return err
		}
	}
	return nil
}

// pack re-encodes the in-memory table into the packed on-disk byte layout,
// padded up to a whole number of sectors.
func (t *Table) pack() []byte {
	out := make([]byte, t.boot.FATSizeBytes)
	for i := uint(0); i < uint(len(t.entries)); i += 2 {
		v0 := uint16(t.entries[i])
		var v1 uint16
		if i+1 < uint(len(t.entries)) {
			v1 = uint16(t.entries[i+1])
		}
		pairStart := (i / 2) * 3
		out[pairStart] = byte(v0 & 0xFF)
		out[pairStart+1] = byte((v0>>8)&0x0F) | byte((v1&0x0F)<<4)
		out[pairStart+2] = byte(v1 >> 4)
	}
	return out
}

// ChainLength walks the chain starting at `head` and returns the number of
// clusters in it, failing with ErrInconsistent on an invalid (free, bad or
// out-of-range) link.
func (t *Table) ChainLength(head fat12.ClusterID) (uint, error) {
	_, count, err := t.Chain(head)
	return count, err
}

// Chain walks the chain starting at `head` and returns every cluster in it,
// in order, not including the EOC marker itself.
func (t *Table) Chain(head fat12.ClusterID) ([]fat12.ClusterID, uint, error) {
	var clusters []fat12.ClusterID
	current := head
	for {
		if fat12.IsEndOfChain(current) {
			return clusters, uint(len(clusters)), nil
		}
		if fat12.IsFreeCluster(current) || fat12.IsBadCluster(current) {
			return clusters, uint(len(clusters)),
				fat12.ErrInconsistent.WithMessage(
					fmt.Sprintf("chain from cluster %d hit invalid link 0x%03X", head, current))
		}
		clusters = append(clusters, current)

		next, err := t.Get(current)
		if err != nil {
			return clusters, uint(len(clusters)), err
		}
		current = next
	}
}
