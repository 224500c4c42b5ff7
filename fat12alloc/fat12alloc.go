// Package fat12alloc allocates and frees cluster chains, zero-filling
// newly allocated data clusters, and keeps a bitmap ledger of free
// clusters alongside the FAT so allocation doesn't need to rescan the
// whole table on every call.
package fat12alloc

import (
	"github.com/boljen/go-bitmap"
	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12fat"
)

// Allocator tracks which data clusters are free using a bitmap kept in
// sync with the FAT table, so AllocateChain can find a first-fit run of
// free clusters in a single linear scan rather than repeatedly re-deriving
// free/used state from FAT entries.
type Allocator struct {
	fat     *fat12fat.Table
	img     *fat12.Image
	boot    *fat12.BootSector
	freeMap bitmap.Bitmap // indexed by cluster number - 2
}

// New builds an Allocator over an already-loaded FAT table, initializing
// the free-cluster bitmap by scanning every cluster slot once.
func New(img *fat12.Image, boot *fat12.BootSector, table *fat12fat.Table) (*Allocator, error) {
	a := &Allocator{
		fat:     table,
		img:     img,
		boot:    boot,
		freeMap: bitmap.New(int(boot.TotalClusters)),
	}

	for i := uint(0); i < boot.TotalClusters; i++ {
		cluster := fat12.ClusterID(i) + fat12.FirstDataCluster
		value, err := table.Get(cluster)
		if err != nil {
			return nil, err
		}
		a.freeMap.Set(int(i), !fat12.IsFreeCluster(value))
	}
	return a, nil
}

func (a *Allocator) markUsed(cluster fat12.ClusterID, used bool) {
	a.freeMap.Set(int(cluster-fat12.FirstDataCluster), used)
}

func (a *Allocator) isFree(cluster fat12.ClusterID) bool {
	return !a.freeMap.Get(int(cluster - fat12.FirstDataCluster))
}

// AllocateChain scans the FAT in ascending cluster order for the first
// `count` free clusters, stitches them into a chain terminated by EOC, and
// zero-fills each newly allocated data cluster before committing the
// updated FAT to every copy on the image. If `preCluster` is nonzero, the
// new chain is also linked onto the end of an existing one (chain
// extension). Either way the first newly allocated cluster is returned.
//
// On insufficient space the FAT and image are left unmodified and
// ErrNoSpace is returned.
func (a *Allocator) AllocateChain(count uint, preCluster fat12.ClusterID) (fat12.ClusterID, error) {
	if count == 0 {
		return 0, fat12.ErrIOFailed.WithMessage("cannot allocate a chain of zero clusters")
	}

	found := make([]fat12.ClusterID, 0, count)
	for i := uint(0); i < a.boot.TotalClusters && uint(len(found)) < count; i++ {
		cluster := fat12.ClusterID(i) + fat12.FirstDataCluster
		if a.isFree(cluster) {
			found = append(found, cluster)
		}
	}
	if uint(len(found)) < count {
		return 0, fat12.ErrNoSpace.WithMessage(
			"cluster allocator cannot satisfy the request")
	}

	for i, cluster := range found {
		var next fat12.ClusterID
		if i == len(found)-1 {
			next = fat12.ClusterEOCHigh
		} else {
			next = found[i+1]
		}
		if err := a.fat.Set(cluster, next); err != nil {
			return 0, err
		}
	}

	if preCluster != 0 {
		if err := a.fat.Set(preCluster, found[0]); err != nil {
			return 0, err
		}
	}

	zero := make([]byte, a.boot.BytesPerCluster)
	for _, cluster := range found {
		sector := a.boot.FirstSectorOfCluster(cluster)
		if err := a.img.WriteSectors(sector, zero); err != nil {
			return 0, err
		}
	}

	if err := a.fat.Commit(a.img); err != nil {
		return 0, err
	}

	for _, cluster := range found {
		a.markUsed(cluster, true)
	}

	return found[0], nil
}

// FreeChain walks the chain starting at `head`, writing the free sentinel
// (0x000) at every entry, and commits the change to every FAT copy. It's
// safe to call on an already EOC-terminated chain.
func (a *Allocator) FreeChain(head fat12.ClusterID) error {
	clusters, _, err := a.fat.Chain(head)
	if err != nil {
		return err
	}

	for _, cluster := range clusters {
		if err := a.fat.Set(cluster, fat12.ClusterFree); err != nil {
			return err
		}
	}
	if err := a.fat.Commit(a.img); err != nil {
		return err
	}
	for _, cluster := range clusters {
		a.markUsed(cluster, false)
	}
	return nil
}

// FreeCount returns the number of clusters still marked free, for
// diagnostics and tests.
func (a *Allocator) FreeCount() uint {
	count := uint(0)
	for i := uint(0); i < a.boot.TotalClusters; i++ {
		if a.isFree(fat12.ClusterID(i) + fat12.FirstDataCluster) {
			count++
		}
	}
	return count
}
