package fat12alloc_test

import (
	"testing"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12alloc"
	"github.com/gofat12/fat12edit/fat12fat"
	"github.com/gofat12/fat12edit/fat12test"
	"github.com/stretchr/testify/require"
)

func openAllocator(t *testing.T) (*fat12.Image, *fat12.BootSector, *fat12fat.Table, *fat12alloc.Allocator) {
	t.Helper()
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)
	alloc, err := fat12alloc.New(img, boot, table)
	require.NoError(t, err)
	return img, boot, table, alloc
}

// Allocating k clusters from a fresh allocator should yield exactly
// 2..2+k-1 in order (first-fit over an all-free FAT).
func TestAllocateChain_FirstFit(t *testing.T) {
	_, boot, table, alloc := openAllocator(t)

	head, err := alloc.AllocateChain(3, 0)
	require.NoError(t, err)
	require.Equal(t, fat12.FirstDataCluster, head)
	chain, _, err := table.Chain(head)
	require.NoError(t, err)
	require.Equal(t, []fat12.ClusterID{2, 3, 4}, chain)
	require.Equal(t, boot.TotalClusters-3, alloc.FreeCount())
}

func TestAllocateChain_ZeroFillsNewClusters(t *testing.T) {
	img, boot, _, alloc := openAllocator(t)

	head, err := alloc.AllocateChain(1, 0)
	require.NoError(t, err)

	sector := boot.FirstSectorOfCluster(head)
	data, err := img.ReadSectors(sector, uint(boot.BytesPerCluster)/fat12.SectorSize)
	require.NoError(t, err)
	for _, b := range data {
		require.Zero(t, b)
	}
}

func TestAllocateChain_ChainExtension(t *testing.T) {
	_, _, table, alloc := openAllocator(t)

	head, err := alloc.AllocateChain(1, 0)
	require.NoError(t, err)

	_, err = alloc.AllocateChain(1, head)
	require.NoError(t, err)

	chain, length, err := table.Chain(head)
	require.NoError(t, err)
	require.Equal(t, uint(2), length)
	require.Len(t, chain, 2)
}

func TestAllocateChain_InsufficientSpaceLeavesFATUnmodified(t *testing.T) {
	img, boot, _, alloc := openAllocator(t)

	before, err := img.ReadSectors(boot.FATStartSector, uint(boot.FATSz16))
	require.NoError(t, err)

	_, err = alloc.AllocateChain(boot.TotalClusters+1, 0)
	require.ErrorIs(t, err, fat12.ErrNoSpace)

	after, err := img.ReadSectors(boot.FATStartSector, uint(boot.FATSz16))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestFreeChain_ReturnsClustersToPool(t *testing.T) {
	_, boot, _, alloc := openAllocator(t)

	head, err := alloc.AllocateChain(2, 0)
	require.NoError(t, err)
	require.Equal(t, boot.TotalClusters-2, alloc.FreeCount())

	require.NoError(t, alloc.FreeChain(head))
	require.Equal(t, boot.TotalClusters, alloc.FreeCount())
}
