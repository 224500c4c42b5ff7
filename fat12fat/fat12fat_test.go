package fat12fat_test

import (
	"testing"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12fat"
	"github.com/gofat12/fat12edit/fat12test"
	"github.com/stretchr/testify/require"
)

func TestLoad_FreshImageIsAllFree(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)

	for i := uint(0); i < boot.TotalClusters; i++ {
		value, err := table.Get(fat12.FirstDataCluster + fat12.ClusterID(i))
		require.NoError(t, err)
		require.True(t, fat12.IsFreeCluster(value))
	}
}

func TestSetAndCommit_MirrorsAllFATCopies(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)

	require.NoError(t, table.Set(2, fat12.ClusterEOCHigh))
	require.NoError(t, table.Set(3, 2))
	require.NoError(t, table.Commit(img))

	// After a commit, every FAT region on the image should be byte-identical.
	fat0, err := img.ReadSectors(boot.FATStartSector, uint(boot.FATSz16))
	require.NoError(t, err)
	fat1, err := img.ReadSectors(boot.FATStartSector+fat12.SectorID(boot.FATSz16), uint(boot.FATSz16))
	require.NoError(t, err)
	require.Equal(t, fat0, fat1)

	reloaded, err := fat12fat.Load(img, boot)
	require.NoError(t, err)
	v3, err := reloaded.Get(3)
	require.NoError(t, err)
	require.Equal(t, fat12.ClusterID(2), v3)
}

func TestChain_WalksToEndOfChain(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)

	require.NoError(t, table.Set(2, 3))
	require.NoError(t, table.Set(3, 4))
	require.NoError(t, table.Set(4, fat12.ClusterEOCHigh))

	chain, length, err := table.Chain(2)
	require.NoError(t, err)
	require.Equal(t, uint(3), length)
	require.Equal(t, []fat12.ClusterID{2, 3, 4}, chain)
}

func TestChain_InvalidLinkIsInconsistent(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)

	require.NoError(t, table.Set(2, fat12.ClusterFree))
	_, _, err = table.Chain(2)
	require.ErrorIs(t, err, fat12.ErrInconsistent)
}

func TestGet_OutOfRangeIsInconsistent(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)

	_, err = table.Get(0)
	require.ErrorIs(t, err, fat12.ErrInconsistent)
	_, err = table.Get(1)
	require.ErrorIs(t, err, fat12.ErrInconsistent)
}
