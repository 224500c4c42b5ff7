package fat12file_test

import (
	"testing"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12alloc"
	"github.com/gofat12/fat12edit/fat12dir"
	"github.com/gofat12/fat12edit/fat12file"
	"github.com/gofat12/fat12edit/fat12fat"
	"github.com/gofat12/fat12edit/fat12test"
	"github.com/stretchr/testify/require"
)

// Reading back what was just written should yield identical bytes even
// when the content spans multiple clusters.
func TestWriteAllThenReadAll_RoundTrips(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)
	alloc, err := fat12alloc.New(img, boot, table)
	require.NoError(t, err)

	content := make([]byte, 1500)
	for i := range content {
		content[i] = byte(7*i + 3)
	}

	head, size, err := fat12file.WriteAll(img, boot, table, alloc, 0, content)
	require.NoError(t, err)
	require.EqualValues(t, len(content), size)

	entry := fat12dir.Entry{FirstCluster: head, Size: size}
	readBack, err := fat12file.ReadAll(img, boot, table, entry)
	require.NoError(t, err)
	require.Equal(t, content, readBack)
}

func TestReadAll_EmptyFile(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)

	entry := fat12dir.Entry{FirstCluster: 0, Size: 0}
	data, err := fat12file.ReadAll(img, boot, table, entry)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestReadAll_ChainLongerThanSizeIsInconsistent(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)
	alloc, err := fat12alloc.New(img, boot, table)
	require.NoError(t, err)

	content := make([]byte, boot.BytesPerCluster*2)
	head, _, err := fat12file.WriteAll(img, boot, table, alloc, 0, content)
	require.NoError(t, err)

	// A recorded size that only needs one cluster, but whose chain is
	// actually two clusters long, is inconsistent in either direction.
	entry := fat12dir.Entry{FirstCluster: head, Size: 1}
	_, err = fat12file.ReadAll(img, boot, table, entry)
	require.ErrorIs(t, err, fat12.ErrInconsistent)
}

func TestWriteAll_FreesOldChainBeforeWritingNew(t *testing.T) {
	img, boot := fat12test.NewFixtureImage()
	table, err := fat12fat.Load(img, boot)
	require.NoError(t, err)
	alloc, err := fat12alloc.New(img, boot, table)
	require.NoError(t, err)

	oldHead, _, err := fat12file.WriteAll(img, boot, table, alloc, 0, []byte("hello"))
	require.NoError(t, err)
	freeBefore := alloc.FreeCount()

	_, _, err = fat12file.WriteAll(img, boot, table, alloc, oldHead, []byte("a different, longer string"))
	require.NoError(t, err)

	// Both contents fit in one cluster: the old one is freed, one new one
	// is taken, so the free count is back where it was.
	require.Equal(t, freeBefore, alloc.FreeCount())
}
