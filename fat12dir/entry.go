// Package fat12dir implements directory scanning, name/path resolution,
// and entry mutation: iterating a directory's entries, resolving a name or
// path to an entry plus its write-back location, and appending/deleting
// entries.
package fat12dir

import (
	"encoding/binary"
	"time"

	"github.com/noxer/bytewriter"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12name"
)

// RawEntry is the packed 32-byte on-disk directory entry layout.
type RawEntry struct {
	Name         [8]byte
	Ext          [3]byte
	Attr         uint8
	Reserved     [10]byte
	WriteTime    uint16
	WriteDate    uint16
	FirstCluster uint16
	FileSize     uint32
}

// Encode packs a RawEntry into its 32-byte on-disk form, writing each field
// in order through a bytewriter so the field order here is exactly the
// wire order rather than a set of independently-computed offsets.
func (r *RawEntry) Encode() [fat12.DirentSize]byte {
	var out [fat12.DirentSize]byte
	w := bytewriter.New(out[:])
	w.Write(r.Name[:])
	w.Write(r.Ext[:])
	w.Write([]byte{r.Attr})
	w.Write(r.Reserved[:])
	binary.Write(w, binary.LittleEndian, r.WriteTime)
	binary.Write(w, binary.LittleEndian, r.WriteDate)
	binary.Write(w, binary.LittleEndian, r.FirstCluster)
	binary.Write(w, binary.LittleEndian, r.FileSize)
	return out
}

// DecodeRawEntry unpacks 32 bytes into a RawEntry.
func DecodeRawEntry(data []byte) RawEntry {
	var r RawEntry
	copy(r.Name[:], data[0:8])
	copy(r.Ext[:], data[8:11])
	r.Attr = data[11]
	copy(r.Reserved[:], data[12:22])
	r.WriteTime = binary.LittleEndian.Uint16(data[22:24])
	r.WriteDate = binary.LittleEndian.Uint16(data[24:26])
	r.FirstCluster = binary.LittleEndian.Uint16(data[26:28])
	r.FileSize = binary.LittleEndian.Uint32(data[28:32])
	return r
}

// ShortName returns the packed 11-byte short name (Name + Ext).
func (r *RawEntry) ShortName() [11]byte {
	var out [11]byte
	copy(out[0:8], r.Name[:])
	copy(out[8:11], r.Ext[:])
	return out
}

// SetShortName stores an 11-byte short name into Name/Ext.
func (r *RawEntry) SetShortName(short [11]byte) {
	copy(r.Name[:], short[0:8])
	copy(r.Ext[:], short[8:11])
}

// Entry is the processed, user-facing form of a directory entry: a decoded
// name, attribute flags, and the first cluster/size pair needed to read its
// content.
type Entry struct {
	Name         string
	Attr         uint8
	FirstCluster fat12.ClusterID
	Size         uint32
	WriteTime    time.Time
}

func (e *Entry) IsDir() bool         { return e.Attr&fat12.AttrDirectory != 0 }
func (e *Entry) IsVolumeLabel() bool { return e.Attr&fat12.AttrVolumeLabel != 0 }

// EncodeTimestamp packs a time.Time into FAT's date/time fields: time is
// hour<<11 | minute<<5 | (second/2), date is (year-1980)<<9 | month<<5 |
// day.
func EncodeTimestamp(t time.Time) (date uint16, timeField uint16) {
	year := t.Year()
	if year < 1980 {
		year = 1980
	}
	date = uint16((year-1980)<<9) | uint16(t.Month())<<5 | uint16(t.Day())
	timeField = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, timeField
}

// DecodeTimestamp unpacks a FAT date/time pair into a time.Time.
func DecodeTimestamp(date, timeField uint16) time.Time {
	year := 1980 + int(date>>9)
	month := int((date >> 5) & 0x0F)
	day := int(date & 0x1F)
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	hour := int(timeField >> 11)
	minute := int((timeField >> 5) & 0x3F)
	second := int(timeField&0x1F) * 2
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
}

// toEntry converts a RawEntry into its processed Entry form.
func toEntry(raw RawEntry) Entry {
	name := fat12name.FromShort(raw.ShortName())
	return Entry{
		Name:         name,
		Attr:         raw.Attr,
		FirstCluster: fat12.ClusterID(raw.FirstCluster),
		Size:         raw.FileSize,
		WriteTime:    DecodeTimestamp(raw.WriteDate, raw.WriteTime),
	}
}
