package audio

import (
	"bytes"
	"encoding/binary"
	"os"

	gomp4 "github.com/abema/go-mp4"
	"github.com/pkg/errors"

	ioutils "github.com/handiism/trackyear/internal/io"
)

// iTunes atom type names. The © symbol is 0xA9 in MacRoman.
var (
	atomTitle  = [4]byte{0xA9, 'n', 'a', 'm'} // ©nam
	atomArtist = [4]byte{0xA9, 'A', 'R', 'T'} // ©ART
	atomYear   = [4]byte{0xA9, 'd', 'a', 'y'} // ©day
)

// dataTypeUTF8 is the well-known type of text values in a data box.
const dataTypeUTF8 = 1

var (
	boxTypeMoov = gomp4.BoxTypeMoov()
	boxTypeUdta = gomp4.BoxTypeUdta()
	boxTypeMeta = gomp4.BoxTypeMeta()
	boxTypeIlst = gomp4.BoxTypeIlst()
	boxTypeMdat = gomp4.BoxTypeMdat()
)

// errNoMoov is returned when a file has no movie box.
var errNoMoov = errors.New("moov box not found")

// readMP4Tags reads ©nam, ©ART and ©day from moov/udta/meta/ilst.
func readMP4Tags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, errors.WithStack(err)
	}
	defer f.Close()

	var tags Tags
	sawMoov := false

	_, err = gomp4.ReadBoxStructure(f, func(h *gomp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case boxTypeMoov:
			sawMoov = true
			return h.Expand()
		case boxTypeUdta, boxTypeMeta, boxTypeIlst:
			return h.Expand()
		}

		if len(h.Path) < 2 || h.Path[len(h.Path)-2] != boxTypeIlst {
			return nil, nil
		}

		var target *string
		switch [4]byte(h.BoxInfo.Type) {
		case atomTitle:
			target = &tags.Title
		case atomArtist:
			target = &tags.Artist
		case atomYear:
			target = &tags.Year
		default:
			return nil, nil
		}

		var buf bytes.Buffer
		if _, err := h.ReadData(&buf); err != nil {
			return nil, errors.WithStack(err)
		}
		if v, ok := dataBoxText(buf.Bytes()); ok {
			*target = v
		}
		return nil, nil
	})
	if err != nil {
		return Tags{}, errors.WithStack(err)
	}
	if !sawMoov {
		return Tags{}, errors.WithStack(errNoMoov)
	}
	return tags, nil
}

// dataBoxText extracts the text value from the payload of an ilst item.
//
// The payload holds a data box: [size][data][version 1][type 3][locale 4][value].
func dataBoxText(item []byte) (string, bool) {
	offset := 0
	for offset+8 <= len(item) {
		size := int(binary.BigEndian.Uint32(item[offset:]))
		if size < 8 || offset+size > len(item) {
			return "", false
		}
		if string(item[offset+4:offset+8]) == "data" {
			content := item[offset+8 : offset+size]
			if len(content) < 8 {
				return "", false
			}
			return string(content[8:]), true
		}
		offset += size
	}
	return "", false
}

// writeMP4Year replaces the ©day atom of an M4A file, creating the
// udta/meta/ilst chain when absent. Chunk offsets are shifted when the
// movie box grows or shrinks in front of the media data.
func writeMP4Year(path, year string) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}

	output, err := setMP4Year(input, year)
	if err != nil {
		return err
	}

	if err := ioutils.WriteFileAtomic(path, output); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

type rootBox struct {
	typ    gomp4.BoxType
	offset uint64
	size   uint64
	header uint64
}

// setMP4Year returns input with ©day set to year.
func setMP4Year(input []byte, year string) ([]byte, error) {
	var roots []rootBox
	_, err := gomp4.ReadBoxStructure(bytes.NewReader(input), func(h *gomp4.ReadHandle) (interface{}, error) {
		roots = append(roots, rootBox{
			typ:    h.BoxInfo.Type,
			offset: h.BoxInfo.Offset,
			size:   h.BoxInfo.Size,
			header: h.BoxInfo.HeaderSize,
		})
		return nil, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	moovIdx := -1
	for i, b := range roots {
		if b.typ == boxTypeMoov {
			moovIdx = i
			break
		}
	}
	if moovIdx < 0 {
		return nil, errors.WithStack(errNoMoov)
	}

	moov := roots[moovIdx]
	content := input[moov.offset+moov.header : moov.offset+moov.size]
	newContent := rebuildMoovContent(content, year)

	delta := int64(8+len(newContent)) - int64(moov.size)
	if delta != 0 && mediaFollows(roots, moovIdx) {
		if err := shiftChunkOffsets(newContent, delta); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	out.Grow(len(input) + int(delta))
	for i, b := range roots {
		if i == moovIdx {
			out.Write(buildBox("moov", newContent))
			continue
		}
		out.Write(input[b.offset : b.offset+b.size])
	}
	return out.Bytes(), nil
}

func mediaFollows(roots []rootBox, moovIdx int) bool {
	for _, b := range roots[moovIdx+1:] {
		if b.typ == boxTypeMdat {
			return true
		}
	}
	return false
}

// rebuildMoovContent rewrites the udta child of a moov payload.
func rebuildMoovContent(content []byte, year string) []byte {
	var result bytes.Buffer
	found := false
	walkBoxes(content, func(typ string, box []byte) {
		if typ == "udta" && !found {
			found = true
			result.Write(buildBox("udta", rebuildUdtaContent(box[8:], year)))
			return
		}
		result.Write(box)
	}, func(rest []byte) { result.Write(rest) })

	if !found {
		result.Write(buildBox("udta", rebuildUdtaContent(nil, year)))
	}
	return result.Bytes()
}

// rebuildUdtaContent rewrites the meta child of a udta payload.
func rebuildUdtaContent(content []byte, year string) []byte {
	var result bytes.Buffer
	found := false
	walkBoxes(content, func(typ string, box []byte) {
		if typ == "meta" && !found {
			found = true
			result.Write(rebuildMeta(box, year))
			return
		}
		result.Write(box)
	}, func(rest []byte) { result.Write(rest) })

	if !found {
		result.Write(newMetaBox(year))
	}
	return result.Bytes()
}

// rebuildMeta rewrites the ilst child of a meta box. Both the ISO full box
// form and the QuickTime form without version/flags are accepted.
func rebuildMeta(metaBox []byte, year string) []byte {
	if len(metaBox) < 12 {
		return newMetaBox(year)
	}

	var prefix []byte
	content := metaBox[8:]
	if len(metaBox) < 16 || string(metaBox[12:16]) != "hdlr" {
		prefix = metaBox[8:12]
		content = metaBox[12:]
	}

	var result bytes.Buffer
	result.Write(prefix)
	found := false
	walkBoxes(content, func(typ string, box []byte) {
		if typ == "ilst" && !found {
			found = true
			result.Write(buildBox("ilst", rebuildIlstContent(box[8:], year)))
			return
		}
		result.Write(box)
	}, func(rest []byte) { result.Write(rest) })

	if !found {
		result.Write(buildBox("ilst", rebuildIlstContent(nil, year)))
	}
	return buildBox("meta", result.Bytes())
}

// rebuildIlstContent drops any ©day item and appends the new one.
func rebuildIlstContent(content []byte, year string) []byte {
	var result bytes.Buffer
	walkBoxes(content, func(typ string, box []byte) {
		if typ == string(atomYear[:]) {
			return
		}
		result.Write(box)
	}, func(rest []byte) { result.Write(rest) })
	result.Write(buildItunesTextAtom(atomYear, year))
	return result.Bytes()
}

// newMetaBox builds a meta full box with an mdir handler and an ilst
// holding only the year.
func newMetaBox(year string) []byte {
	hdlr := make([]byte, 4+4+4+12+1)
	copy(hdlr[8:12], "mdir")
	copy(hdlr[12:16], "appl")

	var content bytes.Buffer
	content.Write([]byte{0, 0, 0, 0})
	content.Write(buildBox("hdlr", hdlr))
	content.Write(buildBox("ilst", buildItunesTextAtom(atomYear, year)))
	return buildBox("meta", content.Bytes())
}

// shiftChunkOffsets adds delta to every stco/co64 entry under
// trak/mdia/minf/stbl of a moov payload, in place.
func shiftChunkOffsets(moovContent []byte, delta int64) error {
	var walkErr error
	var visit func(content []byte)
	visit = func(content []byte) {
		walkBoxes(content, func(typ string, box []byte) {
			if walkErr != nil {
				return
			}
			switch typ {
			case "trak", "mdia", "minf", "stbl":
				visit(box[8:])
			case "stco":
				walkErr = patchOffsets(box[8:], 4, delta)
			case "co64":
				walkErr = patchOffsets(box[8:], 8, delta)
			}
		}, func([]byte) {})
	}
	visit(moovContent)
	return walkErr
}

// patchOffsets rewrites a chunk offset table: [version/flags 4][count 4][entries].
func patchOffsets(payload []byte, width int, delta int64) error {
	if len(payload) < 8 {
		return errors.New("chunk offset box too short")
	}
	count := int(binary.BigEndian.Uint32(payload[4:8]))
	entries := payload[8:]
	if len(entries) < count*width {
		return errors.New("chunk offset table truncated")
	}
	for i := 0; i < count; i++ {
		p := entries[i*width:]
		if width == 4 {
			v := int64(binary.BigEndian.Uint32(p)) + delta
			if v < 0 || v > 0xFFFFFFFF {
				return errors.New("chunk offset out of range")
			}
			binary.BigEndian.PutUint32(p, uint32(v))
		} else {
			v := int64(binary.BigEndian.Uint64(p)) + delta
			if v < 0 {
				return errors.New("chunk offset out of range")
			}
			binary.BigEndian.PutUint64(p, uint64(v))
		}
	}
	return nil
}

// walkBoxes calls fn for each well-formed child box in content and rest
// with any trailing bytes that do not form a box.
func walkBoxes(content []byte, fn func(typ string, box []byte), rest func([]byte)) {
	offset := 0
	for offset+8 <= len(content) {
		size := int(binary.BigEndian.Uint32(content[offset:]))
		if size < 8 || offset+size > len(content) {
			break
		}
		fn(string(content[offset+4:offset+8]), content[offset:offset+size])
		offset += size
	}
	if offset < len(content) {
		rest(content[offset:])
	}
}

// buildItunesTextAtom builds an ilst item holding a UTF-8 data box.
func buildItunesTextAtom(atomType [4]byte, value string) []byte {
	var data bytes.Buffer
	data.WriteByte(0)                            // version
	data.Write([]byte{0, 0, byte(dataTypeUTF8)}) // type
	data.Write([]byte{0, 0, 0, 0})               // locale
	data.WriteString(value)
	return buildBox(string(atomType[:]), buildBox("data", data.Bytes()))
}

// buildBox builds a box with a 32-bit size header.
func buildBox(boxType string, content []byte) []byte {
	buf := make([]byte, 8+len(content))
	binary.BigEndian.PutUint32(buf[0:4], uint32(8+len(content)))
	copy(buf[4:8], boxType)
	copy(buf[8:], content)
	return buf
}
