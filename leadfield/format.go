package leadfield

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/idossha/ti-opt-core/core"
)

// magic identifies a TI leadfield/atlas container. Version is bumped on any
// incompatible layout change.
var magic = [4]byte{'T', 'I', 'L', 'F'}

const formatVersion = 1

// dtype tags the element type of one section so generic readers (atlas
// label arrays included) can share the same container format.
type dtype uint8

const (
	dtypeFloat32 dtype = iota
	dtypeFloat64
	dtypeInt32
	dtypeString
)

// sectionHeader is the on-disk directory entry for one named dataset.
// Layout: name length (u16) + name bytes, dtype (u8), rank (u8),
// dims ([]u64, rank entries), byte length (u64), then the raw payload.
type sectionHeader struct {
	Name  string
	Type  dtype
	Dims  []uint64
	Bytes uint64
}

// container is the parsed in-memory form of a TILF file: named sections
// keyed by path (e.g. "/leadfield", "/positions").
type container struct {
	sections map[string]sectionPayload
}

type sectionPayload struct {
	header  sectionHeader
	float32 []float32
	float64 []float64
	int32   []int32
	strings []string
}

// readContainer parses the full TILF binary layout from path. Every array
// is fully materialized; the loader does not subset or stream.
func readContainer(path string) (*container, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.Wrap(core.ErrNotFound, "leadfield file %s", path)
		}
		return nil, core.Wrap(core.ErrIO, "open %s: %v", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, core.Wrap(core.ErrInvalidFormat, "read magic: %v", err)
	}
	if gotMagic != magic {
		return nil, core.Wrap(core.ErrInvalidFormat, "bad magic bytes %v", gotMagic)
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, core.Wrap(core.ErrInvalidFormat, "read version: %v", err)
	}
	if version != formatVersion {
		return nil, core.Wrap(core.ErrInvalidFormat, "unsupported version %d", version)
	}

	var numSections uint32
	if err := binary.Read(r, binary.LittleEndian, &numSections); err != nil {
		return nil, core.Wrap(core.ErrInvalidFormat, "read section count: %v", err)
	}

	c := &container{sections: make(map[string]sectionPayload, numSections)}
	for i := uint32(0); i < numSections; i++ {
		hdr, err := readSectionHeader(r)
		if err != nil {
			return nil, err
		}
		payload, err := readSectionPayload(r, hdr)
		if err != nil {
			return nil, err
		}
		c.sections[hdr.Name] = payload
	}
	return c, nil
}

func readSectionHeader(r io.Reader) (sectionHeader, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return sectionHeader{}, core.Wrap(core.ErrInvalidFormat, "read name length: %v", err)
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return sectionHeader{}, core.Wrap(core.ErrInvalidFormat, "read name: %v", err)
	}

	var dt uint8
	if err := binary.Read(r, binary.LittleEndian, &dt); err != nil {
		return sectionHeader{}, core.Wrap(core.ErrInvalidFormat, "read dtype: %v", err)
	}
	var rank uint8
	if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
		return sectionHeader{}, core.Wrap(core.ErrInvalidFormat, "read rank: %v", err)
	}
	dims := make([]uint64, rank)
	for i := range dims {
		if err := binary.Read(r, binary.LittleEndian, &dims[i]); err != nil {
			return sectionHeader{}, core.Wrap(core.ErrInvalidFormat, "read dim %d: %v", i, err)
		}
	}
	var nbytes uint64
	if err := binary.Read(r, binary.LittleEndian, &nbytes); err != nil {
		return sectionHeader{}, core.Wrap(core.ErrInvalidFormat, "read byte length: %v", err)
	}

	return sectionHeader{Name: string(nameBytes), Type: dtype(dt), Dims: dims, Bytes: nbytes}, nil
}

func readSectionPayload(r io.Reader, hdr sectionHeader) (sectionPayload, error) {
	switch hdr.Type {
	case dtypeFloat32:
		n := hdr.Bytes / 4
		vals := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
			return sectionPayload{}, core.Wrap(core.ErrInvalidFormat, "read section %s: %v", hdr.Name, err)
		}
		return sectionPayload{header: hdr, float32: vals}, nil
	case dtypeFloat64:
		n := hdr.Bytes / 8
		vals := make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
			return sectionPayload{}, core.Wrap(core.ErrInvalidFormat, "read section %s: %v", hdr.Name, err)
		}
		return sectionPayload{header: hdr, float64: vals}, nil
	case dtypeInt32:
		n := hdr.Bytes / 4
		vals := make([]int32, n)
		if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
			return sectionPayload{}, core.Wrap(core.ErrInvalidFormat, "read section %s: %v", hdr.Name, err)
		}
		return sectionPayload{header: hdr, int32: vals}, nil
	case dtypeString:
		raw := make([]byte, hdr.Bytes)
		if _, err := io.ReadFull(r, raw); err != nil {
			return sectionPayload{}, core.Wrap(core.ErrInvalidFormat, "read section %s: %v", hdr.Name, err)
		}
		strs, err := decodeStrings(raw, int(hdr.Dims[0]))
		if err != nil {
			return sectionPayload{}, core.Wrap(core.ErrInvalidFormat, "decode strings in %s: %v", hdr.Name, err)
		}
		return sectionPayload{header: hdr, strings: strs}, nil
	default:
		return sectionPayload{}, core.Wrap(core.ErrInvalidFormat, "unknown dtype %d in section %s", hdr.Type, hdr.Name)
	}
}

// decodeStrings splits a length-prefixed string blob (u16 length + utf8
// bytes, repeated count times) into count strings.
func decodeStrings(raw []byte, count int) ([]string, error) {
	out := make([]string, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		if pos+2 > len(raw) {
			return nil, fmt.Errorf("truncated string table at entry %d", i)
		}
		l := int(binary.LittleEndian.Uint16(raw[pos : pos+2]))
		pos += 2
		if pos+l > len(raw) {
			return nil, fmt.Errorf("truncated string body at entry %d", i)
		}
		out = append(out, string(raw[pos:pos+l]))
		pos += l
	}
	return out, nil
}

func (c *container) require(name string) (sectionPayload, error) {
	p, ok := c.sections[name]
	if !ok {
		return sectionPayload{}, core.Wrap(core.ErrMissingField, "missing section %s", name)
	}
	return p, nil
}
