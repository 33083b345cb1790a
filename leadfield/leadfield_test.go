package leadfield

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/idossha/ti-opt-core/core"
	"github.com/stretchr/testify/require"
)

// writeTestContainer builds a minimal valid TILF file for the given shapes
// and returns its path. Mirrors the §6 binary layout directly rather than
// going through any public encoder — the loader is read-only by design.
func writeTestContainer(t *testing.T, dir string, e, n int, breakVolume bool, dupLabel bool) string {
	t.Helper()
	path := filepath.Join(dir, "leadfield.tilf")

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)

	sections := []func(*bytes.Buffer){}

	writeSection := func(b *bytes.Buffer, name string, dt dtype, dims []uint64, payload func(*bytes.Buffer)) {
		var body bytes.Buffer
		payload(&body)

		binary.Write(b, binary.LittleEndian, uint16(len(name)))
		b.WriteString(name)
		binary.Write(b, binary.LittleEndian, uint8(dt))
		binary.Write(b, binary.LittleEndian, uint8(len(dims)))
		for _, d := range dims {
			binary.Write(b, binary.LittleEndian, d)
		}
		binary.Write(b, binary.LittleEndian, uint64(body.Len()))
		b.Write(body.Bytes())
	}

	sections = append(sections, func(b *bytes.Buffer) {
		writeSection(b, "/leadfield", dtypeFloat32, []uint64{uint64(e), uint64(n), 3}, func(body *bytes.Buffer) {
			for i := 0; i < e*n*3; i++ {
				binary.Write(body, binary.LittleEndian, float32(i)*0.01)
			}
		})
	})
	sections = append(sections, func(b *bytes.Buffer) {
		writeSection(b, "/positions", dtypeFloat64, []uint64{uint64(n), 3}, func(body *bytes.Buffer) {
			for i := 0; i < n; i++ {
				binary.Write(body, binary.LittleEndian, float64(i))
				binary.Write(body, binary.LittleEndian, 0.0)
				binary.Write(body, binary.LittleEndian, 0.0)
			}
		})
	})
	sections = append(sections, func(b *bytes.Buffer) {
		writeSection(b, "/volumes", dtypeFloat64, []uint64{uint64(n)}, func(body *bytes.Buffer) {
			for i := 0; i < n; i++ {
				v := 1.0
				if breakVolume && i == 0 {
					v = 0.0
				}
				binary.Write(body, binary.LittleEndian, v)
			}
		})
	})
	sections = append(sections, func(b *bytes.Buffer) {
		writeSection(b, "/electrodes/labels", dtypeString, []uint64{uint64(e)}, func(body *bytes.Buffer) {
			for i := 0; i < e; i++ {
				label := "E" + string(rune('A'+i))
				if dupLabel && i == 1 {
					label = "E" + string(rune('A'))
				}
				binary.Write(body, binary.LittleEndian, uint16(len(label)))
				body.WriteString(label)
			}
		})
	})
	sections = append(sections, func(b *bytes.Buffer) {
		writeSection(b, "/electrodes/positions", dtypeFloat64, []uint64{uint64(e), 3}, func(body *bytes.Buffer) {
			for i := 0; i < e; i++ {
				binary.Write(body, binary.LittleEndian, float64(i))
				binary.Write(body, binary.LittleEndian, float64(i))
				binary.Write(body, binary.LittleEndian, 0.0)
			}
		})
	})
	sections = append(sections, func(b *bytes.Buffer) {
		writeSection(b, "/tissue_tags", dtypeInt32, []uint64{uint64(n)}, func(body *bytes.Buffer) {
			for i := 0; i < n; i++ {
				binary.Write(body, binary.LittleEndian, int32(2))
			}
		})
	})

	binary.Write(&buf, binary.LittleEndian, uint32(len(sections)))
	for _, s := range sections {
		s(&buf)
	}

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, 4, 10, false, false)

	lf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, lf.E)
	require.Equal(t, 10, lf.N)
	require.Len(t, lf.Electrodes, 4)
	require.Equal(t, "EA", lf.Electrodes[0].Label)
	for _, v := range lf.Volumes {
		require.Greater(t, v, 0.0)
	}
}

func TestLoad_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tilf")
	require.NoError(t, os.WriteFile(path, []byte("NOPE0000"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path.tilf")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestLoad_ZeroVolumeIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, 4, 10, true, false)

	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestLoad_DuplicateLabelIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, 4, 10, false, true)

	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestLoad_TooFewElectrodes(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, 1, 10, false, false)

	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidShape)
}

func TestElectrodeVec(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, 4, 10, false, false)
	lf, err := Load(path)
	require.NoError(t, err)

	v := lf.ElectrodeVec(1, 2)
	base := (1*lf.N + 2) * 3
	require.InDelta(t, float64(lf.L[base]), v[0], 1e-9)
}

func TestNearestElectrode(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, 4, 10, false, false)
	lf, err := Load(path)
	require.NoError(t, err)

	nearest := lf.NearestElectrode(Vec3{2.1, 2.1, 0})
	require.Equal(t, "EC", nearest.Label)
}
