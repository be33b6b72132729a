package store

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"mrouter/pkg/labels"
)

// Binary snapshot format for GraphData: a fast-startup cache so cmd/mrouter
// serve doesn't have to re-query pkg/pgstore and rebuild adjacency/spatial
// indices from scratch on every restart. Same magic-bytes/version/CRC32
// trailer/zero-copy-slice idiom as the teacher's CH snapshot format, adapted
// to this package's node/way shape.
const (
	snapshotMagic   = "MPROUTER"
	snapshotVersion = uint32(1)
)

type snapshotHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumWays  uint32
}

// WriteSnapshot serializes data to path, suitable for a later LoadSnapshot.
func WriteSnapshot(path string, data GraphData) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	hdr := snapshotHeader{
		Version:  snapshotVersion,
		NumNodes: uint32(len(data.Nodes)),
		NumWays:  uint32(len(data.Ways)),
	}
	copy(hdr.Magic[:], snapshotMagic)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	ids := make([]int64, len(data.Nodes))
	lats := make([]float64, len(data.Nodes))
	lons := make([]float64, len(data.Nodes))
	for i, n := range data.Nodes {
		ids[i] = int64(n.Id)
		lats[i] = n.Lat
		lons[i] = n.Lon
	}
	if err := writeInt64Slice(cw, ids); err != nil {
		return fmt.Errorf("write node ids: %w", err)
	}
	if err := writeFloat64Slice(cw, lats); err != nil {
		return fmt.Errorf("write node lats: %w", err)
	}
	if err := writeFloat64Slice(cw, lons); err != nil {
		return fmt.Errorf("write node lons: %w", err)
	}

	for _, w := range data.Ways {
		if err := writeWay(cw, w); err != nil {
			return fmt.Errorf("write way %d: %w", w.Id, err)
		}
	}

	checksum := cw.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// LoadSnapshot reads GraphData previously written by WriteSnapshot,
// rejecting the file if its CRC32 trailer doesn't match.
func LoadSnapshot(path string) (GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return GraphData{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr snapshotHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return GraphData{}, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != snapshotMagic {
		return GraphData{}, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != snapshotVersion {
		return GraphData{}, fmt.Errorf("unsupported snapshot version: %d", hdr.Version)
	}

	ids, err := readInt64Slice(cr, int(hdr.NumNodes))
	if err != nil {
		return GraphData{}, fmt.Errorf("read node ids: %w", err)
	}
	lats, err := readFloat64Slice(cr, int(hdr.NumNodes))
	if err != nil {
		return GraphData{}, fmt.Errorf("read node lats: %w", err)
	}
	lons, err := readFloat64Slice(cr, int(hdr.NumNodes))
	if err != nil {
		return GraphData{}, fmt.Errorf("read node lons: %w", err)
	}

	nodes := make([]Node, hdr.NumNodes)
	for i := range nodes {
		nodes[i] = Node{Id: NodeId(ids[i]), Lat: lats[i], Lon: lons[i]}
	}

	ways := make([]WayData, hdr.NumWays)
	for i := range ways {
		w, err := readWay(cr)
		if err != nil {
			return GraphData{}, fmt.Errorf("read way %d: %w", i, err)
		}
		ways[i] = w
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return GraphData{}, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return GraphData{}, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	return GraphData{Nodes: nodes, Ways: ways}, nil
}

func writeWay(w io.Writer, wd WayData) error {
	if err := binary.Write(w, binary.LittleEndian, int64(wd.Id)); err != nil {
		return err
	}
	if err := writeString(w, wd.Name); err != nil {
		return err
	}
	nodeIds := make([]int64, len(wd.NodeIds))
	for i, n := range wd.NodeIds {
		nodeIds[i] = int64(n)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(nodeIds))); err != nil {
		return err
	}
	if err := writeInt64Slice(w, nodeIds); err != nil {
		return err
	}
	if err := writeLabels(w, wd.Forward); err != nil {
		return err
	}
	if err := writeLabels(w, wd.Reverse); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, wd.Bidirectional)
}

func readWay(r io.Reader) (WayData, error) {
	var id int64
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return WayData{}, err
	}
	name, err := readString(r)
	if err != nil {
		return WayData{}, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return WayData{}, err
	}
	rawIds, err := readInt64Slice(r, int(n))
	if err != nil {
		return WayData{}, err
	}
	nodeIds := make([]NodeId, len(rawIds))
	for i, v := range rawIds {
		nodeIds[i] = NodeId(v)
	}
	fwd, err := readLabels(r)
	if err != nil {
		return WayData{}, err
	}
	rev, err := readLabels(r)
	if err != nil {
		return WayData{}, err
	}
	var bidir bool
	if err := binary.Read(r, binary.LittleEndian, &bidir); err != nil {
		return WayData{}, err
	}
	return WayData{Id: WayId(id), Name: name, NodeIds: nodeIds, Forward: fwd, Reverse: rev, Bidirectional: bidir}, nil
}

func writeLabels(w io.Writer, wl labels.WayLabels) error {
	buf := [3]byte{byte(wl.Cycleway), byte(wl.Road), 0}
	if wl.Salmon {
		buf[2] = 1
	}
	_, err := w.Write(buf[:])
	return err
}

func readLabels(r io.Reader) (labels.WayLabels, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return labels.WayLabels{}, err
	}
	return labels.WayLabels{
		Cycleway: labels.Cycleway(buf[0]),
		Road:     labels.Road(buf[1]),
		Salmon:   buf[2] == 1,
	}, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Zero-copy slice I/O, matching the teacher's pkg/graph/binary.go idiom.

func writeInt64Slice(w io.Writer, s []int64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readInt64Slice(r io.Reader, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
