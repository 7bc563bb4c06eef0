package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/digistone/internal/d3"
	"github.com/soypat/digistone/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// SaveSTL writes model to path as a binary STL file, or as an
// ASCII STL solid called name when ascii is set.
func SaveSTL(path, name string, model []r3.Triangle, ascii bool) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	if ascii {
		solid := mesh.ToSolid(name, model)
		solid.IsAscii = true
		if err := solid.WriteFile(path); err != nil {
			return fmt.Errorf("write STL %q: %w", path, err)
		}
		return nil
	}
	if err := CreateSTL(path, NewTriangleReader(model)); err != nil {
		return fmt.Errorf("write STL %q: %w", path, err)
	}
	return nil
}

// CreateSTL streams the triangles of a Renderer to a binary STL file.
func CreateSTL(path string, r Renderer) error {
	return createSTL(path, r)
}

// WriteSTL writes model triangles to a writer in binary STL file format.
func WriteSTL(w io.Writer, model []r3.Triangle) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{
		Count: uint32(len(model)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlTriangleSize]byte
	for _, triangle := range model {
		fromTriangle(triangle).put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

const (
	trianglesInBuffer = 1 << 10
	stlTriangleSize   = 50
	sizeOfSTLHeader   = 84
)

type stlReader struct {
	r   Renderer
	buf [trianglesInBuffer]r3.Triangle
}

func (w *stlReader) Read(b []byte) (int, error) {
	ntMax := min(len(b)/stlTriangleSize, len(w.buf))
	if ntMax == 0 {
		return 0, errors.New("stlReader requires at least 50 bytes to write a single triangle")
	}
	var (
		err error
		it  int // Number of triangles written to byte buffer
		nt  int // number of triangles read during ReadTriangles
	)
	for it < ntMax && err == nil {
		nt, err = w.r.ReadTriangles(w.buf[:ntMax-it])
		for _, triangle := range w.buf[:nt] {
			fromTriangle(triangle).put(b[it*stlTriangleSize:])
			it++
		}
	}
	return it * stlTriangleSize, err
}

func createSTL(path string, r Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	// Header is written last, once the triangle count is known.
	_, err = file.Seek(sizeOfSTLHeader, io.SeekStart)
	if err != nil {
		return err
	}
	rd := &stlReader{
		r: r,
	}
	n, err := io.CopyBuffer(file, rd, make([]byte, stlTriangleSize*trianglesInBuffer))
	if err != nil {
		return err
	}
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	header := stlHeader{
		Count: uint32(n / stlTriangleSize),
	}
	if err = binary.Write(file, binary.LittleEndian, &header); err != nil {
		return err
	}
	return file.Close()
}

func readBinarySTL(r io.Reader) (output []r3.Triangle, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf [stlTriangleSize]byte
		d   stlTriangle
		i   int
	)
	defer func() {
		if readErr != nil {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if bad3F32(d.Normal) || bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return nil, errors.New("inf/NaN STL triangle")
		}
		output = append(output, d.toTriangle())
	}
	return output, nil
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func fromTriangle(t r3.Triangle) stlTriangle {
	var d stlTriangle
	n := d3.TriangleNormal(t)
	d.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	d.Vertex1 = [3]float32{float32(t[0].X), float32(t[0].Y), float32(t[0].Z)}
	d.Vertex2 = [3]float32{float32(t[1].X), float32(t[1].Y), float32(t[1].Z)}
	d.Vertex3 = [3]float32{float32(t[2].X), float32(t[2].Y), float32(t[2].Z)}
	return d
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func (d stlTriangle) toTriangle() r3.Triangle {
	return r3.Triangle{
		r3From3F32(d.Vertex1),
		r3From3F32(d.Vertex2),
		r3From3F32(d.Vertex3),
	}
}
