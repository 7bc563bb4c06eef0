// Package render writes stones and nesting layouts to files
// humans and machines can consume: STL meshes, DXF drawings
// and preview images.
package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer streams triangles. ReadTriangles returns io.EOF once exhausted.
type Renderer interface {
	ReadTriangles(t []r3.Triangle) (int, error)
}

// NewTriangleReader returns a Renderer streaming the triangles of model.
func NewTriangleReader(model []r3.Triangle) Renderer {
	return &triangleReader{buf: triangleBuffer{buf: model}}
}

type triangleReader struct {
	buf triangleBuffer
}

func (r *triangleReader) ReadTriangles(t []r3.Triangle) (int, error) {
	if r.buf.Len() == 0 {
		return 0, io.EOF
	}
	return r.buf.Read(t), nil
}
