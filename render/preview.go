package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View places the camera of a shaded preview. The model is
// first fit into a bi-unit cube centered at the origin.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Fovy is the vertical field of view in degrees.
	Fovy float64
}

// DefaultView looks at the model from above one of its corners.
func DefaultView() View {
	return View{
		Up:   r3.Vec{Z: 1},
		Eye:  r3.Vec{X: 3, Y: 3, Z: 2},
		Near: 1,
		Far:  10,
		Fovy: 30,
	}
}

// Preview renders model with Phong shading into a width by height image.
// The image is rendered supersample times larger and downscaled.
func Preview(model []r3.Triangle, width, height, supersample int, view View) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("preview size must be positive")
	}
	if supersample < 1 {
		supersample = 1
	}
	tris := make([]*fauxgl.Triangle, 0, len(model))
	for _, t := range model {
		tris = append(tris, fauxgl.NewTriangleForPoints(fauxV(t[0]), fauxV(t[1]), fauxV(t[2])))
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	var (
		eye    = fauxV(view.Eye)                      // camera position
		center = fauxV(view.LookAt)                   // view center position
		up     = fauxV(view.Up)                       // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#8C8C7A")           // object color
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*supersample, height*supersample)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	img := context.Image()
	if supersample > 1 {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePreview renders model as in Preview and writes it to a PNG file.
func SavePreview(path string, model []r3.Triangle, width, height int, view View) error {
	img, err := Preview(model, width, height, 2, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func fauxV(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
