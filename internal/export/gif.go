package export

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/quantasim/internal/particle"
)

var ErrNoFrames = errors.New("export: no frames recorded")

// Recorder accumulates rasterized frames of the field for an animated GIF.
type Recorder struct {
	width, height int
	scale         float64
	delay         int // 1/100 s
	palette       color.Palette
	index         map[particle.Type]uint8
	frames        []*image.Paletted
}

// NewRecorder records frames imgWidth pixels wide for a field of
// fieldWidth x fieldHeight. delay is the per-frame delay in 1/100 s.
func NewRecorder(fieldWidth, fieldHeight float64, imgWidth, delay int) *Recorder {
	if imgWidth <= 0 {
		imgWidth = 480
	}
	scale := float64(imgWidth) / fieldWidth
	r := &Recorder{
		width:   imgWidth,
		height:  int(fieldHeight*scale + 0.5),
		scale:   scale,
		delay:   delay,
		palette: color.Palette{color.Black, hexColor(wellColor)},
		index:   make(map[particle.Type]uint8, len(particle.Types)),
	}
	for _, t := range particle.Types {
		r.index[t] = uint8(len(r.palette))
		r.palette = append(r.palette, hexColor(particle.ConstantsFor(t).Color))
	}
	return r
}

// Capture rasterizes one frame.
func (r *Recorder) Capture(ps []particle.Particle, wells []particle.GravityWell) {
	img := image.NewPaletted(image.Rect(0, 0, r.width, r.height), r.palette)

	for _, w := range wells {
		r.dot(img, w.X, w.Y, 2, 1)
	}
	for i := range ps {
		p := &ps[i]
		if !p.Finite() {
			continue
		}
		rad := int(p.Size * r.scale / 2)
		r.dot(img, p.X, p.Y, rad, r.index[p.Type])
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) dot(img *image.Paletted, x, y float64, rad int, idx uint8) {
	cx, cy := int(x*r.scale), int(y*r.scale)
	for dy := -rad; dy <= rad; dy++ {
		for dx := -rad; dx <= rad; dx++ {
			if dx*dx+dy*dy > rad*rad {
				continue
			}
			px, py := cx+dx, cy+dy
			if px < 0 || py < 0 || px >= r.width || py >= r.height {
				continue
			}
			img.SetColorIndex(px, py, idx)
		}
	}
}

func (r *Recorder) Frames() int { return len(r.frames) }

func (r *Recorder) Reset() { r.frames = r.frames[:0] }

func (r *Recorder) WriteGIF(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.WriteGIF(f)
}

// hexColor parses #RRGGBB, falling back to white.
func hexColor(s string) color.Color {
	if len(s) != 7 || s[0] != '#' {
		return color.White
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.White
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
