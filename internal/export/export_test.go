package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/gif"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/particle"
)

func sample() ([]particle.Particle, []particle.GravityWell) {
	ps := []particle.Particle{
		{ID: "a", Type: particle.Electron, X: 10, Y: 20, VX: 1, VY: -1, Mass: 9.109e-31, Charge: -1, Size: 3, Color: "#8B5CF6",
			Trail: []particle.TrailPoint{{X: 10, Y: 20, Opacity: 1}, {X: 9, Y: 21, Opacity: 0.8}}},
		{ID: "b", Type: particle.Photon, X: 30, Y: 40, Size: 2, Color: "#10FF10"},
	}
	wells := []particle.GravityWell{{ID: "w", X: 5, Y: 5, Strength: 1000, Radius: 200, Active: true}}
	return ps, wells
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 8, 9, 123e6, time.UTC)
	want := "quantum-simulation-2024-03-05T07-08-09-123Z.json"
	if got := FileName("json", now); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNewDocument(t *testing.T) {
	g := NewWithT(t)
	ps, wells := sample()
	now := time.UnixMilli(1700000000000)

	doc := NewDocument(ps, wells, &engine.Stats{ParticleCount: 2, TotalCollisions: 4}, now)

	g.Expect(doc.Metadata.Version).To(Equal("2.0"))
	g.Expect(doc.Metadata.ParticleCount).To(Equal(2))
	g.Expect(doc.Metadata.ExportTime).To(Equal(int64(1700000000000)))
	g.Expect(doc.Particles[0].Position).To(Equal(Vec2{10, 20}))
	g.Expect(doc.Particles[0].Velocity).To(Equal(Vec2{1, -1}))
	g.Expect(doc.Statistics.TotalCollisions).To(Equal(4))
	g.Expect(doc.GravityWells).To(HaveLen(1))

	var buf bytes.Buffer
	g.Expect(WriteJSON(&buf, doc)).To(Succeed())

	var raw map[string]any
	g.Expect(json.Unmarshal(buf.Bytes(), &raw)).To(Succeed())
	g.Expect(raw).To(HaveKey("statistics"))
	stats := raw["statistics"].(map[string]any)
	g.Expect(stats).To(HaveKeyWithValue("collisionsPerSec", BeNumerically("==", 0)))
}

func TestNewDocumentWithoutStats(t *testing.T) {
	ps, _ := sample()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewDocument(ps, nil, nil, time.Now())); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"statistics": null`) {
		t.Errorf("expected null statistics, got %s", buf.String())
	}
}

func TestRoundTripFile(t *testing.T) {
	g := NewWithT(t)
	ps, wells := sample()
	path := filepath.Join(t.TempDir(), "snap.json")

	g.Expect(WriteJSONFile(path, NewDocument(ps, wells, nil, time.Now()))).To(Succeed())
	doc, err := ReadJSONFile(path)
	g.Expect(err).NotTo(HaveOccurred())

	got, gotWells, err := doc.Restore()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(HaveLen(2))
	g.Expect(got[0].ID).To(Equal("a"))
	g.Expect(got[0].Size).To(Equal(3.0))
	g.Expect(got[1].Color).To(Equal("#10FF10"))
	g.Expect(gotWells).To(Equal(wells))
}

func TestRestoreRejectsUnknownType(t *testing.T) {
	doc := Document{Particles: []ParticleRecord{{ID: "x", Type: "tachyon"}}}
	if _, _, err := doc.Restore(); !errors.Is(err, particle.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestSVG(t *testing.T) {
	ps, wells := sample()
	var buf bytes.Buffer
	if err := SVG(&buf, ps, wells, 1920, 1080); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Error("not a complete svg document")
	}
	if n := strings.Count(out, "<line"); n != 1 {
		t.Errorf("expected 1 trail segment, got %d", n)
	}
	if !strings.Contains(out, `r="200.0"`) {
		t.Error("well ring missing")
	}
	if !strings.Contains(out, "#8B5CF6") || !strings.Contains(out, "#10FF10") {
		t.Error("particle colors missing")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single value should render nothing")
	}
	out := SeriesToSVG([]float64{1, 2, 3}, 100, 50, "#fff")
	if strings.Count(out, " L") != 2 {
		t.Errorf("expected 2 line segments, got %s", out)
	}
}

func TestRecorder(t *testing.T) {
	ps, wells := sample()
	r := NewRecorder(1920, 1080, 192, 4)

	var buf bytes.Buffer
	if err := r.WriteGIF(&buf); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}

	r.Capture(ps, wells)
	r.Capture(ps, nil)
	if r.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", r.Frames())
	}
	if err := r.WriteGIF(&buf); err != nil {
		t.Fatal(err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 2 || anim.Delay[0] != 4 {
		t.Errorf("unexpected animation: %d frames, delay %v", len(anim.Image), anim.Delay)
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 192 || b.Dy() != 108 {
		t.Errorf("unexpected frame size %v", b)
	}
}
