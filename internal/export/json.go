package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/particle"
)

const FormatVersion = "2.0"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ParticleRecord struct {
	ID       string        `json:"id"`
	Type     particle.Type `json:"type"`
	Position Vec2          `json:"position"`
	Velocity Vec2          `json:"velocity"`
	Mass     float64       `json:"mass"`
	Charge   float64       `json:"charge"`
	Energy   float64       `json:"energy"`
	Age      float64       `json:"age"`
}

type WellRecord struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Strength float64 `json:"strength"`
	Radius   float64 `json:"radius"`
	Active   bool    `json:"active"`
}

type Metadata struct {
	ParticleCount int    `json:"particleCount"`
	ExportTime    int64  `json:"exportTime"` // unix ms
	Version       string `json:"version"`
}

// Document is a point-in-time snapshot of a simulation.
type Document struct {
	Timestamp    string           `json:"timestamp"`
	Particles    []ParticleRecord `json:"particles"`
	GravityWells []WellRecord     `json:"gravityWells,omitempty"`
	Statistics   *engine.Stats    `json:"statistics"`
	Metadata     Metadata         `json:"metadata"`
}

// NewDocument snapshots ps and wells at now. A nil stats leaves the
// statistics block null.
func NewDocument(ps []particle.Particle, wells []particle.GravityWell, stats *engine.Stats, now time.Time) Document {
	doc := Document{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Particles: make([]ParticleRecord, len(ps)),
		Metadata: Metadata{
			ParticleCount: len(ps),
			ExportTime:    now.UnixMilli(),
			Version:       FormatVersion,
		},
	}
	for i, p := range ps {
		doc.Particles[i] = ParticleRecord{
			ID:       p.ID,
			Type:     p.Type,
			Position: Vec2{p.X, p.Y},
			Velocity: Vec2{p.VX, p.VY},
			Mass:     p.Mass,
			Charge:   p.Charge,
			Energy:   p.Energy,
			Age:      p.Age,
		}
	}
	for _, w := range wells {
		doc.GravityWells = append(doc.GravityWells, WellRecord(w))
	}
	if stats != nil {
		s := *stats
		doc.Statistics = &s
	}
	return doc
}

// FromEngine snapshots the live state of e.
func FromEngine(e *engine.Engine, includeStats bool, now time.Time) Document {
	var stats *engine.Stats
	if includeStats {
		s := e.Stats()
		stats = &s
	}
	return NewDocument(e.Particles(), e.GravityWells(), stats, now)
}

// Restore rebuilds particles and wells from the document. Properties the
// document does not carry (size, color, lifespan) come from the catalog.
func (d *Document) Restore() ([]particle.Particle, []particle.GravityWell, error) {
	ps := make([]particle.Particle, 0, len(d.Particles))
	for _, r := range d.Particles {
		if !r.Type.Valid() {
			return nil, nil, fmt.Errorf("particle %s: %w: %q", r.ID, particle.ErrUnknownType, string(r.Type))
		}
		c := particle.ConstantsFor(r.Type)
		ps = append(ps, particle.Particle{
			ID:       r.ID,
			Type:     r.Type,
			X:        r.Position.X,
			Y:        r.Position.Y,
			VX:       r.Velocity.X,
			VY:       r.Velocity.Y,
			Mass:     r.Mass,
			Charge:   r.Charge,
			Energy:   r.Energy,
			Age:      r.Age,
			Lifespan: c.Lifespan,
			Size:     c.Size,
			Color:    c.Color,
		})
	}
	wells := make([]particle.GravityWell, len(d.GravityWells))
	for i, w := range d.GravityWells {
		wells[i] = particle.GravityWell(w)
	}
	return ps, wells, nil
}

func WriteJSON(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func WriteJSONFile(path string, doc Document) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, doc)
}

func ReadJSONFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

// FileName is quantum-simulation-<ISO timestamp>.<ext> with ':' and '.' in
// the timestamp replaced by '-'.
func FileName(ext string, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("quantum-simulation-%s.%s", ts, ext)
}
