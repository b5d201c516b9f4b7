package steering

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MaxNeighbors caps the neighbourhood of a single vehicle.
const MaxNeighbors = 128

// EntityManager owns the registered vehicles and updates them each tick.
type EntityManager struct {
	vehicles []*Vehicle
	grid     *grid
	scratch  []*Vehicle
}

// NewEntityManager creates a manager whose neighbour grid uses cells of the
// given size.
func NewEntityManager(cellSize float64) *EntityManager {
	return &EntityManager{grid: newGrid(cellSize)}
}

// Add registers v. Adding a registered vehicle is a no-op.
func (m *EntityManager) Add(v *Vehicle) {
	if v.manager == m {
		return
	}
	v.manager = m
	m.vehicles = append(m.vehicles, v)
}

// Remove deregisters v. Removing an unknown vehicle is a no-op.
func (m *EntityManager) Remove(v *Vehicle) {
	if v.manager != m {
		return
	}
	v.manager = nil
	v.Neighbors = nil
	for i, c := range m.vehicles {
		if c == v {
			copy(m.vehicles[i:], m.vehicles[i+1:])
			m.vehicles[len(m.vehicles)-1] = nil
			m.vehicles = m.vehicles[:len(m.vehicles)-1]
			return
		}
	}
}

// Len returns the number of registered vehicles.
func (m *EntityManager) Len() int { return len(m.vehicles) }

// Vehicles returns the registered vehicles in registration order.
func (m *EntityManager) Vehicles() []*Vehicle { return m.vehicles }

// Update refreshes neighbourhoods then steps every vehicle. Vehicles removed
// by an OnSync callback are skipped for the rest of the tick.
func (m *EntityManager) Update(dt float64) {
	m.grid.clear()
	for _, v := range m.vehicles {
		m.grid.insert(v)
	}
	for _, v := range m.vehicles {
		if v.UpdateNeighborhood {
			v.Neighbors = m.grid.query(v.Neighbors[:0], v.Position, v.NeighborhoodRadius, v)
		}
	}

	m.scratch = append(m.scratch[:0], m.vehicles...)
	for _, v := range m.scratch {
		if v.manager != m {
			continue
		}
		v.Update(dt)
	}
	clear(m.scratch)
}

type cell [3]int

// grid buckets vehicles into cubic cells for radius queries over an
// unbounded world.
type grid struct {
	size  float64
	cells map[cell][]*Vehicle
}

func newGrid(size float64) *grid {
	if size <= 0 {
		size = 10
	}
	return &grid{size: size, cells: map[cell][]*Vehicle{}}
}

func (g *grid) key(p r3.Vec) cell {
	return cell{
		int(math.Floor(p.X / g.size)),
		int(math.Floor(p.Y / g.size)),
		int(math.Floor(p.Z / g.size)),
	}
}

func (g *grid) clear() {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = bucket[:0]
	}
}

func (g *grid) insert(v *Vehicle) {
	k := g.key(v.Position)
	g.cells[k] = append(g.cells[k], v)
}

// query appends to dst every vehicle within radius of p, excluding one.
func (g *grid) query(dst []*Vehicle, p r3.Vec, radius float64, exclude *Vehicle) []*Vehicle {
	if radius <= 0 {
		return dst
	}
	span := int(math.Ceil(radius / g.size))
	centre := g.key(p)
	radiusSq := radius * radius

	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for dz := -span; dz <= span; dz++ {
				k := cell{centre[0] + dx, centre[1] + dy, centre[2] + dz}
				for _, v := range g.cells[k] {
					if v == exclude {
						continue
					}
					if r3.Norm2(r3.Sub(v.Position, p)) <= radiusSq {
						dst = append(dst, v)
						if len(dst) >= MaxNeighbors {
							return dst
						}
					}
				}
			}
		}
	}
	return dst
}
