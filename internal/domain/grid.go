package domain

import "math"

// alignTolerance is how close (in km) a footprint edge must be to a cell
// boundary to count as starting exactly on it.
const alignTolerance = 1e-5

// Cell is one 1 km x 1 km grid cell. Coverage is tracked separably per axis:
// Left/Right are the fractions of the cell's width covered from each side,
// Up/Down the fractions of its height. A fully-covered flag is set once the
// two fractions on an axis reach 1 and is never cleared again; fractions only
// grow by max-combine, so re-registering a footprint never double counts.
type Cell struct {
	Left, Right float64
	Up, Down    float64

	CoveredHorizontally bool
	CoveredVertically   bool
}

// area is the cell's contribution to the covered total. When neither axis is
// fully covered the two partial coverages are multiplied as if they were
// independent. That is an approximation, not the exact overlap area.
func (c Cell) area() float64 {
	switch {
	case c.CoveredHorizontally && c.CoveredVertically:
		return 1
	case c.CoveredHorizontally:
		return c.Up + c.Down
	case c.CoveredVertically:
		return c.Left + c.Right
	default:
		return (c.Up + c.Down) * (c.Left + c.Right)
	}
}

// BoundingBox is the min/max extent of a set of detection centers.
type BoundingBox struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// BoundingBoxOf returns the box around every detection center, and false when
// detections is empty.
func BoundingBoxOf(detections []Detection) (BoundingBox, bool) {
	if len(detections) == 0 {
		return BoundingBox{}, false
	}
	box := BoundingBox{
		MinLat: math.Inf(1), MinLng: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLng: math.Inf(-1),
	}
	for _, d := range detections {
		box.MinLat = math.Min(box.MinLat, d.Lat)
		box.MaxLat = math.Max(box.MaxLat, d.Lat)
		box.MinLng = math.Min(box.MinLng, d.Lng)
		box.MaxLng = math.Max(box.MaxLng, d.Lng)
	}
	return box, true
}

// Finite reports whether every bound is a finite number.
func (b BoundingBox) Finite() bool {
	for _, v := range [...]float64{b.MinLat, b.MinLng, b.MaxLat, b.MaxLng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Center is the midpoint of the box.
func (b BoundingBox) Center() LatLng {
	return LatLng{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}

// CoverageGrid estimates the area covered by a day's rectangular footprints
// on a uniform 1 km grid. Columns run along latitude from the box's minimum,
// rows along longitude, counted down from the box's maximum.
type CoverageGrid struct {
	proj  Projector
	rows  int
	cols  int
	cells []Cell
}

// NewCoverageGrid allocates a zeroed grid spanning box, projected relative to
// its minimum corner.
func NewCoverageGrid(box BoundingBox) *CoverageGrid {
	proj := Projector{OriginLat: box.MinLat, OriginLng: box.MinLng}
	rowEnd := int(math.Ceil(proj.Y(box.MaxLng)))
	colEnd := int(math.Ceil(proj.X(box.MaxLat)))
	return newCoverageGrid(proj, rowEnd+1, colEnd+1)
}

func newCoverageGrid(proj Projector, rows, cols int) *CoverageGrid {
	return &CoverageGrid{
		proj:  proj,
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// Rows returns the number of grid rows.
func (g *CoverageGrid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *CoverageGrid) Cols() int { return g.cols }

// Cell returns a copy of the cell at row, col.
func (g *CoverageGrid) Cell(row, col int) Cell { return *g.cell(row, col) }

func (g *CoverageGrid) cell(row, col int) *Cell {
	return &g.cells[row*g.cols+col]
}

// AddFootprint registers a width x height km footprint centred on lat/lng.
// Parts falling outside the grid are ignored.
func (g *CoverageGrid) AddFootprint(lat, lng, width, height float64) {
	col := g.proj.X(lat)
	row := float64(g.rows) - g.proj.Y(lng)
	g.add(col, row, width, height)
}

// add works in grid coordinates: c is the fractional column of the footprint
// center, r its fractional row.
func (g *CoverageGrid) add(c, r, width, height float64) {
	colStart, colEnd := c-width/2, c+width/2
	rowStart, rowEnd := r-height/2, r+height/2

	for row := int(math.Floor(rowStart)); row <= int(math.Floor(rowEnd)); row++ {
		g.registerHorizontal(colStart, colEnd, row)
	}
	for col := int(math.Floor(colStart)); col <= int(math.Floor(colEnd)); col++ {
		g.registerVertical(rowStart, rowEnd, col)
	}
}

// registerHorizontal records the span [start, end) against the two boundary
// columns of row: the cell holding start gets a right-side fraction and the
// cell after it a left-side fraction.
func (g *CoverageGrid) registerHorizontal(start, end float64, row int) {
	if row < 0 || row >= g.rows {
		return
	}
	idx := int(math.Floor(start))
	if idx >= 0 && idx < g.cols {
		c := g.cell(row, idx)
		if math.Abs(start-float64(idx)) < alignTolerance {
			c.CoveredHorizontally = true
			return
		}
		if !c.CoveredHorizontally {
			c.Right = combine(c.Right, float64(idx+1)-start)
			c.CoveredHorizontally = c.Left+c.Right >= 1
		}
	}
	if next := idx + 1; next >= 0 && next < g.cols {
		c := g.cell(row, next)
		if !c.CoveredHorizontally {
			c.Left = combine(c.Left, end-float64(next))
			c.CoveredHorizontally = c.Left+c.Right >= 1
		}
	}
}

// registerVertical mirrors registerHorizontal along a column: the cell
// holding start gets an up fraction, the cell below it a down fraction.
func (g *CoverageGrid) registerVertical(start, end float64, col int) {
	if col < 0 || col >= g.cols {
		return
	}
	idx := int(math.Floor(start))
	if idx >= 0 && idx < g.rows {
		c := g.cell(idx, col)
		if math.Abs(start-float64(idx)) < alignTolerance {
			c.CoveredVertically = true
			return
		}
		if !c.CoveredVertically {
			c.Up = combine(c.Up, float64(idx+1)-start)
			c.CoveredVertically = c.Up+c.Down >= 1
		}
	}
	if next := idx + 1; next >= 0 && next < g.rows {
		c := g.cell(next, col)
		if !c.CoveredVertically {
			c.Down = combine(c.Down, end-float64(next))
			c.CoveredVertically = c.Up+c.Down >= 1
		}
	}
}

// combine keeps the larger of the stored and new fraction, bounded to [0, 1].
func combine(current, fraction float64) float64 {
	return math.Min(1, math.Max(current, fraction))
}

// TotalCoveredArea sums every cell's contribution in km².
func (g *CoverageGrid) TotalCoveredArea() float64 {
	var total float64
	for i := range g.cells {
		total += g.cells[i].area()
	}
	return total
}

// MeasureDay estimates one day's burned area from its cluster and reports the
// cluster's bounding-box midpoint. An empty cluster, or one with a
// non-finite coordinate, measures zero with no center.
func MeasureDay(date Date, cluster []Detection) DailySize {
	box, ok := BoundingBoxOf(cluster)
	if !ok || !box.Finite() {
		return DailySize{Date: date}
	}
	grid := NewCoverageGrid(box)
	for _, d := range cluster {
		grid.AddFootprint(d.Lat, d.Lng, d.Scan, d.Track)
	}
	return DailySize{
		Date:      date,
		AreaKm2:   grid.TotalCoveredArea(),
		Center:    box.Center(),
		HasCenter: true,
	}
}
