// Package export renders run data as standalone SVG documents.
package export

import (
	"fmt"
	"strings"
)

type Point struct {
	X, Y float64
}

// TrackSVG draws a north-east ground track. East maps to the SVG x
// axis and north to the (flipped) y axis so the plot reads like a
// chart, north up.
func TrackSVG(track []Point, width, height int, strokeColor string) string {
	if len(track) < 2 {
		return ""
	}
	flipped := make([]Point, len(track))
	for i, p := range track {
		flipped[i] = Point{X: p.Y, Y: p.X}
	}
	return polyline(flipped, width, height, strokeColor)
}

// SeriesSVG draws a time series as a line chart.
func SeriesSVG(times, values []float64, width, height int, strokeColor string) string {
	if len(times) != len(values) || len(times) < 2 {
		return ""
	}
	pts := make([]Point, len(times))
	for i := range times {
		pts[i] = Point{X: times[i], Y: values[i]}
	}
	return polyline(pts, width, height, strokeColor)
}

func polyline(points []Point, width, height int, strokeColor string) string {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
