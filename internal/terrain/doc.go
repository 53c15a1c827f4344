// Package terrain derives slope, aspect and hillshade rasters from a regular
// elevation grid.
//
// Responsibilities: Horn finite-difference gradients over a 3×3 window,
// slope and compass-bearing aspect, and Lambertian hillshade under a fixed
// sun position. Key types: ElevationGrid, LightingConfig, DerivativeGrids.
//
// Grid convention: row 0 is the northern edge, rows grow southward and
// columns grow eastward. The one-cell border has no full neighbourhood and
// is reported as NoData in every output grid.
//
// Dependency rule: no I/O, logging or package-level mutable state. Rendering,
// persistence and surface generation live in sibling packages.
package terrain
