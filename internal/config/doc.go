// Package config loads run configuration for the terrain tool.
//
// The schema is flat and identical in JSON and HCL, so a run can be
// described in either format. See config/terrain.defaults.json for the
// canonical defaults.
package config
