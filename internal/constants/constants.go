package constants

import "time"

// Vitality Loop Configuration
const (
	// Scan Intervals
	VitalityScanInterval = 100 * time.Millisecond // Default poll interval for the status bar
	VitalityCooldown     = 1 * time.Second        // Default minimum spacing between recovery actions
	VitalityKeyHold      = 60 * time.Millisecond  // Default key hold for the recovery key
	VitalityThreshold    = 30                     // Default trigger threshold in percent

	// Bar Estimation
	BarSampleMaxWidth     = 20   // Max columns sampled from each end of the bar
	BarColorDiffMin       = 30.0 // Below this |dr|+|dg|+|db| fill and empty are "same hue"
	BarBrightnessDiffMin  = 20.0 // Below this the bar is indistinguishable (treated as full)
	BarRelaxFillRatio     = 0.1  // Relax membership when fewer columns than this classify as filled
	BarRelaxDistanceScale = 1.5  // Relaxed distance = scale * max distance in the fill sample
	BarTrustedColumns     = 10   // Leading columns always trusted as filled
	BarWindow             = 5    // Forward window width when searching the bar end
	BarWindowFillMin      = 0.3  // Window fill ratio below which the bar ends

	// Palette Suggestion
	PaletteSampleMinWidth = 5   // Minimum sampled columns for palette suggestion
	PaletteSpread         = 30  // +/- spread applied around sampled colors
	PaletteLowScale       = 0.7 // Low-health color is this fraction of the fill color
)

// Patrol Loop Configuration
const (
	// Scan Intervals
	PatrolScanInterval     = 50 * time.Millisecond  // Default poll interval for the minimap
	PatrolMovementCooldown = 50 * time.Millisecond  // Minimum spacing between movement presses
	PatrolKeyHold          = 150 * time.Millisecond // Default movement key hold
	PatrolNoRegionWait     = 500 * time.Millisecond // Wait when the minimap region is unset

	// Orbit Geometry
	OrbitAngularSpeed = 0.1  // Radians advanced per orbiting poll
	OrbitRadiusOffset = 0.7  // Orbit target radius as a fraction of the circle radius
	BoundaryRatio     = 0.85 // Fraction of the radius where orbiting becomes correcting

	// Deadbands (pixels)
	SeekDeadband      = 5.0 // Outside the orbit zone
	OrbitDeadband     = 3.0 // While orbiting
	OrbitNearDeadband = 1.0 // Within OrbitNearTarget of the orbit target
	OrbitNearTarget   = 5.0

	MinCircleRadius = 10 // Picked regions with a smaller inscribed radius get no circle
)

// Marker Detection
const (
	MarkerBrightThreshold  = 220.0 // Primary brightness cut for marker candidates
	MarkerRelaxedThreshold = 180.0 // Fallback brightness cut
	MarkerBalanceMax       = 25.0  // Max pairwise channel difference for "white"
	MarkerMinCandidates    = 5     // Fewer primary candidates than this triggers the relaxed cut
	MarkerTopBrightest     = 5     // Brightest pixels considered by the last-resort heuristic
	BlobMinPixels          = 2
	BlobMaxPixels          = 100
	BlobBrightnessWeight   = 0.7
	BlobShapeWeight        = 0.3
	BlobShapeRadius        = 3
	ArrowTipMinPixels      = 3 // Tip refinement needs at least this many pixels

	HistorySize     = 5 // Positions kept for stabilization
	StabilizeWindow = 3 // Positions averaged by the stabilizer
)

// Shared
const (
	ErrorBackoff    = 1 * time.Second // Wait after a failed iteration
	StopJoinTimeout = 2 * time.Second // Bounded join when stopping a loop
	EventBuffer     = 64              // Default notification queue capacity
	LogBindingLines = 100             // Lines kept by the in-app log view
)
