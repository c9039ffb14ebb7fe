package domain

import "fmt"

// TriageConfig is the singleton decision configuration read by the
// orchestrator. Administrators maintain it out-of-band; the pipeline
// treats it as a read-only input and falls back to defaults when the
// record is absent.
type TriageConfig struct {
	AutoCloseEnabled    bool
	ConfidenceThreshold float64
	SLAHours            int
	MaxTicketsPerUser   int
	CategoryThresholds  map[TicketCategory]float64
}

// DefaultTriageConfig returns the documented fallback configuration.
func DefaultTriageConfig() TriageConfig {
	return TriageConfig{
		AutoCloseEnabled:    false,
		ConfidenceThreshold: 0.8,
		SLAHours:            24,
		MaxTicketsPerUser:   10,
		CategoryThresholds: map[TicketCategory]float64{
			CategoryBilling:  0.8,
			CategoryTech:     0.75,
			CategoryShipping: 0.8,
			CategoryOther:    0.9,
		},
	}
}

// ThresholdFor returns the per-category override when set, otherwise
// the global threshold.
func (c TriageConfig) ThresholdFor(category TicketCategory) float64 {
	if override, ok := c.CategoryThresholds[category]; ok {
		return override
	}
	return c.ConfidenceThreshold
}

// Validate checks numeric ranges.
func (c TriageConfig) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %.2f outside [0,1]", c.ConfidenceThreshold)
	}
	for cat, threshold := range c.CategoryThresholds {
		if !ValidCategory(cat) {
			return fmt.Errorf("unknown category %q in thresholds", cat)
		}
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("threshold %.2f for %q outside [0,1]", threshold, cat)
		}
	}
	if c.SLAHours < 1 {
		return fmt.Errorf("sla hours must be at least 1")
	}
	if c.MaxTicketsPerUser < 1 {
		return fmt.Errorf("max tickets per user must be at least 1")
	}
	return nil
}
