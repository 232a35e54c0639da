package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSharedFlags(t *testing.T) {
	shared := []string{
		"format", "output", "no-cache", "log", "complexity",
		"after", "before", "merges", "sort", "desc", "limit", "quiet",
	}
	for _, name := range shared {
		assert.NotNil(t, analyzeCmd.PersistentFlags().Lookup(name), "flag --%s", name)
	}
}

func TestSubcommandsInheritComplexityFlag(t *testing.T) {
	// hotspot and trend read --complexity; the combined analyze run does too.
	assert.NotNil(t, hotspotCmd.InheritedFlags().Lookup("complexity"))
	assert.NotNil(t, trendCmd.InheritedFlags().Lookup("complexity"))
}
