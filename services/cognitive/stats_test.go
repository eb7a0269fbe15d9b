// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cognitive

import (
	"math"
	"testing"
)

// almostEqual compares floats within a tolerance suited to the scale of
// the scores in this package.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"several", []float64{1, 2, 3}, 2},
		{"negative", []float64{-2, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mean(tt.values)
			if !almostEqual(got, tt.want) {
				t.Errorf("Mean(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"constant", []float64{2, 2, 2}, 0},
		{"population variance", []float64{1, 2, 3}, 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Variance(tt.values)
			if !almostEqual(got, tt.want) {
				t.Errorf("Variance(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	got := StdDev([]float64{1, 2, 3})
	want := math.Sqrt(2.0 / 3.0)
	if !almostEqual(got, want) {
		t.Errorf("StdDev([1 2 3]) = %v, want %v", got, want)
	}

	if got := StdDev(nil); got != 0 {
		t.Errorf("StdDev(nil) = %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"p0 is minimum", 0, 1},
		{"p100 is maximum", 100, 5},
		{"median", 50, 3},
		{"quartile", 25, 2},
		{"interpolated", 90, 4.6},
		{"below range", -10, 1},
		{"above range", 150, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(values, tt.p)
			if !almostEqual(got, tt.want) {
				t.Errorf("Percentile(%v, %v) = %v, want %v", values, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_Empty(t *testing.T) {
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil, 50) = %v, want 0", got)
	}
}

func TestPercentile_DoesNotModifyInput(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}

	got := Percentile(values, 50)
	if !almostEqual(got, 3) {
		t.Errorf("Percentile(unsorted, 50) = %v, want 3", got)
	}

	want := []float64{5, 1, 4, 2, 3}
	for i := range values {
		if values[i] != want[i] {
			t.Fatalf("input modified: %v, want %v", values, want)
		}
	}
}

func TestLinearRegressionSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single point", []float64{3}, 0},
		{"rising", []float64{1, 2, 3}, 1},
		{"falling", []float64{3, 2, 1}, -1},
		{"flat", []float64{5, 5, 5}, 0},
		{"steeper", []float64{0, 2, 4, 6}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearRegressionSlope(tt.values)
			if !almostEqual(got, tt.want) {
				t.Errorf("LinearRegressionSlope(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}

	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
