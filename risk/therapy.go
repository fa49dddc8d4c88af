/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package risk

// Statin is a statin choice in a therapy history.
type Statin string

// Statin options offered by the therapy step.
const (
	StatinNone         Statin = "None"
	StatinAtorvastatin Statin = "Atorvastatin"
	StatinRosuvastatin Statin = "Rosuvastatin"
)

// Statins lists the selectable statins in display order.
func Statins() []Statin {
	return []Statin{StatinNone, StatinAtorvastatin, StatinRosuvastatin}
}

// Valid reports whether s is one of Statins.
func (s Statin) Valid() bool {
	switch s {
	case StatinNone, StatinAtorvastatin, StatinRosuvastatin:
		return true
	}

	return false
}

// TherapyHistory is the prior and planned lipid-lowering therapy of a patient.
type TherapyHistory struct {
	PriorStatin    Statin
	PriorEzetimibe bool
	PriorBempedoic bool

	NewStatin    Statin
	AddEzetimibe bool
	AddBempedoic bool
}

// PriorVascularTherapyCount counts the active or historical therapies. Only
// prior therapies are counted; the plan does not enter the score.
func (h TherapyHistory) PriorVascularTherapyCount() int {
	count := 0
	if h.PriorStatin != "" && h.PriorStatin != StatinNone {
		count++
	}
	if h.PriorEzetimibe {
		count++
	}
	if h.PriorBempedoic {
		count++
	}

	return count
}

// PlannedTherapies returns the names of the therapies being added.
func (h TherapyHistory) PlannedTherapies() []string {
	var planned []string
	if h.NewStatin != "" && h.NewStatin != StatinNone {
		planned = append(planned, string(h.NewStatin))
	}
	if h.AddEzetimibe {
		planned = append(planned, "Ezetimibe")
	}
	if h.AddBempedoic {
		planned = append(planned, "Bempedoic acid")
	}

	return planned
}
