package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reportprint/domain/printjobs"
)

func TestCompletionDetector_IgnoresChecksBeforeSentAll(t *testing.T) {
	// Arrange
	d := NewCompletionDetector(3)

	// Act
	for i := 0; i < 5; i++ {
		d.RecordCheck(true)
	}

	// Assert
	assert.Equal(t, StateAwaitingSubmissions, d.State())
	assert.Zero(t, d.Streak())
}

func TestCompletionDetector_RequiresConsecutiveEmptyReadings(t *testing.T) {
	tests := []struct {
		name     string
		readings []bool
		want     DetectorState
	}{
		{"three empties", []bool{true, true, true}, StateDone},
		{"two empties", []bool{true, true}, StateDraining},
		{"reset by busy reading", []bool{true, true, false, true, true}, StateDraining},
		{"reset then three", []bool{true, true, false, true, true, true}, StateDone},
		{"busy only", []bool{false, false, false}, StateDraining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			d := NewCompletionDetector(3)
			d.Observe(printjobs.SentAllEvent())

			// Act
			var state DetectorState
			for _, r := range tt.readings {
				state = d.RecordCheck(r)
			}

			// Assert
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestCompletionDetector_DoneIsTerminal(t *testing.T) {
	// Arrange
	d := NewCompletionDetector(1)
	d.Observe(printjobs.SentAllEvent())
	d.RecordCheck(true)

	// Act
	state := d.RecordCheck(false)
	d.Observe(printjobs.SentAllEvent())

	// Assert
	assert.Equal(t, StateDone, state)
	assert.Equal(t, StateDone, d.State())
}

func TestCompletionDetector_OtherEventsDoNotAdvance(t *testing.T) {
	// Arrange
	d := NewCompletionDetector(3)

	// Act
	d.Observe(printjobs.InitEvent(2))
	d.Observe(printjobs.DoneItemEvent(0, "a.pdf"))
	d.Observe(printjobs.ErrorItemEvent(1, "b.pdf", "boom"))

	// Assert
	assert.Equal(t, StateAwaitingSubmissions, d.State())
}

func TestCompletionDetector_Outcome(t *testing.T) {
	d := NewCompletionDetector(3)

	assert.Equal(t, printjobs.Completed(4, 1), d.Outcome(false, 4, 1))
	assert.Equal(t, printjobs.Cancelled(2, 0), d.Outcome(true, 2, 0))
}
