package backend

import "math"

const (
	audioDiffAvgNB        = 20
	avNoSyncThreshold     = 10.0
	audioDiffThreshold    = 0.1
)

var audioDiffAvgCoef = math.Exp(math.Log(0.01) / audioDiffAvgNB)

// DriftFilter smooths the difference between a backend's notion of
// "audio time played" and the player's wall-clock notion of "time that
// should have played" into an exponential moving average, returning a
// non-zero compensation only once it has accumulated enough samples and
// the average drift exceeds audioDiffThreshold. Values wildly outside
// avNoSyncThreshold (e.g. right after a seek) reset the filter instead
// of polluting the average.
//
// Ported unchanged from get_audio_time_diff in
// original_source/pyglet/media/drivers/base.py.
type DriftFilter struct {
	count int
	cum   float64
}

// Update feeds in the current (audioTime, playerTime) pair and returns
// the compensation to apply this cycle, or 0 if no compensation is due
// yet.
func (f *DriftFilter) Update(audioTime, playerTime float64) float64 {
	diff := audioTime - playerTime

	if math.Abs(diff) < avNoSyncThreshold {
		f.cum = diff + audioDiffAvgCoef*f.cum
		if f.count < audioDiffAvgNB {
			f.count++
		} else {
			avg := f.cum * (1 - audioDiffAvgCoef)
			if math.Abs(avg) > audioDiffThreshold {
				return avg
			}
		}
	} else {
		f.count = 0
		f.cum = 0.0
	}

	return 0.0
}

// Reset clears accumulated drift history, used when a player is cleared
// or seeks.
func (f *DriftFilter) Reset() {
	f.count = 0
	f.cum = 0.0
}
