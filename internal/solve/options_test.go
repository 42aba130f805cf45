package solve

import (
	"testing"
	"time"
)

func TestOptions_NormaliseFillsDefaults(t *testing.T) {
	got := Options{}.normalise()
	if got.TimeLimit != DefaultTimeLimit {
		t.Errorf("TimeLimit = %v, want %v", got.TimeLimit, DefaultTimeLimit)
	}
	if got.RelativeGap != DefaultRelativeGap {
		t.Errorf("RelativeGap = %v, want %v", got.RelativeGap, DefaultRelativeGap)
	}
}

func TestOptions_NormaliseKeepsExplicitValues(t *testing.T) {
	want := Options{TimeLimit: 10 * time.Second, RelativeGap: 0.05, Threads: 4}
	got := want.normalise()
	if got != want {
		t.Errorf("normalise() = %+v, want unchanged %+v", got, want)
	}
}

func TestOptions_NormaliseRejectsNegativeValues(t *testing.T) {
	got := Options{TimeLimit: -1, RelativeGap: -0.5}.normalise()
	if got.TimeLimit != DefaultTimeLimit {
		t.Errorf("TimeLimit = %v, want default %v for a negative input", got.TimeLimit, DefaultTimeLimit)
	}
	if got.RelativeGap != DefaultRelativeGap {
		t.Errorf("RelativeGap = %v, want default %v for a negative input", got.RelativeGap, DefaultRelativeGap)
	}
}
