package mutex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlightSkipsOverlappingCalls(t *testing.T) {
	var f Flight

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan bool)

	go func() {
		done <- f.Do(func() {
			close(entered)
			<-release
		})
	}()

	<-entered
	ran := f.Do(func() { t.Error("overlapping call must not run") })
	assert.False(t, ran)

	close(release)
	assert.True(t, <-done)

	assert.True(t, f.Do(func() {}), "guard is free again after the first call returned")
}
