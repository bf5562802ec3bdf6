package inhibit

import (
	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/playback"
)

// Follow holds the inhibition while the session is audibly playing and
// drops it on pause or stop. It returns once sub is done, with the
// inhibition released.
func (i *Inhibitor) Follow(sub *playback.Subscription) {
	defer func() {
		if err := i.Release(); err != nil {
			i.logger.Warn("release inhibit", zap.Error(err))
		}
	}()

	for {
		select {
		case e := <-sub.StateChanged:
			i.apply(e.Current)
		case <-sub.PositionChanged:
		case <-sub.TrackChanged:
		case <-sub.ModeChanged:
		case <-sub.Done:
			return
		}
	}
}

func (i *Inhibitor) apply(s playback.State) {
	var err error
	if s.IsActive() {
		err = i.Acquire()
	} else if s.Kind != playback.KindLoading {
		// Loading between two tracks keeps the current inhibition.
		err = i.Release()
	}
	if err != nil {
		i.logger.Warn("suspend inhibit", zap.Stringer("state", s), zap.Error(err))
	}
}
