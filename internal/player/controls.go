package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

// seekSettle is how long output stays silent after a seek so the stale
// tail of the device buffer is not heard.
const seekSettle = 100 * time.Millisecond

type seekRequest struct {
	track *Track
	pos   time.Duration
}

// SetPaused pauses or resumes output. Pipelines stay attached.
func (s *Speaker) SetPaused(paused bool) {
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// Seek queues an absolute seek on p. Only the latest pending request is
// kept.
func (s *Speaker) Seek(p Pipeline, pos time.Duration) {
	t, ok := p.(*Track)
	if !ok {
		return
	}
	req := seekRequest{track: t, pos: pos}

	select {
	case s.seekChan <- req:
	default:
		// a seek is pending, replace it
		select {
		case <-s.seekChan:
		default:
		}
		select {
		case s.seekChan <- req:
		default:
		}
	}
}

func (s *Speaker) seekLoop() {
	for {
		select {
		case req := <-s.seekChan:
			s.doSeek(req)
		case <-s.done:
			return
		}
	}
}

// doSeek mutes, seeks, waits for the device buffer to flush, then restores
// the mute state the user asked for.
func (s *Speaker) doSeek(req seekRequest) {
	speaker.Lock()
	if s.gapless.Current() != req.track {
		// track changed or was closed since the request
		speaker.Unlock()
		return
	}
	s.volume.Silent = true
	err := req.track.seek(req.pos)
	speaker.Unlock()

	if err != nil {
		s.logger.Warn("seek failed", zap.String("path", req.track.Path()), zap.Error(err))
	}

	select {
	case <-time.After(seekSettle):
	case <-s.done:
		return
	}

	speaker.Lock()
	s.volume.Silent = s.muted
	speaker.Unlock()
}
