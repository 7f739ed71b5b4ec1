package core

// FrameClock turns host timestamps in milliseconds into frame deltas in
// seconds.
type FrameClock struct {
	last    float64
	started bool
}

// Tick records nowMillis and returns the seconds elapsed since the previous
// tick. The first tick only sets the baseline and returns 0.
func (c *FrameClock) Tick(nowMillis float64) float64 {
	if !c.started {
		c.started = true
		c.last = nowMillis
		return 0
	}
	dt := (nowMillis - c.last) * 0.001
	c.last = nowMillis
	if dt < 0 {
		return 0
	}
	return dt
}

// Scheduler is a host frame-callback mechanism. Run calls frame once per
// display refresh with a high-resolution timestamp in milliseconds, until
// frame returns false or the host is closed.
type Scheduler interface {
	Run(frame func(nowMillis float64) bool) error
}

// Run drives r from s until the host stops. limit > 0 stops after that many
// frames.
func Run(s Scheduler, r *Renderer, limit int) error {
	var (
		clock    FrameClock
		frames   int
		frameErr error
	)
	err := s.Run(func(now float64) bool {
		if frameErr = r.RenderFrame(clock.Tick(now)); frameErr != nil {
			return false
		}
		frames++
		return limit <= 0 || frames < limit
	})
	if frameErr != nil {
		return frameErr
	}
	return err
}

// FixedStep renders one frame per entry of dts. It stops at the first error.
func FixedStep(r *Renderer, dts []float64) error {
	for _, dt := range dts {
		if err := r.RenderFrame(dt); err != nil {
			return err
		}
	}
	return nil
}
