package block

import "fmt"

// Cooldown counts down frames after an event fires. It is never negative.
type Cooldown struct {
	remaining int
}

// Tick decrements the counter by one frame, stopping at zero.
func (c *Cooldown) Tick() {
	if c.remaining > 0 {
		c.remaining--
	}
}

// Ready reports whether the counter has run out.
func (c *Cooldown) Ready() bool { return c.remaining == 0 }

// Remaining returns the frames left before Ready.
func (c *Cooldown) Remaining() int { return c.remaining }

// Arm restarts the countdown at n frames.
func (c *Cooldown) Arm(n int) {
	if n < 0 {
		panic(fmt.Sprintf("block: negative cooldown %d", n))
	}
	c.remaining = n
}
