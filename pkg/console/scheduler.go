package console

import (
	"context"
	"time"

	"github.com/ps4golib/pyps4go/pkg/pyps4err"
	"github.com/ps4golib/pyps4go/pkg/session"
)

// TaskKind tags the command a Task represents (spec.md §3 "Command task").
type TaskKind int

const (
	TaskLogin TaskKind = iota
	TaskStandby
	TaskStartTitle
	TaskRemoteControl
)

// Task is a single scheduled command. At most one Task is ever pending per
// console, and at most one is ever in flight on its TCP session.
type Task struct {
	Kind            TaskKind
	PIN             string
	TitleID         string
	PreviousTitleID string
	Button          string
	HoldMs          uint32
}

// Wakeup sends a WAKEUP datagram and marks the console as powering on. It
// does not block for the console to actually come up; observe status
// changes via SetStatusCallback or poll IsRunning/IsAvailable.
func (c *Console) Wakeup(ctx context.Context) error {
	c.mu.Lock()
	c.poweringOn = true
	c.mu.Unlock()
	return c.mux.SendWakeup(c.host, c.credential)
}

// Login logs in if not already, running the dismiss sequence when pin is
// empty and the console is not mid-wakeup (spec.md §4.5 step 4). If the
// console is in standby or has no session yet, the login is queued as the
// console's pending task instead of executing immediately.
func (c *Console) Login(ctx context.Context, pin string) error {
	return c.execute(ctx, &Task{Kind: TaskLogin, PIN: pin})
}

// Standby requires the console to be logged in; it sends the standby
// frame and marks powering_off. The session itself is torn down by the
// next DDP status update reporting 620 (see onStatus).
func (c *Console) Standby(ctx context.Context) error {
	return c.execute(ctx, &Task{Kind: TaskStandby})
}

// StartTitle boots titleID. If previousTitleID is non-empty and differs
// from titleID, a remote_control("enter") is scheduled one second later to
// auto-confirm the "close current application" prompt (spec.md §4.6).
func (c *Console) StartTitle(ctx context.Context, titleID, previousTitleID string) error {
	return c.execute(ctx, &Task{Kind: TaskStartTitle, TitleID: titleID, PreviousTitleID: previousTitleID})
}

// RemoteControl presses buttonName. For buttons other than "ps" and
// "ps_hold", holdMs is sent as the button frame's hold time. For "ps" it is
// not sent; a value of session.PSHoldMs or more selects the hold gesture's
// longer post-delay. "ps_hold" always uses session.PSHoldMs; see
// ButtonOpcode.
func (c *Console) RemoteControl(ctx context.Context, buttonName string, holdMs uint32) error {
	return c.execute(ctx, &Task{Kind: TaskRemoteControl, Button: buttonName, HoldMs: holdMs})
}

// execute is the scheduler entry point shared by every command. If the
// console already has a logged-in session it runs the task immediately;
// otherwise the task becomes the console's one-slot pending task (newest
// command wins) and a wakeup or connect is kicked off to eventually drain
// it (spec.md §4.6 "Pending tasks across wake").
func (c *Console) execute(ctx context.Context, task *Task) error {
	c.mu.Lock()
	hasSession := c.sess != nil && c.connState == LoggedIn
	standby := c.status != nil && c.status.IsStandby()
	c.mu.Unlock()

	if hasSession {
		return c.runTask(ctx, task)
	}

	c.mu.Lock()
	c.pendingTask = task
	c.mu.Unlock()

	if standby {
		c.mu.Lock()
		c.poweringOn = true
		c.mu.Unlock()
		return c.mux.SendWakeup(c.host, c.credential)
	}

	go c.connectAndDrain(ctx)
	return nil
}

// runTask acquires the one-slot semaphore, then executes task against the
// current session.
func (c *Console) runTask(ctx context.Context, task *Task) error {
	if err := c.acquireSlot(ctx); err != nil {
		return err
	}
	defer c.releaseSlot()
	return c.runTaskLocked(ctx, task)
}

// runTaskLocked executes task against the current session. The caller
// must already hold the command slot.
func (c *Console) runTaskLocked(ctx context.Context, task *Task) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return pyps4err.ErrNotReady
	}

	switch task.Kind {
	case TaskLogin:
		c.mu.Lock()
		poweringOn := c.poweringOn
		c.mu.Unlock()
		return sess.Login(session.LoginCredentials{
			Credential: c.credential,
			DeviceName: c.deviceName,
			PIN:        task.PIN,
		}, poweringOn)

	case TaskStandby:
		if err := sess.Standby(); err != nil {
			return err
		}
		c.mu.Lock()
		c.poweringOff = true
		c.mu.Unlock()
		return nil

	case TaskStartTitle:
		ok, err := sess.StartTitle(ctx, task.TitleID)
		if err != nil {
			return err
		}
		if ok && task.PreviousTitleID != "" && task.PreviousTitleID != task.TitleID {
			time.AfterFunc(time.Second, func() {
				_ = c.RemoteControl(context.Background(), "enter", 0)
			})
		}
		return nil

	case TaskRemoteControl:
		op, holdMs, err := ButtonOpcode(task.Button, task.HoldMs)
		if err != nil {
			return err
		}
		return sess.RemoteControl(op, holdMs)

	default:
		return pyps4err.ErrNotReady
	}
}

// connectAndDrain opens (or reuses) the console's TCP session, logs in,
// then atomically pops and runs the pending task. It holds the command
// slot across the whole operation, matching the ordering guarantee that a
// remote-control micro-sequence or login cannot interleave with any other
// command's frames.
func (c *Console) connectAndDrain(ctx context.Context) {
	if err := c.acquireSlot(ctx); err != nil {
		c.log.Warn().Err(err).Msg("connectAndDrain: could not acquire command slot")
		return
	}
	defer c.releaseSlot()

	c.mu.Lock()
	alreadyReady := c.sess != nil && c.connState == LoggedIn
	poweringOn := c.poweringOn
	pin := ""
	if c.pendingTask != nil && c.pendingTask.Kind == TaskLogin {
		pin = c.pendingTask.PIN
	}
	c.mu.Unlock()

	if !alreadyReady {
		opts := append([]session.Option{session.WithControlPort(c.port)}, c.dialOpts...)
		sess, err := session.Connect(ctx, c.host, c.credential, opts...)
		if err != nil {
			c.log.Warn().Err(err).Msg("connect failed")
			return
		}
		c.mu.Lock()
		c.sess = sess
		c.connState = TCPConnected
		c.mu.Unlock()

		if err := sess.Login(session.LoginCredentials{
			Credential: c.credential,
			DeviceName: c.deviceName,
			PIN:        pin,
		}, poweringOn); err != nil {
			c.log.Warn().Err(err).Msg("login failed")
			sess.Close()
			c.mu.Lock()
			c.sess = nil
			c.connState = Disconnected
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		c.connState = LoggedIn
		c.mu.Unlock()
	}

	c.mu.Lock()
	pending := c.pendingTask
	c.pendingTask = nil
	c.mu.Unlock()

	if pending == nil {
		return
	}
	if err := c.runTaskLocked(ctx, pending); err != nil {
		c.log.Warn().Err(err).Msg("pending task failed")
	}
}

func (c *Console) acquireSlot(ctx context.Context) error {
	select {
	case <-c.slot:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Console) releaseSlot() {
	c.slot <- struct{}{}
}
