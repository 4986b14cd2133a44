// Package dispatch is the reference host command surface for bilist:
// it owns a registry of named containers and translates a small
// command table into calls against the bilist package. The core
// container never imports this package — the dispatcher is a
// collaborator outside the data-structure core, kept here only so the
// module is runnable end to end.
package dispatch

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/mattkeenan/bilist"
	"github.com/mattkeenan/bilist/host"
)

// Dispatcher parses command arguments and routes them to the named
// container, creating one on first use the way a Redis module's
// RedisModule_OpenKey-and-create-if-empty pattern does.
type Dispatcher struct {
	mu        sync.Mutex
	registry  map[string]any
	clock     host.Clock
	scheduler host.Scheduler
}

// New returns an empty Dispatcher. clock and scheduler are threaded
// through to every container it creates.
func New(clock host.Clock, scheduler host.Scheduler) *Dispatcher {
	return &Dispatcher{
		registry:  make(map[string]any),
		clock:     clock,
		scheduler: scheduler,
	}
}

func (d *Dispatcher) containerFor(key string, createIfMissing bool) (*bilist.Container, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.registry[key]
	if !ok {
		if !createIfMissing {
			return nil, nil
		}
		c := bilist.New(d.clock, d.scheduler)
		d.registry[key] = c
		return c, nil
	}

	c, ok := v.(*bilist.Container)
	if !ok {
		return nil, ErrWrongType
	}
	return c, nil
}

// Execute runs one command, given as its name followed by its
// arguments (the command name is not repeated in args). It returns a
// reply whose dynamic type depends on the command: string, int64,
// nil, []bilist.Pair, or []bilist.AllEntry.
func (d *Dispatcher) Execute(name string, args []string) (any, error) {
	switch name {
	case "ckey":
		return d.ckey(args)
	case "set":
		return d.set(args)
	case "get":
		return d.get(args)
	case "get1":
		return d.get1(args)
	case "get2":
		return d.get2(args)
	case "del":
		return d.del(args)
	case "count":
		return d.count(args)
	case "all":
		return d.all(args)
	case "type":
		return d.typeOf(args)
	default:
		return nil, ErrUnknownCommand
	}
}

func requireArgs(args []string, n int) error {
	if len(args) != n {
		return ErrWrongArity
	}
	return nil
}

func (d *Dispatcher) ckey(args []string) (any, error) {
	if err := requireArgs(args, 2); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return nil, ErrInvalidCountParameter
	}
	c, err := d.containerFor(args[0], true)
	if err != nil {
		return nil, err
	}
	return c.CKey(n), nil
}

func (d *Dispatcher) set(args []string) (any, error) {
	if err := requireArgs(args, 5); err != nil {
		return nil, err
	}
	ttl, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil {
		return nil, ErrInvalidExpireTime
	}
	c, err := d.containerFor(args[0], true)
	if err != nil {
		return nil, err
	}
	c.Set(args[1], args[2], args[3], ttl)
	return "OK", nil
}

func (d *Dispatcher) get(args []string) (any, error) {
	if err := requireArgs(args, 3); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	v, ok := c.Get(args[1], args[2])
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (d *Dispatcher) get1(args []string) (any, error) {
	if err := requireArgs(args, 2); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []bilist.Pair{}, nil
	}
	return c.ScanByPrimary(args[1]), nil
}

func (d *Dispatcher) get2(args []string) (any, error) {
	if err := requireArgs(args, 2); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []bilist.Pair{}, nil
	}
	return c.ScanBySecondary(args[1]), nil
}

func (d *Dispatcher) del(args []string) (any, error) {
	if err := requireArgs(args, 3); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return int64(0), nil
	}
	if c.Del(args[1], args[2]) {
		return int64(1), nil
	}
	return int64(0), nil
}

func (d *Dispatcher) count(args []string) (any, error) {
	if err := requireArgs(args, 1); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return int64(0), nil
	}
	return int64(c.Count()), nil
}

func (d *Dispatcher) all(args []string) (any, error) {
	if err := requireArgs(args, 1); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []bilist.AllEntry{}, nil
	}
	return c.All(), nil
}

func (d *Dispatcher) typeOf(args []string) (any, error) {
	if err := requireArgs(args, 1); err != nil {
		return nil, err
	}
	c, err := d.containerFor(args[0], false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	return fmt.Sprintf("%s v%d", bilist.SnapshotTypeName, bilist.SnapshotVersion), nil
}

// Save snapshots the named container through codec. It is an error to
// save a key that doesn't hold a container.
func (d *Dispatcher) Save(key string, codec host.Codec) error {
	c, err := d.containerFor(key, false)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("ERR no such key: %s", key)
	}
	return c.Save(codec)
}

// LoadInto reads a snapshot through codec and installs it under key,
// replacing and closing whatever container was previously there.
func (d *Dispatcher) LoadInto(key string, codec host.Codec) error {
	loaded, err := bilist.Load(codec, d.clock, d.scheduler)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.registry[key].(*bilist.Container); ok {
		old.Close()
	}
	d.registry[key] = loaded
	return nil
}
