// Command bilistd is a line-oriented host process for the bilist
// container: it reads one command per line from stdin, dispatches it,
// and prints the reply, loading a snapshot at startup and writing one
// back on a save or shutdown command.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattkeenan/bilist"
	"github.com/mattkeenan/bilist/codec"
	"github.com/mattkeenan/bilist/dispatch"
	"github.com/mattkeenan/bilist/sched"
	"golang.org/x/sys/unix"
)

func main() {
	snapshotPath := flag.String("snapshot", "bilist.snapshot", "path to the snapshot file used by save/load")
	defaultKey := flag.String("key", "default", "container key save/load operate on when none is given")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	clock := sched.WallClock{}
	scheduler := sched.TimerScheduler{}
	d := dispatch.New(clock, scheduler)

	if err := loadSnapshot(d, *snapshotPath, *defaultKey); err != nil {
		log.Printf("no snapshot loaded from %s: %v", *snapshotPath, err)
	} else {
		log.Printf("loaded snapshot from %s into key %q", *snapshotPath, *defaultKey)
	}

	log.Printf("bilistd ready, reading commands from stdin")
	runRepl(os.Stdin, os.Stdout, d, *snapshotPath, *defaultKey)
}

func loadSnapshot(d *dispatch.Dispatcher, path, key string) error {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	c := codec.NewFileCodec(fd)
	return d.LoadInto(key, c)
}

func saveSnapshot(d *dispatch.Dispatcher, path, key string) error {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	c := codec.NewFileCodec(fd)
	if err := d.Save(key, c); err != nil {
		return err
	}
	return c.Sync()
}

func runRepl(in *os.File, out *os.File, d *dispatch.Dispatcher, snapshotPath, defaultKey string) {
	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		name := strings.ToLower(fields[0])
		args := fields[1:]

		switch name {
		case "save":
			key := defaultKey
			if len(args) > 0 {
				key = args[0]
			}
			if err := saveSnapshot(d, snapshotPath, key); err != nil {
				fmt.Fprintf(w, "ERR %v\n", err)
			} else {
				fmt.Fprintln(w, "OK")
			}
		case "shutdown":
			if err := saveSnapshot(d, snapshotPath, defaultKey); err != nil {
				log.Printf("shutdown save failed: %v", err)
			}
			w.Flush()
			return
		default:
			reply, err := d.Execute(name, args)
			if err != nil {
				fmt.Fprintf(w, "ERR %v\n", err)
				break
			}
			writeReply(w, reply)
		}
		w.Flush()
	}
	if err := scanner.Err(); err != nil {
		log.Printf("input error: %v", err)
	}
}

func writeReply(w *bufio.Writer, reply any) {
	switch v := reply.(type) {
	case nil:
		fmt.Fprintln(w, "(nil)")
	case string:
		fmt.Fprintln(w, v)
	case int64:
		fmt.Fprintln(w, v)
	case []bilist.Pair:
		for _, p := range v {
			fmt.Fprintf(w, "%s => %s\n", p.Key, p.Value)
		}
	case []bilist.AllEntry:
		for _, e := range v {
			fmt.Fprintf(w, "%s %s => %s (ttl=%d)\n", e.K1, e.K2, e.Value, e.TTLRemaining)
		}
	default:
		fmt.Fprintf(w, "%v\n", v)
	}
}
