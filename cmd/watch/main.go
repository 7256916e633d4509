package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"integritywatch/pkg/logger"
	"integritywatch/pkg/utils"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "live sync feed address")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	once := flag.Bool("once", false, "exit after the first sync.done event")
	flag.Parse()

	log := logger.Must(utils.LogConfig{Level: "info", Dev: true}).Named("watch")
	defer log.Sync()

	for {
		done, err := run(log, *addr, *pretty, *once, os.Stdout)
		if done {
			return
		}
		if err != nil {
			log.Warn("disconnected", zap.Error(err))
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

// run prints the feed until the connection drops. It reports done when
// once is set and a run finished.
func run(log *zap.Logger, addr string, pretty, once bool, out io.Writer) (bool, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Info("connected", zap.String("addr", addr))
	return printFeed(conn, pretty, once, out)
}

func printFeed(in io.Reader, pretty, once bool, out io.Writer) (bool, error) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Bytes()

		var ev struct {
			Type string `json:"type"`
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			// not JSON? print raw
			fmt.Fprintln(out, string(line))
			continue
		}
		_ = json.Unmarshal(line, &ev)

		if pretty {
			b, _ := json.MarshalIndent(obj, "", "  ")
			fmt.Fprintln(out, string(b))
		} else {
			fmt.Fprintln(out, string(line))
		}

		if once && ev.Type == "sync.done" {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, err
	}
	return false, io.EOF
}
