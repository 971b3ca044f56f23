package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"astarviz/internal/grid"
	"astarviz/internal/network"
)

type stateReply struct {
	State    string          `json:"state"`
	Start    grid.Position   `json:"start"`
	Target   grid.Position   `json:"target"`
	Explored []grid.Position `json:"explored"`
	Blocked  []grid.Position `json:"blocked"`
	Path     []grid.Position `json:"path"`
	Steps    int             `json:"steps"`
	Cost     int             `json:"cost"`
}

func main() {
	server := flag.String("server", "http://127.0.0.1:28080", "search server base URL")
	x := flag.Int("x", 0, "cell X for blocked/start/target")
	y := flag.Int("y", 0, "cell Y for blocked/start/target")
	seed := flag.String("seed", "", "noise seed for generate (empty uses the server default)")
	name := flag.String("name", "", "scenario name for save/load")
	wait := flag.Bool("wait", false, "after run, poll until the search finishes and print the path")
	timeout := flag.Duration("timeout", 30*time.Second, "overall request timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] state|run|reset|blocked|start|target|generate|scenarios|save|load|events\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	c := &client{base: *server, http: &http.Client{}}

	cell := url.Values{"x": {strconv.Itoa(*x)}, "y": {strconv.Itoa(*y)}}
	var err error
	switch cmd := flag.Arg(0); cmd {
	case "state":
		err = c.printState(ctx)
	case "run":
		if err = c.post(ctx, "/run", nil, io.Discard); err == nil && *wait {
			err = c.waitFinished(ctx)
		}
		if err == nil {
			err = c.printState(ctx)
		}
	case "reset":
		err = c.post(ctx, "/reset", nil, io.Discard)
	case "blocked", "start", "target":
		err = c.post(ctx, "/"+cmd, cell, io.Discard)
	case "generate":
		q := url.Values{}
		if *seed != "" {
			q.Set("seed", *seed)
		}
		err = c.post(ctx, "/obstacles/generate", q, os.Stdout)
	case "scenarios":
		err = c.get(ctx, "/scenarios", os.Stdout)
	case "save":
		err = c.post(ctx, "/scenarios/save", url.Values{"name": {*name}}, io.Discard)
	case "load":
		err = c.post(ctx, "/scenarios/load", url.Values{"name": {*name}}, io.Discard)
	case "events":
		err = c.events(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

type client struct {
	base string
	http *http.Client
}

func (c *client) do(ctx context.Context, method, path string, q url.Values) (*http.Response, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, body)
	}
	return resp, nil
}

func (c *client) get(ctx context.Context, path string, out io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(out, resp.Body)
	return err
}

func (c *client) post(ctx context.Context, path string, q url.Values, out io.Writer) error {
	resp, err := c.do(ctx, http.MethodPost, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(out, resp.Body)
	return err
}

func (c *client) state(ctx context.Context) (stateReply, error) {
	resp, err := c.do(ctx, http.MethodGet, "/state", nil)
	if err != nil {
		return stateReply{}, err
	}
	defer resp.Body.Close()
	var st stateReply
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return stateReply{}, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

func (c *client) waitFinished(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		st, err := c.state(ctx)
		if err != nil {
			return err
		}
		if st.State != "running" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *client) printState(ctx context.Context) error {
	st, err := c.state(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("State: %s\n", st.State)
	fmt.Printf("Start %v, target %v, %d blocked, %d explored\n", st.Start, st.Target, len(st.Blocked), len(st.Explored))
	if len(st.Path) == 0 {
		return nil
	}
	fmt.Printf("Path (%d steps, cost %d):\n", st.Steps, st.Cost)
	for i, p := range st.Path {
		fmt.Printf(" %d: %v\n", i, p)
	}
	return nil
}

func (c *client) events(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/events", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		env, err := network.Decode(scanner.Bytes())
		if err != nil {
			return fmt.Errorf("decode envelope: %w", err)
		}
		switch env.Type {
		case network.MessageState, network.MessageReset:
			state, err := env.State()
			if err != nil {
				return err
			}
			fmt.Printf("%6d %-8s %s\n", env.Seq, env.Type, state)
		default:
			pos, err := env.Cell()
			if err != nil {
				return err
			}
			fmt.Printf("%6d %-8s %v\n", env.Seq, env.Type, pos)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
