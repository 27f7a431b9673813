// Command algofab-ctl is a small CLI client for the algofab server,
// mirroring the original Python easyapi_client's submit/status/cancel
// surface, built on the same worldline-go/klient HTTP client the
// "remote" algorithm type uses server-side.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/worldline-go/klient"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "algofab server base URL")
	id := fs.String("id", "", "easyapi-id credential")
	key := fs.String("key", "", "easyapi-key credential")
	algo := fs.String("algorithm", "", "algorithm id to invoke")
	input := fs.String("input", "{}", "JSON-encoded algorithm input")
	task := fs.String("task", "", "task id")
	_ = fs.Parse(os.Args[2:])

	client, err := klient.New(klient.WithDisableBaseURLCheck(true))
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	headers := map[string]string{"easyapi-id": *id, "easyapi-key": *key}

	switch cmd {
	case "list":
		var out any
		if err := client.Do(ctx, klient.Request{Method: "GET", URL: *server + "/entries/", Header: headers}, &out); err != nil {
			fatal(err)
		}
		printJSON(out)

	case "submit":
		var payload map[string]any
		if err := json.Unmarshal([]byte(*input), &payload); err != nil {
			fatal(fmt.Errorf("parse -input: %w", err))
		}
		var out map[string]any
		if err := client.Do(ctx, klient.Request{Method: "POST", URL: *server + "/entries/" + *algo, Header: headers, Body: payload}, &out); err != nil {
			fatal(err)
		}
		printJSON(out)

	case "status":
		var out map[string]any
		if err := client.Do(ctx, klient.Request{Method: "GET", URL: *server + "/tasks/" + *task, Header: headers}, &out); err != nil {
			fatal(err)
		}
		printJSON(out)

	case "wait":
		for {
			var out map[string]any
			if err := client.Do(ctx, klient.Request{Method: "GET", URL: *server + "/tasks/" + *task, Header: headers}, &out); err != nil {
				fatal(err)
			}
			if _, stillRunning := out["status"]; !stillRunning {
				printJSON(out)
				return
			}
			time.Sleep(500 * time.Millisecond)
		}

	case "cancel":
		var out map[string]any
		if err := client.Do(ctx, klient.Request{Method: "POST", URL: *server + "/tasks/" + *task + "/cancel", Header: headers}, &out); err != nil {
			fatal(err)
		}
		printJSON(out)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: algofab-ctl <list|submit|status|wait|cancel> [flags]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "algofab-ctl:", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
