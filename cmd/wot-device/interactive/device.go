// Package interactive provides the interactive command-line interface
// for the WoT device.
package interactive

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/service"
	"github.com/wot-td/wot-go/pkg/tdjson"
)

// Status reports what the shell shows in the status command.
type Status interface {
	// FramedAddr is the framed binding address, or "" when not listening.
	FramedAddr() string

	// HTTPAddr is the HTTP binding address, or "" when not listening.
	HTTPAddr() string

	// Connections is the number of framed clients.
	Connections() int
}

// Device handles interactive mode for wot-device.
type Device struct {
	host   *service.Host
	status Status
	rl     *readline.Instance
}

// New creates a new interactive device handler.
func New(host *service.Host, status Status) (*Device, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "thing> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	d := &Device{host: host, status: status, rl: rl}
	host.OnEvent(d.handleEvent)
	return d, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (d *Device) Stdout() io.Writer {
	return d.rl.Stdout()
}

// Run starts the interactive command loop.
func (d *Device) Run(ctx context.Context, cancel context.CancelFunc) {
	defer d.rl.Close()

	d.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := d.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(d.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			d.printHelp()

		case "td":
			d.cmdTD(args)

		case "info":
			d.cmdInfo()

		case "props", "p":
			d.cmdProps()

		case "read", "r":
			d.cmdRead(args)

		case "write", "w":
			d.cmdWrite(args)

		case "invoke", "i":
			d.cmdInvoke(args)

		case "title":
			d.cmdTitle(args)

		case "status":
			d.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(d.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(d.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (d *Device) printHelp() {
	fmt.Fprintln(d.rl.Stdout(), `
Thing Commands:
  Description:
    td [offset size]      - Print the Thing Description (or a byte window)
    info                  - Show document size and ETag
    title <text>          - Change the title (invalidates running transfers)

  Interactions:
    props                 - List properties and their values
    read <key>            - Read a property
    write <key> <value>   - Write a property (value as JSON)
    invoke <key> [input]  - Invoke an action (input as JSON)

  General:
    status                - Show bindings and connections
    help                  - Show this help
    quit                  - Exit device`)
}

// cmdTD prints the document or a window of it.
func (d *Device) cmdTD(args []string) {
	window := tdjson.Full()
	if len(args) == 2 {
		offset, err1 := strconv.ParseInt(args[0], 10, 64)
		size, err2 := strconv.ParseInt(args[1], 10, 64)
		if err1 != nil || err2 != nil || offset < 0 || size <= 0 {
			fmt.Fprintln(d.rl.Stdout(), "Usage: td [offset size]")
			return
		}
		window = tdjson.NewWindow(offset, size)
	} else if len(args) != 0 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: td [offset size]")
		return
	}

	if err := d.host.WriteDescription(d.rl.Stdout(), window); err != nil {
		fmt.Fprintf(d.rl.Stdout(), "\nError: %v\n", err)
		return
	}
	fmt.Fprintln(d.rl.Stdout())
}

// cmdInfo shows the document size and ETag.
func (d *Device) cmdInfo() {
	size, etag, err := d.host.DescriptionInfo()
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(d.rl.Stdout(), "  Size:  %d bytes\n", size)
	fmt.Fprintf(d.rl.Stdout(), "  ETag:  %s\n", hex.EncodeToString(etag))
}

// cmdProps lists properties with their current values.
func (d *Device) cmdProps() {
	ctx := context.Background()
	for _, key := range d.host.PropertyKeys() {
		v, err := d.host.ReadProperty(ctx, key)
		if err != nil {
			fmt.Fprintf(d.rl.Stdout(), "  %-12s (%v)\n", key, err)
			continue
		}
		fmt.Fprintf(d.rl.Stdout(), "  %-12s %v\n", key, v)
	}
	if keys := d.host.ActionKeys(); len(keys) > 0 {
		fmt.Fprintf(d.rl.Stdout(), "  actions: %s\n", strings.Join(keys, ", "))
	}
}

// cmdRead handles the read command.
func (d *Device) cmdRead(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: read <key>")
		return
	}
	v, err := d.host.ReadProperty(context.Background(), args[0])
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(d.rl.Stdout(), "%s = %v\n", args[0], v)
}

// cmdWrite handles the write command.
func (d *Device) cmdWrite(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: write <key> <value>")
		fmt.Fprintln(d.rl.Stdout(), "  Example: write brightness 40")
		return
	}
	value := parseValue(strings.Join(args[1:], " "))
	if err := d.host.WriteProperty(context.Background(), args[0], value); err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Write failed: %v\n", err)
		return
	}
	fmt.Fprintln(d.rl.Stdout(), "OK")
}

// cmdInvoke handles the invoke command.
func (d *Device) cmdInvoke(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: invoke <key> [input]")
		fmt.Fprintln(d.rl.Stdout(), `  Example: invoke fade {"to":20,"seconds":2}`)
		return
	}
	var input any
	if len(args) > 1 {
		input = parseValue(strings.Join(args[1:], " "))
	}
	out, err := d.host.InvokeAction(context.Background(), args[0], input)
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Invoke failed: %v\n", err)
		return
	}
	if out != nil {
		fmt.Fprintf(d.rl.Stdout(), "-> %v\n", out)
		return
	}
	fmt.Fprintln(d.rl.Stdout(), "OK")
}

// cmdTitle replaces the title in the default language.
func (d *Device) cmdTitle(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: title <text>")
		return
	}
	text := strings.Join(args, " ")
	err := d.host.Update(func(t *model.Thing) error {
		if m := model.FindLang(&t.Titles, t.DefaultLanguage); m != nil {
			m.Value = text
			return nil
		}
		return t.Titles.Add(&model.MultiLang{Tag: t.DefaultLanguage, Value: text})
	})
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(d.rl.Stdout(), "OK")
}

// cmdStatus shows the device status.
func (d *Device) cmdStatus() {
	out := d.rl.Stdout()
	fmt.Fprintln(out, "\nDevice Status")
	fmt.Fprintln(out, "-------------------------------------------")
	d.host.View(func(t *model.Thing) {
		fmt.Fprintf(out, "  Thing:          %s\n", t.Title())
		fmt.Fprintf(out, "  ID:             %s\n", t.ID.String())
	})
	fmt.Fprintf(out, "  Framed binding: %s\n", orNone(d.status.FramedAddr()))
	fmt.Fprintf(out, "  HTTP binding:   %s\n", orNone(d.status.HTTPAddr()))
	fmt.Fprintf(out, "  Connections:    %d\n", d.status.Connections())
	fmt.Fprintln(out)
}

// handleEvent shows interactions made by remote clients.
func (d *Device) handleEvent(event service.Event) {
	switch event.Type {
	case service.EventPropertyWritten:
		fmt.Fprintf(d.rl.Stdout(), "[EVENT] %s = %v\n", event.Key, event.Value)
	case service.EventActionInvoked:
		fmt.Fprintf(d.rl.Stdout(), "[EVENT] %s invoked\n", event.Key)
	case service.EventThingUpdated:
		fmt.Fprintln(d.rl.Stdout(), "[EVENT] thing description changed")
	}
}

// parseValue reads a JSON value, falling back to the raw text as a string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return int64(f)
		}
		return v
	}
	return strings.Trim(s, "\"'")
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
