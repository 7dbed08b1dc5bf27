package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wot-td/wot-go/pkg/log"
)

// RunExport converts the log file at path to jsonl or csv, writing to output
// or stdout when output is empty.
func RunExport(path, format, output string) error {
	var write func(io.Writer) error
	switch format {
	case "jsonl":
		write = func(w io.Writer) error { return exportJSONL(path, w) }
	case "csv":
		write = func(w io.Writer) error { return exportCSV(path, w) }
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	if output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	return write(f)
}

func exportJSONL(path string, w io.Writer) error {
	enc := json.NewEncoder(w)
	return readFile(path, func(event log.Event) error {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

var csvHeader = []string{"timestamp", "connection_id", "direction", "layer", "category", "thing_id", "type", "message_id", "operation", "target", "block", "status"}

func exportCSV(path string, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return readFile(path, func(event log.Event) error {
		var msgID, op, target, block, status string
		if m := event.Message; m != nil {
			msgID = strconv.FormatUint(uint64(m.MessageID), 10)
			target = m.Target
			if m.Operation != nil {
				op = m.Operation.String()
			}
			if m.Block != nil {
				block = strconv.FormatUint(uint64(m.Block.Num), 10)
			}
			if m.Status != nil {
				status = m.Status.String()
			}
		}
		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.ConnectionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.ThingID,
			eventType(event),
			msgID,
			op,
			target,
			block,
			status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
}
