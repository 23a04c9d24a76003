package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/embeddb/firelocal/internal/listener"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// readValueArg resolves a value argument that is either literal JSON or,
// prefixed with '@', a path to a file containing JSON.
func readValueArg(arg string) ([]byte, error) {
	if len(arg) > 0 && arg[0] == '@' {
		return os.ReadFile(arg[1:])
	}
	return []byte(arg), nil
}

var getCmd = &cobra.Command{
	Use:   "get PATH",
	Short: "Fetch the document at PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		payload, err := e.Get(args[0])
		if err != nil {
			return err
		}
		if payload == nil {
			fmt.Println("(not found)")
			return nil
		}
		fmt.Println(string(payload))
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put PATH VALUE",
	Short: "Replace the document at PATH with VALUE (JSON, or @file)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		value, err := readValueArg(args[1])
		if err != nil {
			return fmt.Errorf("read value: %w", err)
		}
		if err := e.Put(args[0], value); err != nil {
			return err
		}
		fmt.Printf("put %s\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete PATH",
	Short: "Delete the document at PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

// batchEntry is one operation in a --file-supplied batch document.
type batchEntry struct {
	Op      string              `json:"op"`
	Path    string              `json:"path"`
	Value   jsoniter.RawMessage `json:"value,omitempty"`
	Partial jsoniter.RawMessage `json:"partial,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Commit a JSON array of {op,path,value|partial} entries as one atomic batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var entries []batchEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse batch file: %w", err)
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		b := e.NewBatch()
		for i, entry := range entries {
			switch entry.Op {
			case "set":
				b.Set(entry.Path, entry.Value)
			case "update":
				b.Update(entry.Path, entry.Partial)
			case "delete":
				b.Delete(entry.Path)
			default:
				return fmt.Errorf("entry %d: unknown op %q", i, entry.Op)
			}
		}

		if err := e.CommitBatch(b); err != nil {
			return err
		}
		fmt.Printf("committed batch of %d entries\n", b.Len())
		return nil
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Merge the live SST set, dropping shadowed records and tombstones",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := e.Compact()
		if err != nil {
			return err
		}
		fmt.Printf("files: %d -> %d, entries: %d -> %d, tombstones dropped: %d\n",
			stats.FilesBefore, stats.FilesAfter, stats.EntriesBefore, stats.EntriesAfter, stats.TombstonesRemoved)
		return nil
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Seal the active memtable into a new SST immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Flush(); err != nil {
			return err
		}
		fmt.Println("flushed")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the data directory this engine would open, for sanity-checking config",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Printf("data directory: %s\n", e.Dir())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch PREFIX",
	Short: "Print documents changed under PREFIX until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		id := e.Listen(listener.PrefixQuery{Prefix: args[0]}, func(matched []listener.Change) {
			for _, c := range matched {
				if c.Deleted {
					fmt.Printf("- %s\n", c.Path)
					continue
				}
				fmt.Printf("+ %s %s\n", c.Path, string(c.Payload))
			}
		})
		defer e.Unlisten(id)

		fmt.Printf("watching %s, press Ctrl+C to stop\n", args[0])
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}
