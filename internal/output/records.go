package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/yairfalse/corestab/pkg/stability"
	"gopkg.in/yaml.v3"
)

// JSONIndent matches the layout of existing dmesg_logs.json files
const JSONIndent = "   "

// WriteRecords serializes records as a JSON array or a YAML sequence.
// An empty or nil slice is written as an empty array.
func WriteRecords(w io.Writer, records []stability.Record, format string) error {
	if records == nil {
		records = []stability.Record{}
	}

	switch format {
	case "json", "":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", JSONIndent)
		encoder.SetEscapeHTML(false)
		return encoder.Encode(records)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(records); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile writes records to path. "-" means stdout and a ".zst" suffix
// compresses the file with zstd.
func WriteFile(path string, records []stability.Record, format string) (err error) {
	if path == "-" {
		return WriteRecords(os.Stdout, records, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return WriteRecords(f, records, format)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := WriteRecords(enc, records, format); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
