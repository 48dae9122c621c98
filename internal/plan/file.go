package plan

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode writes p as indented JSON.
func Encode(w io.Writer, p *Plan) error {
	if p == nil {
		return fmt.Errorf("plan: nil plan")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(p)
}

// Write creates (or truncates) path and writes p to it. The file is always
// closed; a failed write removes the partial file.
func Write(path string, p *Plan) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("plan: close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	bw := bufio.NewWriterSize(f, 64*1024)
	if err := Encode(bw, p); err != nil {
		return fmt.Errorf("plan: encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("plan: write %s: %w", path, err)
	}
	return nil
}

// Read decodes a .plan document.
func Read(r io.Reader) (*Plan, error) {
	var p Plan
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("plan: decode: %w", err)
	}
	if p.FileType != FileType {
		return nil, fmt.Errorf("plan: fileType %q, want %q", p.FileType, FileType)
	}
	return &p, nil
}

func ReadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	defer f.Close()
	return Read(f)
}
