package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadURLFile loads a line-delimited URL list: one URL per line, blank lines
// ignored, surrounding whitespace trimmed.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()
	urls, err := ParseURLList(f)
	if err != nil {
		return nil, fmt.Errorf("read url file %s: %w", path, err)
	}
	return urls, nil
}

// ParseURLList parses the line-delimited URL format from a reader.
func ParseURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan url list: %w", err)
	}
	return urls, nil
}
