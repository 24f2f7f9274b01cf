package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ParseLabels turns a label resource into an ordered label table.
// Lines may carry an "index: name" prefix; only the part after the first
// colon is kept. Blank entries are dropped.
func ParseLabels(text string) []string {
	lines := strings.Split(text, "\n")
	labels := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, name, ok := strings.Cut(line, ":"); ok {
			line = name
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	return labels
}

// readResource reads a local file or, for http(s) locations, fetches it.
func readResource(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.ReadFile(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
