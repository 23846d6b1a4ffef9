package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
)

// layoutSuffix keeps default outputs from overwriting a JSON kitchen
// document.
const layoutSuffix = "-layout"

// basePath returns the path that outputs are written to, without extension.
// With no -o flag it is the input path with its extension replaced by
// "-layout"; a layout input keeps its name.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		if strings.HasSuffix(base, layoutSuffix) {
			return base
		}
		return base + layoutSuffix
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where one format is written. A single format with an
// explicit output path is written exactly there.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return basePath(output, input) + "." + format
}

// writeArtifacts writes each rendered format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := outputPath(output, input, f, len(formats) == 1)
		if err := errors.ValidatePath(path); err != nil {
			return paths, err
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
