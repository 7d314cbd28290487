package bundler

import (
	"slices"
	"strings"
)

// BuildMetadata is the subset of the esbuild metafile used after a build.
type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	Bytes      int          `json:"bytes"`
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path string `json:"path"`
}

// Chunks returns the sorted JS outputs that do not belong to an entry point.
func (m *BuildMetadata) Chunks() []string {
	chunks := []string{}
	for outputPath, info := range m.Outputs {
		if info.EntryPoint == "" && strings.HasSuffix(outputPath, ".js") {
			chunks = append(chunks, outputPath)
		}
	}
	slices.Sort(chunks)
	return chunks
}

// Entries returns the sorted entry points that produced a JS output.
func (m *BuildMetadata) Entries() []string {
	entries := []string{}
	for outputPath, info := range m.Outputs {
		if info.EntryPoint != "" && strings.HasSuffix(outputPath, ".js") && !slices.Contains(entries, info.EntryPoint) {
			entries = append(entries, info.EntryPoint)
		}
	}
	slices.Sort(entries)
	return entries
}

// Size returns the total size in bytes of the given outputs.
func (m *BuildMetadata) Size(outputs []string) int {
	total := 0
	for _, outputPath := range outputs {
		total += m.Outputs[outputPath].Bytes
	}
	return total
}

// Scripts returns the output for the given entry point followed by every
// output it imports, in discovery order.
func (m *BuildMetadata) Scripts(entryPoint string) ([]string, bool) {
	for outputPath, info := range m.Outputs {
		if info.EntryPoint != entryPoint || !strings.HasSuffix(outputPath, ".js") {
			continue
		}

		scripts := []string{outputPath}
		visited := map[string]bool{outputPath: true}
		m.addDependencies(info, &scripts, visited)
		return scripts, true
	}
	return nil, false
}

func (m *BuildMetadata) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, imp.Path)

		if chunkInfo, exists := m.Outputs[imp.Path]; exists {
			m.addDependencies(chunkInfo, scripts, visited)
		}
	}
}
