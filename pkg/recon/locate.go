package recon

import (
	"os"
	"path/filepath"
	"sort"
)

// locateStrategy is one candidate-location rule. Strategies are evaluated
// in a fixed order and the first hit wins.
type locateStrategy func(baseDir, scanName string) (string, bool)

func conventionalNames(names ...string) locateStrategy {
	return func(baseDir, scanName string) (string, bool) {
		for _, name := range names {
			p := filepath.Join(baseDir, scanName, name)
			if fileExists(p) {
				return p, true
			}
		}
		return "", false
	}
}

func globScanDir(patterns ...string) locateStrategy {
	return func(baseDir, scanName string) (string, bool) {
		return firstGlobMatch(filepath.Join(baseDir, scanName), patterns)
	}
}

func globBaseDir(patterns ...string) locateStrategy {
	return func(baseDir, scanName string) (string, bool) {
		for _, pat := range patterns {
			matches, err := filepath.Glob(filepath.Join(baseDir, scanName+pat))
			if err != nil {
				continue
			}
			if path, ok := firstFile(matches); ok {
				return path, true
			}
		}
		return "", false
	}
}

var jsonStrategies = []locateStrategy{
	conventionalNames("output.json", "output.ndjson"),
	globScanDir("*.json", "*.ndjson"),
	globBaseDir("*.json", "*.ndjson"),
}

var textStrategies = []locateStrategy{
	conventionalNames("output.txt"),
	globScanDir("*.txt"),
	globBaseDir("*.txt"),
}

// LocateJSONArtifact finds the scanner's JSON or NDJSON output, if any.
func LocateJSONArtifact(baseDir, scanName string) (string, bool) {
	return locate(jsonStrategies, baseDir, scanName)
}

// LocateTextArtifact finds a plain-text output file for the degraded
// fallback parse.
func LocateTextArtifact(baseDir, scanName string) (string, bool) {
	return locate(textStrategies, baseDir, scanName)
}

func locate(strategies []locateStrategy, baseDir, scanName string) (string, bool) {
	for _, s := range strategies {
		if path, ok := s(baseDir, scanName); ok {
			return path, true
		}
	}
	return "", false
}

func firstGlobMatch(dir string, patterns []string) (string, bool) {
	for _, pat := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			continue
		}
		if path, ok := firstFile(matches); ok {
			return path, true
		}
	}
	return "", false
}

func firstFile(matches []string) (string, bool) {
	sort.Strings(matches)
	for _, m := range matches {
		if fileExists(m) {
			return m, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
