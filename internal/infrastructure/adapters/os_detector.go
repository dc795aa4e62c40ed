package adapters

import (
	"bufio"
	"strings"

	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"
)

// RealOSDetector is an OSDetector implementation that reads os-release
type RealOSDetector struct {
	fileSystem  interfaces.FileSystem
	releasePath string
}

// NewRealOSDetector creates a new RealOSDetector
func NewRealOSDetector(fs interfaces.FileSystem, releasePath string) interfaces.OSDetector {
	return &RealOSDetector{
		fileSystem:  fs,
		releasePath: releasePath,
	}
}

// DetectOS returns the distribution name and version from os-release
func (d *RealOSDetector) DetectOS() (interfaces.OSInfo, error) {
	releaseInfo, err := d.parseOSRelease()
	if err != nil {
		return interfaces.OSInfo{}, errors.NewSystemError("OS detection failed: cannot read "+d.releasePath, err)
	}

	info := interfaces.OSInfo{
		ID:        releaseInfo["ID"],
		IDLike:    releaseInfo["ID_LIKE"],
		Name:      releaseInfo["NAME"],
		VersionID: releaseInfo["VERSION_ID"],
	}
	if info.Name == "" && info.ID == "" {
		return interfaces.OSInfo{}, errors.NewSystemError("OS detection failed: no NAME or ID field in "+d.releasePath, nil)
	}

	return info, nil
}

// parseOSRelease parses os-release and returns it as a map.
func (d *RealOSDetector) parseOSRelease() (map[string]string, error) {
	content, err := d.fileSystem.ReadFile(d.releasePath)
	if err != nil {
		return nil, err
	}

	releaseInfo := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
			releaseInfo[key] = value
		}
	}

	return releaseInfo, scanner.Err()
}
