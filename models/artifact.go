package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AliasLatest resolves to the highest registered version.
const AliasLatest = "latest"

// Artifact is a named, versioned, immutable file registered with the store.
type Artifact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	File        string    `json:"file"` // local path on log, file name once stored
	Digest      string    `json:"digest"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ref renders the artifact as "name:vN".
func (a *Artifact) Ref() string {
	return fmt.Sprintf("%s:v%d", a.Name, a.Version)
}

// ArtifactRef is a parsed "name:alias" reference, e.g. "sample.csv:latest"
// or "sample.csv:v2".
type ArtifactRef struct {
	Name  string
	Alias string
}

// ParseArtifactRef splits a reference on its last colon. A missing alias
// means latest.
func ParseArtifactRef(ref string) (ArtifactRef, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ArtifactRef{}, fmt.Errorf("artifact ref: empty reference")
	}

	name, alias := ref, AliasLatest
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		name, alias = ref[:i], ref[i+1:]
	}
	if name == "" {
		return ArtifactRef{}, fmt.Errorf("artifact ref %q: empty name", ref)
	}
	if alias == "" {
		alias = AliasLatest
	}
	if alias != AliasLatest {
		if _, err := parseVersionAlias(alias); err != nil {
			return ArtifactRef{}, fmt.Errorf("artifact ref %q: %w", ref, err)
		}
	}
	return ArtifactRef{Name: name, Alias: alias}, nil
}

// Version returns the pinned version, or -1 for latest.
func (r ArtifactRef) Version() int {
	if r.Alias == AliasLatest {
		return -1
	}
	v, _ := parseVersionAlias(r.Alias)
	return v
}

func (r ArtifactRef) String() string {
	return r.Name + ":" + r.Alias
}

func parseVersionAlias(alias string) (int, error) {
	if !strings.HasPrefix(alias, "v") {
		return 0, fmt.Errorf("unknown alias %q", alias)
	}
	v, err := strconv.Atoi(alias[1:])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version alias %q", alias)
	}
	return v, nil
}
