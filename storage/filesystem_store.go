package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"basic-cleaning/models"
)

const manifestFile = "manifest.json"

// FilesystemStore keeps artifacts under a local root directory:
//
//	<root>/artifacts/<name>/manifest.json
//	<root>/artifacts/<name>/v<N>/<file>
//	<root>/runs/<run-id>.json
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates the root layout if needed.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	for _, dir := range []string{"artifacts", "runs"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("fsstore: create %s dir: %w", dir, err)
		}
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) StartRun(_ context.Context, run *models.Run) error {
	return s.writeRun(run)
}

func (s *FilesystemStore) FinishRun(_ context.Context, run *models.Run) error {
	return s.writeRun(run)
}

func (s *FilesystemStore) UseArtifact(_ context.Context, run *models.Run, ref string) (string, error) {
	parsed, err := models.ParseArtifactRef(ref)
	if err != nil {
		return "", fmt.Errorf("fsstore: %w", err)
	}
	if err := validateName(parsed.Name); err != nil {
		return "", fmt.Errorf("fsstore: %w", err)
	}

	versions, err := s.readManifest(parsed.Name)
	if err != nil {
		return "", err
	}
	a, err := pickVersion(versions, parsed)
	if err != nil {
		return "", fmt.Errorf("fsstore: %w", err)
	}

	path := filepath.Join(s.versionDir(a.Name, a.Version), a.File)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("fsstore: artifact %s: %w", a.Ref(), err)
	}
	run.Used = append(run.Used, a.Ref())
	return path, nil
}

func (s *FilesystemStore) LogArtifact(_ context.Context, run *models.Run, a *models.Artifact) (*models.Artifact, error) {
	if err := validateName(a.Name); err != nil {
		return nil, fmt.Errorf("fsstore: %w", err)
	}
	digest, size, err := fileDigest(a.File)
	if err != nil {
		return nil, fmt.Errorf("fsstore: %w", err)
	}

	versions, err := s.readManifest(a.Name)
	if err != nil && !errors.Is(err, ErrArtifactNotFound) {
		return nil, err
	}

	if n := len(versions); n > 0 && versions[n-1].Digest == digest {
		latest := versions[n-1]
		run.Logged = append(run.Logged, latest.Ref())
		return &latest, nil
	}

	stored := models.Artifact{
		ID:          uuid.NewString(),
		Name:        a.Name,
		Version:     len(versions),
		Type:        a.Type,
		Description: a.Description,
		File:        filepath.Base(a.File),
		Digest:      digest,
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}

	dir := s.versionDir(stored.Name, stored.Version)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("fsstore: create version dir: %w", err)
	}
	if err := copyFile(a.File, filepath.Join(dir, stored.File)); err != nil {
		return nil, fmt.Errorf("fsstore: store %s: %w", stored.Ref(), err)
	}

	versions = append(versions, stored)
	if err := s.writeManifest(stored.Name, versions); err != nil {
		return nil, err
	}

	run.Logged = append(run.Logged, stored.Ref())
	return &stored, nil
}

// Close is a no-op; the store holds no open handles.
func (s *FilesystemStore) Close() error { return nil }

func (s *FilesystemStore) artifactDir(name string) string {
	return filepath.Join(s.root, "artifacts", name)
}

func (s *FilesystemStore) versionDir(name string, version int) string {
	return filepath.Join(s.artifactDir(name), fmt.Sprintf("v%d", version))
}

func (s *FilesystemStore) readManifest(name string) ([]models.Artifact, error) {
	data, err := os.ReadFile(filepath.Join(s.artifactDir(name), manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("fsstore: %q: %w", name, ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fsstore: read manifest for %q: %w", name, err)
	}

	var versions []models.Artifact
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, fmt.Errorf("fsstore: decode manifest for %q: %w", name, err)
	}
	return versions, nil
}

func (s *FilesystemStore) writeManifest(name string, versions []models.Artifact) error {
	data, err := json.MarshalIndent(versions, "", "  ")
	if err != nil {
		return fmt.Errorf("fsstore: encode manifest: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.artifactDir(name), manifestFile), data)
}

func (s *FilesystemStore) writeRun(run *models.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("fsstore: encode run: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.root, "runs", run.ID+".json"), data)
}

// pickVersion resolves an alias against a manifest ordered by version.
func pickVersion(versions []models.Artifact, ref models.ArtifactRef) (models.Artifact, error) {
	if len(versions) == 0 {
		return models.Artifact{}, fmt.Errorf("%s: %w", ref, ErrArtifactNotFound)
	}
	want := ref.Version()
	if want < 0 {
		return versions[len(versions)-1], nil
	}
	for _, v := range versions {
		if v.Version == want {
			return v, nil
		}
	}
	return models.Artifact{}, fmt.Errorf("%s: %w", ref, ErrArtifactNotFound)
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}

func fileDigest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("fsstore: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("fsstore: rename %q: %w", tmp, err)
	}
	return nil
}
