package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/lintgate/internal/config"
)

// keyVersion invalidates every existing entry when bumped. Bump it whenever
// the Entry schema or the meaning of a stored finding changes.
const keyVersion = "1"

// Keyer computes per-tool cache keys for one run. The inputs every tool
// shares are digested once at construction: the path and content of every
// regular file beneath the targets, in target order with .git and
// .lintgate subtrees skipped, plus the exclude globs, because stored
// findings have already been filtered through them. Key then only folds
// in the tool
// configuration, so a run with many tools walks the tree a single time.
type Keyer struct {
	runDigest string
}

// NewKeyer digests the shared run inputs. The digest is stable across
// runs and machines as long as the inputs are.
func NewKeyer(targets []string, exclude []string) (*Keyer, error) {
	hasher := blake3.New()

	for _, glob := range exclude {
		fmt.Fprintf(hasher, "exclude:%s\x00", glob)
	}

	files, err := collectFiles(targets)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		digest, err := hashFile(file)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(hasher, "%s\x00%s\x00", filepath.ToSlash(file), digest)
	}

	return &Keyer{runDigest: fmt.Sprintf("%x", hasher.Sum(nil))}, nil
}

// Key returns the cache key for running tool over the keyed inputs: a
// blake3 digest over the version marker, the marshaled tool configuration
// and the run digest. Any change to the tool's configuration misses.
func (k *Keyer) Key(tool config.Tool) (string, error) {
	spec, err := json.Marshal(tool)
	if err != nil {
		return "", fmt.Errorf("canonicalize tool config: %w", err)
	}

	hasher := blake3.New()
	fmt.Fprintf(hasher, "lintgate-cache/%s\x00", keyVersion)
	hasher.Write(spec)
	hasher.Write([]byte{0})
	io.WriteString(hasher, k.runDigest)

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// collectFiles expands targets into the regular files beneath them,
// preserving target order and walking directories lexically.
func collectFiles(targets []string) ([]string, error) {
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat cache target: %w", err)
		}

		if !info.IsDir() {
			files = append(files, target)
			continue
		}

		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// .lintgate holds our own state, hashing it would
				// invalidate the key on every run
				if d.Name() == ".git" || d.Name() == ".lintgate" {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk cache target: %w", err)
		}
	}
	return files, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash cache target: %w", err)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash cache target: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
