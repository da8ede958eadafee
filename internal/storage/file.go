/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vecdraw/internal/drawing"
	applog "vecdraw/internal/log"
	"vecdraw/internal/serialize"
	"vecdraw/internal/shape"
)

const (
	// FileExt is the extension of native drawing files.
	FileExt        = ".vdr.json"
	BackupsDirName = "backups"
)

// ErrNoBackups is returned when a drawing is unreadable and nothing can replace it.
var ErrNoBackups = errors.New("no backups found")

// Save writes d to path as a native envelope. An existing file is first
// copied to <dir>/backups/<name>.<stamp>.bak, then replaced through a temp
// file in the same directory.
func Save(path string, d *drawing.Drawing) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	if d == nil {
		return errors.New("nil drawing")
	}
	data, err := serialize.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal drawing: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current drawing: %w", cerr)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp drawing: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace drawing: %w", rerr)
	}
	applog.WithComponent("storage").Debug("saved", slog.String("path", path), slog.Int("shapes", len(d.Shapes)))
	return nil
}

// Open reads the drawing at path. Native envelopes decode exactly; any other
// accepted import form is normalized. When the file is missing or cannot be
// parsed, the newest readable backup is used instead.
func Open(path string) (*drawing.Drawing, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", path))
	d, err := readDrawing(path)
	if err == nil {
		return d, nil
	}
	d, bpath, berr := openFromLatestBackup(path)
	if berr != nil {
		return nil, fmt.Errorf("open drawing: %w; backup attempt: %v", err, berr)
	}
	l.Warn("recovered from backup", slog.String("backup", bpath), slog.Any("err", err))
	return d, nil
}

func readDrawing(path string) (*drawing.Drawing, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if d, err := serialize.Unmarshal(b); err == nil {
		return d, nil
	}
	d, _, err := serialize.Import(b, shape.DefaultStyle)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// PruneBackups keeps the newest keep backups of path and removes the rest.
func PruneBackups(path string, keep int) (int, error) {
	all, err := Backups(path)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for len(all)-removed > keep {
		if err := os.Remove(all[removed]); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		removed++
	}
	return removed, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries the backups of path from newest to oldest.
func openFromLatestBackup(path string) (*drawing.Drawing, string, error) {
	all, err := Backups(path)
	if err != nil {
		return nil, "", err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if d, err := readDrawing(all[i]); err == nil {
			return d, all[i], nil
		}
	}
	return nil, "", ErrNoBackups
}

// AutosaveCrashSnapshot writes d into the backups directory of path without
// touching path itself. Open picks it up like any other backup.
func AutosaveCrashSnapshot(path string, d *drawing.Drawing) (string, error) {
	if d == nil {
		return "", errors.New("nil drawing")
	}
	data, err := serialize.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal drawing: %w", err)
	}
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405.000")
	out := filepath.Join(bdir, fmt.Sprintf("%s.%s-crash.bak", filepath.Base(path), stamp))
	if err := writeFileSync(out, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return out, nil
}
