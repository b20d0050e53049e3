package bdata

import (
	"bufio"
	"context"
	"fmt"
	"git.thinkinpower.net/ribdb/data"
	"git.thinkinpower.net/ribdb/file"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// BankDirectory maps bank codes to bank names. It is loaded from
// bank_code.csv, one "code=name" per line, and reloaded when the file
// changes.
type BankDirectory struct {
	mu       sync.RWMutex
	filepath string
	dataMap  map[string]string
}

func NewBankDirectory(dataDir string) *BankDirectory {
	return &BankDirectory{
		filepath: filepath.Join(dataDir, data.BankCodeFileName),
		dataMap:  make(map[string]string, 64),
	}
}

func (d *BankDirectory) BankName(code string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.dataMap[code]
	return name, ok
}

func (d *BankDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.dataMap)
}

// Load replaces the directory content with the file content. A missing
// file leaves the directory empty.
func (d *BankDirectory) Load() error {
	var (
		f   *os.File
		err error
	)
	if f, err = os.Open(d.filepath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "open %s", d.filepath)
	}
	defer f.Close()

	var dataMap map[string]string
	if dataMap, err = readMapping(f); err != nil {
		return errors.Wrapf(err, "read %s", d.filepath)
	}
	d.mu.Lock()
	d.dataMap = dataMap
	d.mu.Unlock()
	return nil
}

// CreateBankMapping adds code=name to the file. A code already known is
// left untouched.
func (d *BankDirectory) CreateBankMapping(code, name string) error {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if len(code) != 3 || strings.Trim(code, "0123456789") != "" {
		return errors.Errorf("invalid bank code %q", code)
	}
	if name == "" || strings.ContainsAny(name, "=\n") {
		return errors.Errorf("invalid bank name %q", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dataMap[code]; ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(d.filepath), 0755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	var (
		f   *os.File
		err error
	)
	if f, err = os.OpenFile(d.filepath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		return errors.Wrapf(err, "open %s", d.filepath)
	}
	defer f.Close()

	if _, err = f.WriteString(fmt.Sprintf("%s=%s\n", code, name)); err != nil {
		logger.Error(err.Error())
		return errors.Wrap(err, "create bank mapping")
	}
	d.dataMap[code] = name
	return nil
}

// Watch reloads the directory whenever bank_code.csv is written or created,
// until ctx is done.
func (d *BankDirectory) Watch(ctx context.Context) error {
	var (
		watcher *fsnotify.Watcher
		err     error
	)
	if watcher, err = fsnotify.NewWatcher(); err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Error(err)
		}
	}()

	dir := filepath.Dir(d.filepath)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	if err = watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				d.handle(file.FileEvent{Filepath: event.Name, FileCreated: false})
			} else if event.Op&fsnotify.Create == fsnotify.Create {
				d.handle(file.FileEvent{Filepath: event.Name, FileCreated: true})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watch %s error: %s", dir, err)
		}
	}
}

func (d *BankDirectory) handle(e file.FileEvent) {
	if filepath.Base(e.Filepath) != data.BankCodeFileName {
		return
	}
	logger.Infof("bank directory changed: %s, created: %t", e.Filepath, e.FileCreated)
	if err := d.Load(); err != nil {
		logger.Errorf("reload bank directory error: %s", err)
		return
	}
	logger.Infof("bank directory reloaded, %d banks", d.Len())
}

// readMapping reads code=name lines. Blank lines and lines starting with
// '#' are skipped; the first occurrence of a code wins.
func readMapping(r io.Reader) (map[string]string, error) {
	dataMap := make(map[string]string, 64)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			logger.Warnf("skip malformed bank line %d: %s", lineNum, line)
			continue
		}
		key := strings.TrimSpace(kv[0])
		if _, ok := dataMap[key]; ok {
			continue
		}
		dataMap[key] = strings.TrimSpace(kv[1])
	}
	return dataMap, scanner.Err()
}
