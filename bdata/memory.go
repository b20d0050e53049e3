package bdata

import (
	"git.thinkinpower.net/ribdb/data"
	"git.thinkinpower.net/ribdb/file"
	"git.thinkinpower.net/ribdb/mod"
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type memoryDatabase struct {
	mu       sync.RWMutex
	dataMap  map[string]mod.Beneficiary
	filepath string
	now      func() time.Time
}

func NewMemoryDatabase() BeneficiaryDatabase {
	return &memoryDatabase{dataMap: make(map[string]mod.Beneficiary), now: time.Now}
}

func (m *memoryDatabase) Init(cfg BeneficiaryConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.DataDir == "" {
		return nil
	}
	m.filepath = filepath.Join(cfg.DataDir, data.BeneficiaryFileName)

	var (
		filepaths []string
		err       error
	)
	if filepaths, err = file.SearchDir(cfg.DataDir, func(path string) bool {
		return filepath.Ext(path) == filepath.Ext(data.BeneficiaryFileName) && path != m.filepath
	}); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "search %s", cfg.DataDir)
	}
	// archives first in name order, the live file last: later records for
	// the same id replace earlier ones
	sort.Strings(filepaths)
	filepaths = append(filepaths, m.filepath)

	for _, path := range filepaths {
		var records []mod.Beneficiary
		if records, err = read(path); err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				continue
			}
			logger.Errorf("memory database init failed, error: %s, file: %s", err, path)
			return errors.Wrap(err, "init memory database")
		}
		for _, b := range records {
			m.dataMap[b.Id] = b
		}
	}
	logger.Infof("loaded %d beneficiaries from %d files", len(m.dataMap), len(filepaths))
	return nil
}

func (m *memoryDatabase) Read(id string) (mod.Beneficiary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if result, ok := m.dataMap[id]; ok {
		return result, nil
	}
	return mod.Beneficiary{}, errors.Wrapf(ErrNotFound, "id %s", id)
}

func (m *memoryDatabase) List() []mod.Beneficiary {
	m.mu.RLock()
	result := make([]mod.Beneficiary, 0, len(m.dataMap))
	for _, b := range m.dataMap {
		result = append(result, b)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Id < result[j].Id
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (m *memoryDatabase) Save(b mod.Beneficiary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dataMap[b.Id]; ok {
		return errors.Wrapf(ErrDuplicate, "id %s", b.Id)
	}
	for _, existing := range m.dataMap {
		if existing.Iban == b.Iban && existing.Status != mod.BeneficiaryStatusSuspended {
			return errors.Wrapf(ErrDuplicate, "iban %s", b.Iban)
		}
	}
	return m.store(b)
}

func (m *memoryDatabase) Transition(id string, to mod.BeneficiaryStatus) (mod.Beneficiary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.dataMap[id]
	if !ok {
		return mod.Beneficiary{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if !b.Status.CanTransition(to) {
		return mod.Beneficiary{}, errors.Wrapf(ErrTransition, "%s -> %s", b.Status, to)
	}
	b.Status = to
	b.UpdatedAt = m.now()
	if err := m.store(b); err != nil {
		return mod.Beneficiary{}, err
	}
	return b, nil
}

// store persists b before publishing it in memory. Callers hold m.mu.
func (m *memoryDatabase) store(b mod.Beneficiary) error {
	if m.filepath != "" {
		if err := write2File(m.filepath, b); err != nil {
			logger.Errorf("save beneficiary %s error: %s", b.Id, err)
			return errors.Wrap(err, "save beneficiary")
		}
	}
	m.dataMap[b.Id] = b
	return nil
}
