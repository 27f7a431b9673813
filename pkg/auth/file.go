package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// fileRecord is the on-disk JSON shape of one credential.
type fileRecord struct {
	KeyHash string   `json:"key_hash"`
	All     bool     `json:"all,omitempty"`
	Access  []string `json:"access,omitempty"`
}

// FileAuthenticator re-reads its backing JSON file before every check
// and rewrites it on every mutation, mirroring JSONAuthenticator's
// reload-on-__getitem__, persist-on-__setitem__ behavior so credentials
// can be edited on disk by an operator without restarting the process.
type FileAuthenticator struct {
	path string
	mu   sync.Mutex
}

// NewFileAuthenticator wraps a JSON credential file at path, creating it
// empty if it doesn't yet exist.
func NewFileAuthenticator(path string) (*FileAuthenticator, error) {
	f := &FileAuthenticator{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := f.save(map[string]fileRecord{}); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *FileAuthenticator) load() (map[string]fileRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("auth: read credential file %s: %w", f.path, err)
	}
	var records map[string]fileRecord
	if len(data) == 0 {
		return map[string]fileRecord{}, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("auth: decode credential file %s: %w", f.path, err)
	}
	return records, nil
}

func (f *FileAuthenticator) save(records map[string]fileRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: encode credential file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("auth: write credential file %s: %w", f.path, err)
	}
	return nil
}

func toAccessSet(r fileRecord) AccessSet {
	if r.All {
		return AllAccess()
	}
	return NewAccessSet(r.Access...)
}

func fromAccessSet(a AccessSet) (bool, []string) {
	if a.All {
		return true, nil
	}
	ids := make([]string, 0, len(a.IDs))
	for id := range a.IDs {
		ids = append(ids, id)
	}
	return false, ids
}

func (f *FileAuthenticator) Authenticate(_ context.Context, id, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return false, err
	}
	rec, ok := records[id]
	if !ok {
		return false, nil
	}
	return constantTimeEqual([]byte(encodeHash(hashKey(key))), []byte(rec.KeyHash)), nil
}

func (f *FileAuthenticator) AccessFor(_ context.Context, id string) (AccessSet, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return AccessSet{}, false, err
	}
	rec, ok := records[id]
	if !ok {
		return AccessSet{}, false, nil
	}
	return toAccessSet(rec), true, nil
}

func (f *FileAuthenticator) Create(_ context.Context, access AccessSet) (string, string, error) {
	id, err := randomID(12)
	if err != nil {
		return "", "", err
	}
	key := newCredentialKey()

	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return "", "", err
	}
	if _, exists := records[id]; exists {
		return "", "", fmt.Errorf("auth: generated id %q already in use", id)
	}
	all, ids := fromAccessSet(access)
	records[id] = fileRecord{KeyHash: encodeHash(hashKey(key)), All: all, Access: ids}
	if err := f.save(records); err != nil {
		return "", "", err
	}
	return id, key, nil
}

func (f *FileAuthenticator) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return fmt.Errorf("auth: credential %q not found", id)
	}
	delete(records, id)
	return f.save(records)
}
