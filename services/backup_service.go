package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/utils"
)

var (
	ErrInvalidBackup  = errors.New("invalid backup")
	ErrBackupDisabled = errors.New("S3 backups are not configured")
)

// Snapshot is the whole store keyed by user name, the same shape the
// browser client exports.
type Snapshot map[string]models.User

// Uploader ships an export somewhere durable and returns its location.
type Uploader interface {
	Upload(ctx context.Context, body []byte) (string, error)
}

type BackupService struct {
	store    repository.Store
	uploader Uploader
	hub      *RealtimeHub
	log      *zap.Logger
}

// NewBackupService takes a nil uploader when S3 is not configured.
func NewBackupService(store repository.Store, uploader Uploader, hub *RealtimeHub, log *zap.Logger) *BackupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupService{store: store, uploader: uploader, hub: hub, log: log}
}

func (s *BackupService) Export(ctx context.Context) (Snapshot, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot, len(users))
	for _, u := range users {
		snap[u.Name] = u
	}
	return snap, nil
}

// ExportUser exports one user in the same shape as Export.
func (s *BackupService) ExportUser(ctx context.Context, user string) (Snapshot, error) {
	u, err := s.store.GetUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return Snapshot{u.Name: *u}, nil
}

// prepare checks one snapshot entry and hashes a plain PIN from older exports.
func prepare(key string, u models.User) (models.User, error) {
	if u.Name == "" {
		u.Name = key
	}
	if u.Name != key {
		return u, fmt.Errorf("%w: entry %q holds user %q", ErrInvalidBackup, key, u.Name)
	}
	for i, w := range u.Weeks {
		if err := w.Validate(); err != nil {
			return u, fmt.Errorf("%w: user %q week %d: %v", ErrInvalidBackup, key, i+1, err)
		}
	}
	if u.PIN != "" && !utils.IsPINHash(u.PIN) {
		hash, err := utils.HashPIN(u.PIN)
		if err != nil {
			return u, err
		}
		u.PIN = hash
	}
	return u, nil
}

// Import replaces the whole store with snap. Every week must be well formed.
func (s *BackupService) Import(ctx context.Context, snap Snapshot) error {
	users := make([]models.User, 0, len(snap))
	for key, u := range snap {
		u, err := prepare(key, u)
		if err != nil {
			return err
		}
		users = append(users, u)
	}

	if err := s.store.ReplaceAll(ctx, users); err != nil {
		return err
	}
	s.log.Info("Store imported", zap.Int("users", len(users)))
	s.hub.BroadcastAll(EventStoreImport, nil)
	return nil
}

// ImportUser restores user's own entry from snap and leaves everyone else
// alone. Entries for other users are ignored.
func (s *BackupService) ImportUser(ctx context.Context, user string, snap Snapshot) error {
	entry, ok := snap[user]
	if !ok {
		return fmt.Errorf("%w: no entry for user %q", ErrInvalidBackup, user)
	}
	u, err := prepare(user, entry)
	if err != nil {
		return err
	}
	current, err := s.store.GetUser(ctx, user)
	if err != nil {
		return err
	}
	if u.PIN == "" {
		u.PIN = current.PIN
	}
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return err
	}
	if ignored := len(snap) - 1; ignored > 0 {
		s.log.Info("Ignored other users in import", zap.String("user", user), zap.Int("ignored", ignored))
	}
	s.log.Info("User imported", zap.String("user", user), zap.Int("weeks", len(u.Weeks)))
	s.hub.Broadcast(user, EventStoreImport, nil)
	return nil
}

// UploadToS3 exports the store and uploads it.
func (s *BackupService) UploadToS3(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", ErrBackupDisabled
	}
	snap, err := s.Export(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	loc, err := s.uploader.Upload(ctx, body)
	if err != nil {
		return "", err
	}
	s.log.Info("Backup uploaded", zap.String("location", loc), zap.Int("bytes", len(body)))
	return loc, nil
}
