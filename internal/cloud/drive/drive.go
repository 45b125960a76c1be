// Package drive implements cloud.ObjectStore on Google Drive.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"budgettracker/internal/cloud"
	apperrors "budgettracker/internal/errors"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	jsonMimeType   = "application/json"

	fileFields googleapi.Field = "id,name,size,createdTime,modifiedTime"
	listFields googleapi.Field = "nextPageToken,files(id,name,size,createdTime,modifiedTime)"
)

// Config holds the credentials of the Drive account. A service account
// credentials file takes precedence over an OAuth refresh token.
type Config struct {
	CredentialsFile string
	ClientID        string
	ClientSecret    string
	RefreshToken    string
}

// Store is a cloud.ObjectStore backed by the Drive v3 API. Only files
// created by the application are visible to it.
type Store struct {
	files *drive.FilesService
}

var _ cloud.ObjectStore = (*Store)(nil)

// New connects to Drive with the configured credentials.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(drive.DriveFileScope),
		)
	case cfg.RefreshToken != "":
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{drive.DriveFileScope},
		}
		opts = append(opts, option.WithTokenSource(oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})))
	default:
		return nil, apperrors.WithMessage(apperrors.ErrCloudNotConfigured, "Google Drive credentials are not configured")
	}
	return NewWithOptions(ctx, opts...)
}

// NewWithOptions creates a Store from raw client options.
func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*Store, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Store{files: svc.Files}, nil
}

func (s *Store) FindFolders(ctx context.Context, name, parentID string) ([]cloud.File, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escape(name), folderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escape(parentID))
	}
	return s.list(ctx, "find folders", q)
}

func (s *Store) CreateFolder(ctx context.Context, name, parentID string) (cloud.File, error) {
	meta := &drive.File{Name: name, MimeType: folderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	f, err := s.files.Create(meta).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return cloud.File{}, mapError("create folder", err)
	}
	return toFile(f), nil
}

func (s *Store) FindFiles(ctx context.Context, name, folderID string) ([]cloud.File, error) {
	clauses := []string{
		fmt.Sprintf("mimeType != '%s'", folderMimeType),
		"trashed = false",
	}
	if name != "" {
		clauses = append(clauses, fmt.Sprintf("name = '%s'", escape(name)))
	}
	if folderID != "" {
		clauses = append(clauses, fmt.Sprintf("'%s' in parents", escape(folderID)))
	}
	return s.list(ctx, "find files", strings.Join(clauses, " and "))
}

func (s *Store) CreateFile(ctx context.Context, folderID, name string, content []byte) (cloud.File, error) {
	meta := &drive.File{Name: name, MimeType: jsonMimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	f, err := s.files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(jsonMimeType)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return cloud.File{}, mapError("create file", err)
	}
	return toFile(f), nil
}

func (s *Store) UpdateFile(ctx context.Context, fileID string, content []byte) (cloud.File, error) {
	f, err := s.files.Update(fileID, &drive.File{}).
		Media(bytes.NewReader(content), googleapi.ContentType(jsonMimeType)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return cloud.File{}, mapError("update file", err)
	}
	return toFile(f), nil
}

func (s *Store) GetFile(ctx context.Context, fileID string) (cloud.File, error) {
	f, err := s.files.Get(fileID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return cloud.File{}, mapError("get file", err)
	}
	return toFile(f), nil
}

func (s *Store) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, mapError("download file", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCloudUnavailable, fmt.Errorf("read file %s: %w", fileID, err))
	}
	return body, nil
}

func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := s.files.Delete(fileID).Context(ctx).Do(); err != nil {
		return mapError("delete file", err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, op, q string) ([]cloud.File, error) {
	var out []cloud.File
	err := s.files.List().
		Q(q).
		Spaces("drive").
		Fields(listFields).
		PageSize(100).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, toFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func toFile(f *drive.File) cloud.File {
	return cloud.File{
		ID:           f.Id,
		Name:         f.Name,
		Size:         f.Size,
		CreatedTime:  parseTime(f.CreatedTime),
		ModifiedTime: parseTime(f.ModifiedTime),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// escape quotes a value for a Drive search query.
func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}

// mapError translates Drive API failures into application errors.
func mapError(op string, err error) error {
	wrapped := fmt.Errorf("drive %s: %w", op, err)

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return apperrors.Wrap(apperrors.ErrCloudAuth, wrapped)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return wrapped
		}
		return apperrors.Wrap(apperrors.ErrCloudUnavailable, wrapped)
	}

	switch {
	case gerr.Code == http.StatusNotFound:
		return apperrors.Wrap(apperrors.ErrNotFound, wrapped)
	case gerr.Code == http.StatusForbidden && rateLimited(gerr):
		return apperrors.Wrap(apperrors.ErrCloudUnavailable, wrapped)
	case gerr.Code == http.StatusUnauthorized, gerr.Code == http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrCloudAuth, wrapped)
	case gerr.Code == http.StatusTooManyRequests, gerr.Code >= http.StatusInternalServerError:
		return apperrors.Wrap(apperrors.ErrCloudUnavailable, wrapped)
	}
	return wrapped
}

func rateLimited(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}
