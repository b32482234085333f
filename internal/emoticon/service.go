// Package emoticon manages named images: the records live in the database
// and the image bytes in object storage.
package emoticon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/httpclient"
	"github.com/Hazealign/black-angus-main/internal/objectstore"
)

// MaxNameLength is the longest emoticon name accepted, in characters.
const MaxNameLength = 10

// KeyPrefix is where emoticon images are stored in the bucket.
const KeyPrefix = "images/emoticons/"

var knownExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}

// Service implements the emoticon operations.
type Service struct {
	store   database.Store
	objects objectstore.Store
	fetcher httpclient.Fetcher
	logger  *slog.Logger
}

// NewService creates an emoticon Service.
func NewService(store database.Store, objects objectstore.Store, fetcher httpclient.Fetcher, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		objects: objects,
		fetcher: fetcher,
		logger:  logger.With("component", "emoticon"),
	}
}

// ValidateName checks the length and character rules for emoticon names.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLength {
		return apperrors.NewValidationError(fmt.Sprintf("이모티콘 이름은 1~%d글자여야 합니다.", MaxNameLength), nil)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return apperrors.NewValidationError("이모티콘 이름에 공백을 넣을 수 없습니다.", nil)
		}
	}
	return nil
}

// ExtensionOf guesses the image extension from the URL path, defaulting to jpg.
func ExtensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "jpg"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if !knownExtensions[ext] {
		return "jpg"
	}
	return ext
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewValidationError("올바른 이미지 URL이 아닙니다.", err)
	}
	return nil
}

// transfer downloads rawURL and stores it under a fresh key.
func (s *Service) transfer(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	resp, err := s.fetcher.Get(ctx, rawURL)
	if err != nil {
		return "", apperrors.NewAPIError("이미지 다운로드에 실패했습니다.", err)
	}

	ext := ExtensionOf(rawURL)
	key := KeyPrefix + uuid.NewString() + "." + ext
	contentType := resp.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension("." + ext)
	}

	if err := s.objects.Put(ctx, key, contentType, resp.Body); err != nil {
		return "", apperrors.NewAPIError("이미지 저장에 실패했습니다.", err)
	}
	return key, nil
}

func notFound(name string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("존재하지 않는 이모티콘입니다: %s", name))
}

func conflict(name string) error {
	return apperrors.NewConflictError(fmt.Sprintf("이미 존재하는 이모티콘입니다: %s", name))
}

// Find returns the active emoticon called name.
func (s *Service) Find(ctx context.Context, name string) (*database.Emoticon, error) {
	e, err := s.store.FindEmoticon(ctx, name)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFound(name)
	}
	return e, nil
}

func (s *Service) ensureFree(ctx context.Context, name string) error {
	existing, err := s.store.FindEmoticon(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return conflict(name)
	}
	return nil
}

// Create downloads the image at rawURL and registers it as name.
func (s *Service) Create(ctx context.Context, name, rawURL string) (*database.Emoticon, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, name); err != nil {
		return nil, err
	}

	key, err := s.transfer(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	e := &database.Emoticon{
		ID:          uuid.NewString(),
		Name:        name,
		OriginalURL: rawURL,
		ImagePath:   key,
	}
	if err := s.store.CreateEmoticon(ctx, e); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Emoticon created", "name", name, "object_key", key)
	return e, nil
}

// Duplicate registers target as another name for the image of name.
func (s *Service) Duplicate(ctx context.Context, name, target string) (*database.Emoticon, error) {
	if err := ValidateName(target); err != nil {
		return nil, err
	}
	source, err := s.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, target); err != nil {
		return nil, err
	}

	e := &database.Emoticon{
		ID:          uuid.NewString(),
		Name:        target,
		OriginalURL: source.OriginalURL,
		ImagePath:   source.ImagePath,
	}
	if err := s.store.CreateEmoticon(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// targets returns the emoticon called name, plus every equivalent of it
// when equivalents is set.
func (s *Service) targets(ctx context.Context, name string, equivalents bool) ([]database.Emoticon, error) {
	e, err := s.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if !equivalents {
		return []database.Emoticon{*e}, nil
	}
	list, err := s.store.FindEquivalentEmoticons(ctx, e.OriginalURL)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []database.Emoticon{*e}, nil
	}
	return list, nil
}

// UpdateImage replaces the image of name, and of its equivalents when
// equivalents is set. It returns how many emoticons changed.
func (s *Service) UpdateImage(ctx context.Context, name, rawURL string, equivalents bool) (int, error) {
	list, err := s.targets(ctx, name, equivalents)
	if err != nil {
		return 0, err
	}

	key, err := s.transfer(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	for i := range list {
		list[i].ImagePath = key
		list[i].OriginalURL = rawURL
	}
	if err := s.store.ReplaceEmoticons(ctx, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// Rename changes the name of an emoticon.
func (s *Service) Rename(ctx context.Context, before, after string) (*database.Emoticon, error) {
	if err := ValidateName(after); err != nil {
		return nil, err
	}
	e, err := s.Find(ctx, before)
	if err != nil {
		return nil, err
	}
	if before == after {
		return e, nil
	}
	if err := s.ensureFree(ctx, after); err != nil {
		return nil, err
	}

	e.Name = after
	if err := s.store.ReplaceEmoticons(ctx, []database.Emoticon{*e}); err != nil {
		return nil, err
	}
	return e, nil
}

// Remove soft-deletes name, and its equivalents when equivalents is set.
// Images stay in the bucket.
func (s *Service) Remove(ctx context.Context, name string, equivalents bool) (int, error) {
	list, err := s.targets(ctx, name, equivalents)
	if err != nil {
		return 0, err
	}
	for i := range list {
		list[i].Removed = true
	}
	if err := s.store.ReplaceEmoticons(ctx, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// Search returns emoticons whose name contains keyword.
func (s *Service) Search(ctx context.Context, keyword string) ([]database.Emoticon, error) {
	return s.store.SearchEmoticons(ctx, keyword)
}

// Names returns every active emoticon name, sorted.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	return s.store.ListEmoticonNames(ctx)
}

// Image loads the image bytes of e. The file name is the last path element
// of its object key.
func (s *Service) Image(ctx context.Context, e *database.Emoticon) (string, []byte, error) {
	data, err := s.objects.Get(ctx, e.ImagePath)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return "", nil, apperrors.NewNotFoundError(fmt.Sprintf("%s에 대한 이미지를 찾을 수 없습니다.", e.Name))
		}
		return "", nil, apperrors.NewAPIError("이미지를 불러오지 못했습니다.", err)
	}
	return path.Base(e.ImagePath), data, nil
}
