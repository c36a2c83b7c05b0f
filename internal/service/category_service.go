package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/model"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo CategoryStore
}

func NewCategoryService(repo CategoryStore) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	return categories, classify("category.List", "", err)
}

func (s *CategoryService) Create(ctx context.Context, name, emoji, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, inventory.E("category.Create", "", fmt.Errorf("%w: name is required", inventory.ErrInvalidCategory))
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		emoji = model.DefaultEmoji
	}

	c := &model.Category{Name: name, Emoji: emoji, Description: strings.TrimSpace(description)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, classify("category.Create", name, err)
	}
	return c, nil
}

// Delete removes category id. Products that use its name are left as is.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return classify("category.Delete", strconv.FormatUint(uint64(id), 10), s.repo.Delete(ctx, id))
}

// EnsureDefaults inserts the default categories that do not exist yet.
func (s *CategoryService) EnsureDefaults(ctx context.Context) (int64, error) {
	added, err := s.repo.CreateMissing(ctx, model.DefaultCategories())
	return added, classify("category.EnsureDefaults", "", err)
}
