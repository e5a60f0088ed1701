package recipe

import (
	"context"
	"errors"

	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/modules/view"
	"foodgram/internal/pkg/imagestore"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	recipes   RecipeRepositoryInterface
	tags      ReferenceChecker
	products  ReferenceChecker
	favorites MarkReader
	basket    MarkReader
	follows   MarkReader
	images    ImageStore
	log       *zap.SugaredLogger
}

func NewService(
	recipes RecipeRepositoryInterface,
	tags ReferenceChecker,
	products ReferenceChecker,
	favorites MarkReader,
	basket MarkReader,
	follows MarkReader,
	images ImageStore,
	log *zap.SugaredLogger,
) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		recipes:   recipes,
		tags:      tags,
		products:  products,
		favorites: favorites,
		basket:    basket,
		follows:   follows,
		images:    images,
		log:       log,
	}
}

// Create validates the payload and stores the recipe with its components
// and tags atomically.
func (s *Service) Create(ctx context.Context, authorID int64, in RecipeInput) (*view.Recipe, error) {
	checked, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	taken, err := s.recipes.TitleTaken(ctx, authorID, checked.title)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errDuplicateTitle()
	}

	if in.Image == "" {
		return nil, invalid("image", "image is required")
	}
	imageURL, err := s.storeImage(in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		AuthorID:    authorID,
		Title:       checked.title,
		Text:        checked.text,
		CookingTime: checked.cookingTime,
		Image:       imageURL,
	}
	if err := s.recipes.Save(ctx, recipe, checked.components, checked.tagIDs); err != nil {
		s.discardImage(imageURL)
		return nil, mapSaveError(err)
	}

	s.log.Infow("recipe created", "recipe_id", recipe.ID, "author_id", authorID)
	return s.Get(ctx, authorID, recipe.ID)
}

// Update replaces the recipe fields, its components and its tag set. The
// image is only replaced when the payload carries a new one.
func (s *Service) Update(ctx context.Context, actorID, id int64, in RecipeInput) (*view.Recipe, error) {
	existing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	checked, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	imageURL := existing.Image
	if in.Image != "" {
		if imageURL, err = s.storeImage(in.Image); err != nil {
			return nil, err
		}
	}

	recipe := &domain.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Title:       checked.title,
		Text:        checked.text,
		CookingTime: checked.cookingTime,
		Image:       imageURL,
	}
	if err := s.recipes.Save(ctx, recipe, checked.components, checked.tagIDs); err != nil {
		if imageURL != existing.Image {
			s.discardImage(imageURL)
		}
		return nil, mapSaveError(err)
	}
	if imageURL != existing.Image {
		s.discardImage(existing.Image)
	}

	return s.Get(ctx, actorID, recipe.ID)
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	existing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.discardImage(existing.Image)
	s.log.Infow("recipe deleted", "recipe_id", id, "author_id", actorID)
	return nil
}

// Get returns the full recipe as seen by viewerID (0 for anonymous).
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*view.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	views, err := s.views(ctx, viewerID, []domain.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List pages through recipes, newest first. The favorite and cart filters
// only apply to an authenticated viewer.
func (s *Service) List(ctx context.Context, viewerID int64, q ListQuery, p pagination.Params) ([]view.Recipe, int64, error) {
	filter := repository.RecipeFilter{AuthorID: q.AuthorID, TagSlugs: q.Tags}
	if viewerID != 0 {
		if q.IsFavorited {
			filter.FavoritedBy = viewerID
		}
		if q.IsInShoppingCart {
			filter.InBasketOf = viewerID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ShoppingList renders the aggregated ingredients of the user's basket.
func (s *Service) ShoppingList(ctx context.Context, userID int64) (string, error) {
	items, err := s.recipes.ShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmptyBasket
	}
	return FormatShoppingList(items), nil
}

func (s *Service) owned(ctx context.Context, actorID, id int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}
	return recipe, nil
}

func (s *Service) views(ctx context.Context, viewerID int64, recipes []domain.Recipe) ([]view.Recipe, error) {
	ids := make([]int64, 0, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	var (
		marks view.Marks
		err   error
	)
	if marks.Favorited, err = s.favorites.Marked(ctx, viewerID, ids); err != nil {
		return nil, err
	}
	if marks.InCart, err = s.basket.Marked(ctx, viewerID, ids); err != nil {
		return nil, err
	}
	if marks.Subscribed, err = s.follows.Marked(ctx, viewerID, authorIDs); err != nil {
		return nil, err
	}
	if marks.FavoriteCounts, err = s.recipes.FavoriteCounts(ctx, ids); err != nil {
		return nil, err
	}

	out := make([]view.Recipe, 0, len(recipes))
	for i := range recipes {
		out = append(out, view.NewRecipe(&recipes[i], marks))
	}
	return out, nil
}

func (s *Service) storeImage(payload string) (string, error) {
	url, err := s.images.SaveDataURI(payload)
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidImage) || errors.Is(err, imagestore.ErrImageTooLarge) {
			return "", invalid("image", err.Error())
		}
		return "", err
	}
	return url, nil
}

func (s *Service) discardImage(url string) {
	if err := s.images.Remove(url); err != nil {
		s.log.Warnw("failed to remove recipe image", "url", url, "error", err)
	}
}

func errDuplicateTitle() error {
	return invalid("name", "you already have a recipe with this name")
}

// mapSaveError turns races detected inside the write transaction into the
// same validation errors the pre-checks produce.
func mapSaveError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrMissingReference):
		return invalid("ingredients", "a referenced ingredient or tag no longer exists")
	case database.IsUniqueViolation(err):
		return errDuplicateTitle()
	default:
		return err
	}
}
